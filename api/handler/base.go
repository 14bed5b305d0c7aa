package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/crm-reports/api/transport"
	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/pkg/httpcontext"
	appLogger "github.com/fastygo/crm-reports/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
		ctx.SetStatusCode(http.StatusInternalServerError)
		body = []byte(`{"status":"error","code":"INTERNAL","error":{"message":"internal error"}}`)
	}
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondInvalid(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid),
		transport.ErrorBody{Message: message}, nil))
}

// respondError maps err onto a status and an error envelope. Server-side
// failures are logged with their cause and reported opaquely.
func (h baseHandler) respondError(ctx context.Context, rctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	body := transport.ErrorBody{Message: "internal error"}
	var dErr *domain.Error
	switch {
	case errors.As(err, &dErr):
		body = transport.ErrorBody{Message: dErr.PublicMessage(), Field: dErr.Field}
	case status == http.StatusGatewayTimeout:
		body = transport.ErrorBody{Message: "request timed out"}
	}
	if status >= http.StatusInternalServerError {
		appLogger.WithRequestID(ctx, h.logger).Error("request failed",
			zap.String("path", string(rctx.Path())),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	h.respondJSON(rctx, status, transport.NewError(code, body, nil))
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsFilterError(err):
		var dErr *domain.Error
		errors.As(err, &dErr)
		return http.StatusBadRequest, string(dErr.Code)
	case domain.IsDomainError(err, domain.ErrCodeUnsupportedFormat):
		return http.StatusBadRequest, string(domain.ErrCodeUnsupportedFormat)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeUnknownReport):
		return http.StatusNotFound, string(domain.ErrCodeUnknownReport)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeDataStore):
		return http.StatusServiceUnavailable, string(domain.ErrCodeDataStore)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

// viewer returns the authenticated viewer or responds 401.
func (h baseHandler) viewer(ctx *fasthttp.RequestCtx) (domain.Viewer, bool) {
	v, ok := httpcontext.ViewerFrom(ctx)
	if !ok {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized),
			transport.ErrorBody{Message: "unauthorized"}, nil))
	}
	return v, ok
}
