package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/crm-reports/api/transport"
	"github.com/fastygo/crm-reports/internal/infrastructure/monitor"
	"github.com/fastygo/crm-reports/pkg/httpcontext"
)

// StatusSource reports the latest dependency probes.
type StatusSource interface {
	GetStatus() monitor.Status
	IsOnline() bool
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
}

func NewHealthHandler(mon StatusSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"last_check": status.LastCheck,
		"services": map[string]interface{}{
			"database": map[string]interface{}{
				"online": status.Database,
				"driver": status.Driver,
			},
			"redis": status.Redis,
			"exports": map[string]interface{}{
				"online":    status.Exports,
				"documents": status.Documents,
			},
		},
	}

	if h.monitor.IsOnline() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable,
		transport.NewError("DEGRADED", transport.ErrorBody{Message: "dependencies unhealthy"}, payload))
}
