package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/crm-reports/domain"
	appLogger "github.com/fastygo/crm-reports/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeySession    Key = "session"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context bounded by the adapter timeout and carrying the
// request id, client metadata and the authenticated session.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := getRequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if session, ok := SessionFrom(ctx); ok {
		stdCtx = context.WithValue(stdCtx, KeySession, session)
	}

	return stdCtx, cancel
}

// SetSession stores the authenticated session on the request.
func SetSession(ctx *fasthttp.RequestCtx, session *domain.Session) {
	ctx.SetUserValue(string(KeySession), session)
}

// SessionFrom returns the session stored by the auth middleware.
func SessionFrom(ctx *fasthttp.RequestCtx) (*domain.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	session, ok := ctx.UserValue(string(KeySession)).(*domain.Session)
	return session, ok && session != nil
}

// ViewerFrom derives the report viewer from the authenticated session.
func ViewerFrom(ctx *fasthttp.RequestCtx) (domain.Viewer, bool) {
	session, ok := SessionFrom(ctx)
	if !ok {
		return domain.Viewer{}, false
	}
	return domain.Viewer{RepresentativeID: session.RepresentativeID, RoleLevel: session.RoleLevel}, true
}

func getRequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if header := string(ctx.Request.Header.Peek("X-Request-ID")); strings.TrimSpace(header) != "" {
		return header
	}
	return uuid.NewString()
}
