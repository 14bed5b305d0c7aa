package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/crm-reports/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Reports *apiHandler.ReportHandler
	Exports *apiHandler.ExportHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Reports
	r.GET("/api/v1/reports", authMiddleware(handlers.Reports.List))
	r.POST("/api/v1/reports", authMiddleware(handlers.Reports.Run))
	r.GET("/api/v1/reports/{name}", authMiddleware(handlers.Reports.Get))
	r.GET("/api/v1/dashboard", authMiddleware(handlers.Reports.Dashboard))

	// Exports
	r.POST("/api/v1/exports", authMiddleware(handlers.Exports.Create))
	r.GET("/api/v1/exports/{id}", authMiddleware(handlers.Exports.Download))

	return r
}
