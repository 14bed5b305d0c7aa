package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/crm-reports/api/handler"
	"github.com/fastygo/crm-reports/internal/bootstrap"
	"github.com/fastygo/crm-reports/internal/config"
	"github.com/fastygo/crm-reports/internal/infrastructure/exportstore"
	"github.com/fastygo/crm-reports/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/crm-reports/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/crm-reports/internal/infrastructure/redis"
	"github.com/fastygo/crm-reports/internal/middleware"
	"github.com/fastygo/crm-reports/internal/router"
	"github.com/fastygo/crm-reports/internal/services"
	"github.com/fastygo/crm-reports/internal/services/lifecycle"
	"github.com/fastygo/crm-reports/pkg/httpcontext"
	"github.com/fastygo/crm-reports/pkg/logger"
	redisRepo "github.com/fastygo/crm-reports/repository/redis"
	authUC "github.com/fastygo/crm-reports/usecase/auth"
	exportUC "github.com/fastygo/crm-reports/usecase/export"
	reportUC "github.com/fastygo/crm-reports/usecase/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	store, err := bootstrap.OpenStore(appCtx, cfg.Database, bootstrap.OpenStoreOptions{
		InitSchema: cfg.Migrations.Enabled,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("database connection failed", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	manager.Register("database", lifecycle.Closer(store))

	redisClient, err := redisInfra.NewClient(cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", lifecycle.Closer(redisClient))

	exportStore, err := exportstore.Open(cfg.Exports.Path)
	if err != nil {
		zapLogger.Fatal("failed to open export store", zap.Error(err))
	}
	manager.Register("export_store", lifecycle.Closer(exportStore))

	mon := monitor.New(store.Pinger, store.Driver, redisClient, exportStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", lifecycle.Func(mon.Stop))

	sessionRepo := redisRepo.NewSessionRepository(redisClient, "", cfg.JWT.SessionTTL)

	rules, err := bootstrap.ReportRules(cfg.Reports)
	if err != nil {
		zapLogger.Fatal("report configuration rejected", zap.Error(err))
	}
	reportUseCase := reportUC.New(store.Snapshots, rules, zapLogger)
	exportUseCase := exportUC.New(exportStore, zapLogger)
	identities := authUC.NewIdentityVerifier(cfg.JWT.IdentitySecret, cfg.JWT.IdentityIssuer, cfg.JWT.IdentityAudience)
	if identities == nil {
		zapLogger.Warn("IDENTITY_JWT_SECRET is not set; every login will be refused")
	}
	authUseCase := authUC.New(store.Representatives, sessionRepo,
		authUC.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer), identities, zapLogger)

	janitor, err := services.NewExportJanitor(exportUseCase, zapLogger, services.JanitorConfig{
		Schedule:  cfg.Exports.CleanupSchedule,
		Retention: cfg.Exports.Retention,
	})
	if err != nil {
		zapLogger.Fatal("invalid export cleanup schedule", zap.Error(err))
	}
	janitor.Start()
	manager.Register("export_janitor", func(ctx context.Context) error {
		janitor.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.SessionTTL),
		Reports: apiHandler.NewReportHandler(reportUseCase, exportUseCase, ctxAdapter, zapLogger),
		Exports: apiHandler.NewExportHandler(reportUseCase, exportUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("driver", store.Driver),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
