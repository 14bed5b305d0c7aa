package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DocumentPurger removes exported documents older than a retention window.
type DocumentPurger interface {
	Purge(ctx context.Context, retention time.Duration) (int, error)
}

// JanitorConfig controls how often and how aggressively exports are purged.
type JanitorConfig struct {
	Schedule  string
	Retention time.Duration
	Timeout   time.Duration
}

// ExportJanitor periodically purges expired exported documents.
type ExportJanitor struct {
	purger DocumentPurger
	logger *zap.Logger
	cron   *cron.Cron
	cfg    JanitorConfig
}

func NewExportJanitor(purger DocumentPurger, logger *zap.Logger, cfg JanitorConfig) (*ExportJanitor, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 10m"
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	j := &ExportJanitor{
		purger: purger,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}
	if _, err := j.cron.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Error("export purge failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid export cleanup schedule %q: %w", cfg.Schedule, err)
	}
	return j, nil
}

// Start launches the cron scheduler.
func (j *ExportJanitor) Start() {
	if j == nil || j.cron == nil {
		return
	}
	j.cron.Start()
	j.logger.Info("export janitor started",
		zap.String("schedule", j.cfg.Schedule),
		zap.Duration("retention", j.cfg.Retention),
	)
}

// Stop waits for a running purge to finish or ctx to expire.
func (j *ExportJanitor) Stop(ctx context.Context) {
	if j == nil || j.cron == nil {
		return
	}
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	j.logger.Info("export janitor stopped")
}

// RunOnce purges expired documents synchronously.
func (j *ExportJanitor) RunOnce(ctx context.Context) (int, error) {
	if j == nil || j.purger == nil {
		return 0, nil
	}
	removed, err := j.purger.Purge(ctx, j.cfg.Retention)
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		j.logger.Info("expired exports purged", zap.Int("removed", removed))
	}
	return removed, nil
}
