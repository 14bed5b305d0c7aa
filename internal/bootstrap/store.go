// Package bootstrap opens the CRM data store selected by configuration and
// maps report settings onto the aggregation rules. It is shared by the HTTP
// server and the reportctl command.
package bootstrap

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/fastygo/crm-reports/internal/config"
	"github.com/fastygo/crm-reports/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/crm-reports/internal/infrastructure/postgres"
	sqliteInfra "github.com/fastygo/crm-reports/internal/infrastructure/sqlite"
	"github.com/fastygo/crm-reports/repository"
	"github.com/fastygo/crm-reports/repository/postgres"
	"github.com/fastygo/crm-reports/repository/sqlite"
	reportUC "github.com/fastygo/crm-reports/usecase/report"
)

// Store bundles the repositories backed by one database handle.
type Store struct {
	Driver          string
	Snapshots       repository.SnapshotReader
	Representatives repository.RepresentativeRepository
	Pinger          monitor.Pinger
	closer          io.Closer
}

func (s *Store) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

type closeFunc func()

func (f closeFunc) Close() error {
	f()
	return nil
}

// OpenStoreOptions tune OpenStore.
type OpenStoreOptions struct {
	// InitSchema creates the sqlite tables when missing.
	InitSchema bool
}

// OpenStore connects to the database named by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, opts OpenStoreOptions, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	schema, err := repository.NewSchema(cfg.TablePrefix)
	if err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := pgInfra.NewPool(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("postgres connection failed: %w", err)
		}
		return &Store{
			Driver:          cfg.Driver,
			Snapshots:       postgres.NewSnapshotRepository(pool, schema),
			Representatives: postgres.NewRepresentativeRepository(pool, schema),
			Pinger:          pool,
			closer:          closeFunc(func() { pgInfra.Close(pool, logger) }),
		}, nil
	case config.DriverSQLite:
		db, err := sqliteInfra.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("sqlite open failed: %w", err)
		}
		if opts.InitSchema {
			if err := sqlite.InitSchema(ctx, db, schema); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &Store{
			Driver:          cfg.Driver,
			Snapshots:       sqlite.NewSnapshotStore(db, schema),
			Representatives: sqlite.NewRepresentativeStore(db, schema),
			Pinger:          monitor.PingFunc(db.PingContext),
			closer:          db,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// ReportRules overlays the configured overrides on the default rules.
func ReportRules(cfg config.ReportsConfig) (reportUC.Rules, error) {
	rules := reportUC.DefaultRules()
	setFloat(&rules.CommissionRate, cfg.CommissionRate)
	setFloat(&rules.CLVMultiplier, cfg.CLVMultiplier)
	setFloat(&rules.VIPMinPremium, cfg.VIPMinPremium)
	setInt(&rules.VIPMinTenureDays, cfg.VIPMinTenureDays)
	setInt(&rules.ChurnWindowDays, cfg.ChurnWindowDays)
	setInt(&rules.HighRiskDays, cfg.HighRiskDays)
	setInt(&rules.MediumRiskDays, cfg.MediumRiskDays)
	setInt(&rules.GeoLimit, cfg.GeoLimit)
	setInt(&rules.CLVLimit, cfg.CLVLimit)
	setInt(&rules.MarketMinCustomers, cfg.MarketMinCustomers)
	if err := rules.Validate(); err != nil {
		return reportUC.Rules{}, fmt.Errorf("invalid report rules: %w", err)
	}
	return rules, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
