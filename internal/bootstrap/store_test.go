package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/internal/config"
	"github.com/fastygo/crm-reports/repository"
)

func TestReportRulesOverlaysSetFields(t *testing.T) {
	rate, geo := 0.2, 5
	rules, err := ReportRules(config.ReportsConfig{CommissionRate: &rate, GeoLimit: &geo})
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if rules.CommissionRate != 0.2 || rules.GeoLimit != 5 {
		t.Fatalf("expected overrides to apply, got %+v", rules)
	}
	if rules.VIPMinPremium != 5000 || rules.CLVMultiplier != 1.2 {
		t.Fatalf("expected defaults for unset values, got %+v", rules)
	}
}

func TestReportRulesAcceptsExplicitZero(t *testing.T) {
	zeroRate, zeroPremium, zeroCustomers := 0.0, 0.0, 0
	rules, err := ReportRules(config.ReportsConfig{
		CommissionRate:     &zeroRate,
		VIPMinPremium:      &zeroPremium,
		MarketMinCustomers: &zeroCustomers,
	})
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if rules.CommissionRate != 0 || rules.VIPMinPremium != 0 || rules.MarketMinCustomers != 0 {
		t.Fatalf("expected explicit zeros to stick, got %+v", rules)
	}
}

func TestReportRulesRejectsInconsistentWindows(t *testing.T) {
	high := 90
	if _, err := ReportRules(config.ReportsConfig{HighRiskDays: &high}); err == nil {
		t.Fatalf("expected a high-risk window wider than the medium one to fail")
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "crm.db"),
		TablePrefix: "crm_",
	}
	store, err := OpenStore(context.Background(), cfg, OpenStoreOptions{InitSchema: true}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Pinger.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	rep := &domain.Representative{UserID: 7, DisplayName: "Ayse", RoleLevel: 2, Status: domain.RepresentativeActive}
	if err := store.Representatives.Create(ctx, rep); err != nil {
		t.Fatalf("create representative: %v", err)
	}
	snap, err := store.Snapshots.Load(ctx, repository.SnapshotQuery{Representatives: &repository.RepresentativeFilter{}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Representatives) != 1 || snap.Representatives[0].UserID != 7 {
		t.Fatalf("unexpected representatives %+v", snap.Representatives)
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenStore(context.Background(), config.DatabaseConfig{Driver: "mysql", TablePrefix: "crm_"}, OpenStoreOptions{}, nil); err == nil {
		t.Fatalf("expected an error for mysql")
	}
}
