package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fastygo/crm-reports/internal/infrastructure/exportstore"
)

func TestRefreshReportsProbes(t *testing.T) {
	exports, err := exportstore.Open(filepath.Join(t.TempDir(), "exports.db"))
	if err != nil {
		t.Fatalf("open export store: %v", err)
	}
	defer exports.Close()

	healthy := PingFunc(func(context.Context) error { return nil })
	m := New(healthy, "sqlite", nil, exports, 0, nil)

	status := m.Refresh()
	if !status.Database || status.Driver != "sqlite" || !status.Exports {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Redis || m.IsOnline() {
		t.Fatalf("missing redis must keep the service offline")
	}
	if m.GetStatus().LastCheck.IsZero() {
		t.Fatalf("expected status to be stored")
	}
}

func TestRefreshDatabaseFailure(t *testing.T) {
	failing := PingFunc(func(context.Context) error { return errors.New("connection refused") })
	m := New(failing, "postgres", nil, nil, 0, nil)

	status := m.Refresh()
	if status.Database || status.Exports {
		t.Fatalf("expected failed probes, got %+v", status)
	}
	m.Stop()
	m.Stop()
}
