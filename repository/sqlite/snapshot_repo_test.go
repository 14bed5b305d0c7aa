package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := InitSchema(context.Background(), db, repository.MustSchema("")); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func seed(t *testing.T, db *sql.DB) {
	t.Helper()
	mustExec(t, db, `INSERT INTO crm_representatives (id, user_id, display_name, role_level, status, created_at) VALUES
		(1, 10, 'Ayse', 2, 'active', '2024-01-01 00:00:00'),
		(2, 11, 'Mehmet', 5, 'inactive', '2024-01-01 00:00:00')`)
	mustExec(t, db, `INSERT INTO crm_customers (id, first_name, last_name, birth_date, marital_status, city, district, created_at) VALUES
		(1, 'Ali', 'Kaya', '1980-05-01', 'Evli', 'Ankara', 'Cankaya', '2022-01-10 09:00:00'),
		(2, 'Zeynep', 'Demir', NULL, 'Bekar', 'izmir', 'Konak', '2026-01-15 12:00:00')`)
	mustExec(t, db, `INSERT INTO crm_offers (id, customer_id, policy_type, premium_amount, created_at) VALUES
		(1, 1, 'home', 1200, '2026-01-05 10:00:00'),
		(2, 2, 'traffic', 800, '2026-02-05 10:00:00')`)
	mustExec(t, db, `INSERT INTO crm_policies (id, policy_number, customer_id, representative_id, offer_id, policy_type, premium_amount, status, payment_status, start_date, end_date, created_at) VALUES
		(1, 'P-1', 1, 1, 1, 'home', 1500.5, 'active', 'overdue', '2026-01-06', '2027-01-06', '2026-01-06 08:00:00'),
		(2, 'P-2', 2, 1, NULL, 'traffic', 900, 'cancelled', 'current', '2026-01-31', '2027-01-31', '2026-01-31 23:59:59'),
		(3, 'P-3', 1, 1, NULL, 'home', 300, 'active', 'current', '2025-06-01', '2026-06-01', '2025-06-01 08:00:00')`)
	mustExec(t, db, `INSERT INTO crm_tasks (id, representative_id, customer_id, status, created_at, completed_at) VALUES
		(1, 1, 1, 'completed', '2026-01-02 08:00:00', '2026-01-02 20:00:00'),
		(2, 1, NULL, 'pending', '2026-01-03 08:00:00', NULL)`)
}

func TestSnapshotStoreLoadsFilteredTables(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	store := NewSnapshotStore(db, repository.MustSchema(""))

	january := &domain.DateRange{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	snap, err := store.Load(context.Background(), repository.SnapshotQuery{
		Customers:       &repository.CustomerFilter{},
		Policies:        &repository.PolicyFilter{Created: january},
		Representatives: &repository.RepresentativeFilter{ActiveOnly: true},
		Tasks:           &repository.TaskFilter{},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(snap.Customers) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(snap.Customers))
	}
	if snap.Customers[1].BirthDate != nil {
		t.Fatalf("expected NULL birth date to stay nil")
	}
	if len(snap.Policies) != 2 {
		t.Fatalf("expected policies 1 and 2 inside January, got %d", len(snap.Policies))
	}
	first := snap.Policies[0]
	if first.OfferID == nil || *first.OfferID != 1 || first.Premium != 1500.5 || !first.IsOverdue() {
		t.Fatalf("unexpected policy %+v", first)
	}
	if len(snap.Representatives) != 1 || snap.Representatives[0].DisplayName != "Ayse" {
		t.Fatalf("expected only the active representative, got %+v", snap.Representatives)
	}
	if len(snap.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(snap.Tasks))
	}
	if hours, ok := snap.Tasks[0].CompletionHours(); !ok || hours != 12 {
		t.Fatalf("expected 12 completion hours, got %v (%v)", hours, ok)
	}
	if snap.Offers != nil {
		t.Fatalf("offers were not requested")
	}
}

func TestSnapshotStoreCityFilterIgnoresCase(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)
	store := NewSnapshotStore(db, repository.MustSchema(""))

	snap, err := store.Load(context.Background(), repository.SnapshotQuery{
		Customers: &repository.CustomerFilter{City: "IZMIR"},
		Policies:  &repository.PolicyFilter{CustomerCity: "Izmir", Type: domain.PolicyTraffic},
		Offers:    &repository.OfferFilter{Type: domain.PolicyTraffic},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Customers) != 1 || snap.Customers[0].ID != 2 {
		t.Fatalf("expected customer 2, got %+v", snap.Customers)
	}
	if len(snap.Policies) != 1 || snap.Policies[0].ID != 2 {
		t.Fatalf("expected policy 2, got %+v", snap.Policies)
	}
	if len(snap.Offers) != 1 || snap.Offers[0].ID != 2 {
		t.Fatalf("expected offer 2, got %+v", snap.Offers)
	}
}

func TestRepresentativeStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	store := NewRepresentativeStore(db, repository.MustSchema(""))
	ctx := context.Background()

	if _, err := store.GetByUserID(ctx, 42); !errors.Is(err, domain.ErrRepresentativeNotFound) {
		t.Fatalf("expected ErrRepresentativeNotFound, got %v", err)
	}

	rep := &domain.Representative{UserID: 42, DisplayName: "Deniz", RoleLevel: domain.DefaultRoleLevel, Status: domain.RepresentativeActive}
	if err := store.Create(ctx, rep); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rep.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}

	got, err := store.GetByUserID(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != rep.ID || !got.IsActive() || got.RoleLevel != domain.DefaultRoleLevel {
		t.Fatalf("unexpected representative %+v", got)
	}
}

func TestSnapshotStoreRangeIncludesDateOnlyValues(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db, `INSERT INTO crm_customers (id, first_name, last_name, city, created_at) VALUES
		(1, 'Ali', 'Kaya', 'Ankara', '2026-01-05'),
		(2, 'Zeynep', 'Demir', 'Izmir', '2026-01-05 09:00:00'),
		(3, 'Can', 'Arslan', 'Bursa', '2026-01-06'),
		(4, 'Elif', 'Sahin', 'Bursa', '2026-01-04 23:59:59')`)
	store := NewSnapshotStore(db, repository.MustSchema(""))

	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	snap, err := store.Load(context.Background(), repository.SnapshotQuery{
		Customers: &repository.CustomerFilter{Created: &domain.DateRange{Start: day, End: day}},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Customers) != 2 || snap.Customers[0].ID != 1 || snap.Customers[1].ID != 2 {
		t.Fatalf("expected customers 1 and 2 on 2026-01-05, got %+v", snap.Customers)
	}
}

func TestSnapshotStoreNormalisesLegacyTypeCodes(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db, `INSERT INTO crm_representatives (id, user_id, display_name, created_at) VALUES (1, 10, 'Ayse', '2024-01-01 00:00:00')`)
	mustExec(t, db, `INSERT INTO crm_customers (id, first_name, last_name, created_at) VALUES (1, 'Ali', 'Kaya', '2026-01-01 00:00:00')`)
	mustExec(t, db, `INSERT INTO crm_policies (id, policy_number, customer_id, representative_id, policy_type, premium_amount, status, payment_status, start_date, end_date, created_at) VALUES
		(1, 'P-1', 1, 1, 'kasko', 1000, 'active', 'current', '2026-01-06', '2027-01-06', '2026-01-06 08:00:00'),
		(2, 'P-2', 1, 1, 'Casco', 2000, 'active', 'current', '2026-01-07', '2027-01-07', '2026-01-07 08:00:00'),
		(3, 'P-3', 1, 1, 'trafik', 500, 'active', 'current', '2026-01-08', '2027-01-08', '2026-01-08 08:00:00')`)
	mustExec(t, db, `INSERT INTO crm_offers (id, customer_id, policy_type, premium_amount, created_at) VALUES
		(1, 1, 'kasko', 900, '2026-01-05 10:00:00'),
		(2, 1, 'konut', 400, '2026-01-05 11:00:00')`)
	store := NewSnapshotStore(db, repository.MustSchema(""))

	snap, err := store.Load(context.Background(), repository.SnapshotQuery{
		Policies: &repository.PolicyFilter{Type: domain.PolicyCasco},
		Offers:   &repository.OfferFilter{Type: domain.PolicyCasco},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Policies) != 2 {
		t.Fatalf("expected both casco policies, got %+v", snap.Policies)
	}
	for _, p := range snap.Policies {
		if p.Type != domain.PolicyCasco {
			t.Fatalf("expected canonical type, got %q", p.Type)
		}
	}
	if len(snap.Offers) != 1 || snap.Offers[0].Type != domain.PolicyCasco {
		t.Fatalf("expected the kasko offer as casco, got %+v", snap.Offers)
	}
}
