package report

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/repository"
)

func TestVIPReportExample(t *testing.T) {
	c1 := customer(1, "married", testNow.AddDate(0, 0, -800))
	c2 := customer(2, "married", testNow.AddDate(0, 0, -900))
	uc, _ := newTestUseCase(t, domain.Snapshot{
		Customers: []domain.Customer{c1, c2},
		Policies: []domain.Policy{
			policy(1, 1, 1, domain.PolicyHome, 6000, domain.PolicyActive),
			policy(2, 2, 1, domain.PolicyHome, 4000, domain.PolicyActive),
		},
	})

	vip := mustRun(t, uc, VIPCustomers, nil).Data.(VIPList)
	if len(vip.Customers) != 1 || vip.Customers[0].CustomerID != 1 {
		t.Fatalf("expected only customer 1, got %+v", vip.Customers)
	}
	got := vip.Customers[0]
	if got.TotalPremium != 6000 || got.TenureDays != 800 || got.RenewalRate != 100 {
		t.Fatalf("unexpected vip row %+v", got)
	}
}

func TestVIPReportThresholdsAndOrdering(t *testing.T) {
	old := testNow.AddDate(-3, 0, 0)
	customers := []domain.Customer{
		customer(1, "Evli", old),
		customer(2, "married", old),
		customer(3, "single", old),
		customer(4, "married", testNow.AddDate(0, 0, -730)),
		customer(5, "married", old),
	}
	policies := []domain.Policy{
		policy(1, 1, 1, domain.PolicyHome, 4000, domain.PolicyActive),
		policy(2, 1, 1, domain.PolicyCasco, 4000, domain.PolicyCancelled),
		policy(3, 2, 1, domain.PolicyHome, 8000, domain.PolicyActive),
		policy(4, 3, 1, domain.PolicyHome, 9000, domain.PolicyActive),
		policy(5, 4, 1, domain.PolicyHome, 9000, domain.PolicyActive),
		policy(6, 5, 1, domain.PolicyHome, 5000, domain.PolicyActive),
	}
	uc, _ := newTestUseCase(t, domain.Snapshot{Customers: customers, Policies: policies})

	vip := mustRun(t, uc, VIPCustomers, nil).Data.(VIPList)
	var ids []int64
	for _, c := range vip.Customers {
		ids = append(ids, c.CustomerID)
		if c.TotalPremium <= 5000 || c.TenureDays <= 730 || c.MaritalStatus != domain.MaritalMarried {
			t.Fatalf("row violates vip thresholds: %+v", c)
		}
	}
	// 2 and 1 tie on 8000; 2 has the higher renewal rate.
	if !reflect.DeepEqual(ids, []int64{2, 1}) {
		t.Fatalf("expected [2 1], got %v", ids)
	}
	if vip.Customers[1].RenewalRate != 50 {
		t.Fatalf("expected renewal rate 50, got %v", vip.Customers[1].RenewalRate)
	}

	stricter := mustRun(t, uc, VIPCustomers, map[string]string{"min_premium": "8000", "min_duration_days": "2000"}).Data.(VIPList)
	if len(stricter.Customers) != 0 {
		t.Fatalf("expected min_duration_days to exclude everyone, got %+v", stricter.Customers)
	}

	limited, _ := newTestUseCase(t, domain.Snapshot{Customers: customers, Policies: policies})
	limited.rules.VIPLimit = 1
	if got := mustRun(t, limited, VIPCustomers, nil).Data.(VIPList); len(got.Customers) != 1 {
		t.Fatalf("expected limit 1, got %d", len(got.Customers))
	}
}

func TestQuoteConversionExample(t *testing.T) {
	var offers []domain.Offer
	var policies []domain.Policy
	for i := int64(1); i <= 10; i++ {
		offers = append(offers, domain.Offer{ID: i, CustomerID: 1, Type: domain.PolicyHome, Premium: 1000, CreatedAt: day(2026, 1, 10)})
		if i <= 3 {
			p := policy(i, 1, 1, domain.PolicyHome, 1200, domain.PolicyActive)
			p.OfferID = ref(i)
			policies = append(policies, p)
		}
	}
	uc, _ := newTestUseCase(t, domain.Snapshot{Offers: offers, Policies: policies})

	conv := mustRun(t, uc, QuoteConversion, nil).Data.(Conversion)
	if len(conv.Types) != len(domain.PolicyTypes) {
		t.Fatalf("expected a row per policy type, got %d", len(conv.Types))
	}
	home := conv.Types[0]
	if home.PolicyType != domain.PolicyHome || home.Quotes != 10 || home.Converted != 3 || home.ConversionRate != 30.0 {
		t.Fatalf("unexpected home row %+v", home)
	}
	if home.AvgQuote != 1000 || home.AvgConverted != 1200 {
		t.Fatalf("unexpected averages %+v", home)
	}
	for _, row := range conv.Types[1:] {
		if row.Quotes != 0 || row.ConversionRate != 0 {
			t.Fatalf("expected zero row for %s, got %+v", row.PolicyType, row)
		}
	}

	filtered := mustRun(t, uc, QuoteConversion, map[string]string{"policy_type": "dask"}).Data.(Conversion)
	if len(filtered.Types) != 1 || filtered.Types[0].PolicyType != domain.PolicyEarthquake || filtered.Types[0].ConversionRate != 0 {
		t.Fatalf("expected a single zero earthquake row, got %+v", filtered.Types)
	}
}

func TestRepresentativePerformanceKeepsIdleRepresentatives(t *testing.T) {
	uc, _ := newTestUseCase(t, domain.Snapshot{
		Customers: []domain.Customer{customer(1, "single", day(2024, 1, 1)), customer(2, "single", day(2024, 1, 1))},
		Representatives: []domain.Representative{
			rep(1, "Ayse", 2, domain.RepresentativeActive),
			rep(2, "Riza", 5, domain.RepresentativeActive),
			rep(3, "Gone", 5, domain.RepresentativeInactive),
		},
		Policies: []domain.Policy{
			policy(1, 1, 1, domain.PolicyHome, 1000, domain.PolicyActive),
			policy(2, 2, 1, domain.PolicyCasco, 3000, domain.PolicyCancelled),
			policy(3, 1, 3, domain.PolicyCasco, 9000, domain.PolicyActive),
		},
	})

	stats := mustRun(t, uc, RepresentativePerformance, nil).Data.(RepresentativeStats)
	if len(stats.Representatives) != 2 {
		t.Fatalf("expected the two active representatives, got %+v", stats.Representatives)
	}
	top, idle := stats.Representatives[0], stats.Representatives[1]
	if top.Name != "Ayse (2)" || top.Policies != 2 || top.TotalPremium != 4000 || top.AvgPremium != 2000 ||
		top.ActivePolicies != 1 || top.Customers != 2 {
		t.Fatalf("unexpected top row %+v", top)
	}
	if idle.RepresentativeID != 2 || idle.Policies != 0 || idle.TotalPremium != 0 || idle.AvgPremium != 0 {
		t.Fatalf("expected zero-valued idle row, got %+v", idle)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	uc, _ := newTestUseCase(t, richSnapshot())
	for _, def := range uc.Catalog().Definitions() {
		filters := map[string]string{"start_date": "2020-01-01", "end_date": "2026-12-31"}
		first := mustRun(t, uc, def.Name, filters)
		second := mustRun(t, uc, def.Name, filters)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("%s: repeated runs differ", def.Name)
		}
	}
}

func TestRunChecksRoleLevel(t *testing.T) {
	uc, _ := newTestUseCase(t, richSnapshot())
	agent := domain.Viewer{RepresentativeID: 9, RoleLevel: domain.DefaultRoleLevel}

	for _, name := range []string{RepresentativePerformance, ProfitabilityReport, TaskPerformance} {
		if _, err := uc.Run(context.Background(), name, nil, agent); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected ErrForbidden, got %v", name, err)
		}
	}
	if _, err := uc.Run(context.Background(), CustomerDemographics, nil, agent); err != nil {
		t.Fatalf("open report refused: %v", err)
	}
	if _, err := uc.Run(context.Background(), ProfitabilityReport, nil, domain.Viewer{RoleLevel: ManagementRoleLevel}); err != nil {
		t.Fatalf("management refused: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	uc, store := newTestUseCase(t, richSnapshot())
	ctx := context.Background()

	if _, err := uc.Run(ctx, "nope", nil, manager); !errors.Is(err, domain.ErrUnknownReport) {
		t.Fatalf("expected ErrUnknownReport, got %v", err)
	}
	if _, err := uc.Run(ctx, PolicyPerformance, map[string]string{"start_date": "2026-01-01"}, manager); !errors.Is(err, domain.ErrIncompleteRange) {
		t.Fatalf("expected ErrIncompleteRange, got %v", err)
	}

	store.FailWith(errors.New("pq: syntax error at or near \"SELECT id FROM crm_policies\""))
	_, err := uc.Run(ctx, PolicyPerformance, nil, manager)
	if !errors.Is(err, domain.ErrDataStore) {
		t.Fatalf("expected ErrDataStore, got %v", err)
	}
	var dErr *domain.Error
	if !errors.As(err, &dErr) || strings.Contains(dErr.PublicMessage(), "SELECT") {
		t.Fatalf("store detail leaked: %v", err)
	}
}

func TestRunRequiredFilters(t *testing.T) {
	catalog, err := NewCatalog(Definition{
		Name:      "monthly_production",
		Title:     "Monthly Production",
		Filters:   dateFilters,
		Required:  dateFilters,
		DateScope: repository.EntityPolicies,
		Entities:  []repository.Entity{repository.EntityPolicies},
		Aggregate: aggregatePolicyPerformance,
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	uc, _ := newTestUseCase(t, richSnapshot(), WithCatalog(catalog))

	_, err = uc.Run(context.Background(), "monthly_production", nil, manager)
	var dErr *domain.Error
	if !errors.Is(err, domain.ErrInvalidFilter) || !errors.As(err, &dErr) || dErr.Field != FilterStartDate {
		t.Fatalf("expected missing start_date error, got %v", err)
	}
	mustRun(t, uc, "monthly_production", map[string]string{"start_date": "2025-01-01", "end_date": "2025-12-31"})
}

func TestRunEchoesHonouredFiltersOnly(t *testing.T) {
	uc, _ := newTestUseCase(t, richSnapshot())
	rep := mustRun(t, uc, TaskPerformance, map[string]string{
		"start_date": "2026-01-01",
		"end_date":   "2026-01-31",
		"city":       "Ankara",
	})
	want := map[string]string{"start_date": "2026-01-01", "end_date": "2026-01-31"}
	if !reflect.DeepEqual(rep.Filters, want) {
		t.Fatalf("unexpected echo %v", rep.Filters)
	}
	if !rep.GeneratedAt.Equal(testNow) {
		t.Fatalf("expected injected clock, got %v", rep.GeneratedAt)
	}
}

func TestSnapshotQueryPushdown(t *testing.T) {
	c := DefaultCatalog()
	pred, err := Normalize(map[string]string{
		"start_date": "2026-01-01", "end_date": "2026-01-31", "policy_type": "home", "city": "Izmir",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	demo, _ := c.Lookup(CustomerDemographics)
	q := snapshotQuery(demo, demo.restrict(pred))
	if q.Customers == nil || q.Customers.Created == nil || q.Customers.City != "Izmir" {
		t.Fatalf("expected dated customer filter, got %+v", q.Customers)
	}
	if q.Policies == nil || q.Policies.Created != nil || q.Policies.Type != domain.PolicyHome {
		t.Fatalf("expected undated policies of type home, got %+v", q.Policies)
	}
	if q.Offers != nil || q.Tasks != nil || q.Representatives != nil {
		t.Fatalf("unexpected tables requested: %+v", q)
	}

	quotes, _ := c.Lookup(QuoteConversion)
	q = snapshotQuery(quotes, quotes.restrict(pred))
	if q.Offers == nil || q.Offers.Created == nil || q.Offers.Type != domain.PolicyHome {
		t.Fatalf("expected dated offers of type home, got %+v", q.Offers)
	}
	if q.Policies == nil || q.Policies.Type != "" || q.Policies.CustomerCity != "" || q.Policies.Created != nil {
		t.Fatalf("conversion join must load policies unfiltered, got %+v", q.Policies)
	}

	profit, _ := c.Lookup(ProfitabilityReport)
	q = snapshotQuery(profit, profit.restrict(pred))
	if len(q.Policies.Statuses) != 1 || q.Policies.Statuses[0] != domain.PolicyActive || q.Policies.Created == nil {
		t.Fatalf("expected active dated policies, got %+v", q.Policies)
	}
}

func TestDashboard(t *testing.T) {
	uc, _ := newTestUseCase(t, richSnapshot())

	full, err := uc.Dashboard(context.Background(), nil, manager)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(full.Reports) != len(DashboardReports) || len(full.Skipped) != 0 {
		t.Fatalf("expected all sections, got %d (skipped %v)", len(full.Reports), full.Skipped)
	}
	for i, rep := range full.Reports {
		if rep.Name != DashboardReports[i] {
			t.Fatalf("section %d: expected %s, got %s", i, DashboardReports[i], rep.Name)
		}
	}

	agent, err := uc.Dashboard(context.Background(), nil, domain.Viewer{RoleLevel: 5})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(agent.Reports) != 3 || !reflect.DeepEqual(agent.Skipped, []string{RepresentativePerformance}) {
		t.Fatalf("expected representative section to be skipped, got %v", agent.Skipped)
	}

	if _, err := uc.Dashboard(context.Background(), map[string]string{"end_date": "2026-01-01"}, manager); !errors.Is(err, domain.ErrIncompleteRange) {
		t.Fatalf("expected filter validation, got %v", err)
	}
}
