package report

import (
	"reflect"
	"testing"
	"time"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/repository/memory"
)

func TestCustomerDemographics(t *testing.T) {
	uc, _ := newTestUseCase(t, richSnapshot())
	demo := mustRun(t, uc, CustomerDemographics, nil).Data.(Demographics)

	wantAges := []AgeGroupRow{
		{AgeGroup: "18-25", Customers: 1, Policies: 1, AvgPremium: 800},
		{AgeGroup: "36-50", Customers: 1, Policies: 2, AvgPremium: 7500},
		{AgeGroup: "unknown", Customers: 1, Policies: 0, AvgPremium: 0},
	}
	if !reflect.DeepEqual(demo.AgeGroups, wantAges) {
		t.Fatalf("unexpected age groups %+v", demo.AgeGroups)
	}
	wantGenders := []GenderRow{
		{Gender: "female", Customers: 1, Policies: 2, TotalPremium: 15000},
		{Gender: "male", Customers: 2, Policies: 1, TotalPremium: 800},
	}
	if !reflect.DeepEqual(demo.Genders, wantGenders) {
		t.Fatalf("unexpected genders %+v", demo.Genders)
	}
	if len(demo.MaritalStatuses) != 3 || demo.MaritalStatuses[0].MaritalStatus != "divorced" {
		t.Fatalf("unexpected marital rows %+v", demo.MaritalStatuses)
	}

	dated := mustRun(t, uc, CustomerDemographics, map[string]string{"start_date": "2025-11-01", "end_date": "2026-01-31"}).Data.(Demographics)
	total := 0
	for _, row := range dated.AgeGroups {
		total += row.Customers
	}
	if total != 2 {
		t.Fatalf("expected customers created in range only, got %d", total)
	}
}

func TestDemographicsAverageUsesLeftJoin(t *testing.T) {
	uc, _ := newTestUseCase(t, domain.Snapshot{
		Customers: []domain.Customer{customer(1, "married", day(2024, 1, 1)), customer(2, "Evli", day(2024, 1, 1))},
		Policies: []domain.Policy{
			policy(1, 1, 1, domain.PolicyHome, 1000, domain.PolicyActive),
			policy(2, 1, 1, domain.PolicyHome, 2000, domain.PolicyActive),
		},
	})
	demo := mustRun(t, uc, CustomerDemographics, map[string]string{"marital_status": "married"}).Data.(Demographics)
	if len(demo.MaritalStatuses) != 1 {
		t.Fatalf("expected one marital bucket, got %+v", demo.MaritalStatuses)
	}
	row := demo.MaritalStatuses[0]
	// Two policy rows plus one zero row for the customer without policies.
	if row.Customers != 2 || row.AvgPremium != 1000 {
		t.Fatalf("unexpected married row %+v", row)
	}
}

func TestRiskAnalysis(t *testing.T) {
	snap := richSnapshot()
	lapsed := policy(4, 2, 1, domain.PolicyHealth, 400, domain.PolicyActive)
	lapsed.EndDate = day(2026, 2, 20)
	far := policy(5, 2, 1, domain.PolicyHealth, 400, domain.PolicyActive)
	far.EndDate = day(2026, 9, 1)
	snap.Policies = append(snap.Policies, lapsed, far)
	uc, _ := newTestUseCase(t, snap)

	risk := mustRun(t, uc, RiskAnalysis, nil).Data.(Risk)
	var got []int64
	for _, row := range risk.ChurnRisk {
		got = append(got, row.PolicyID)
	}
	if !reflect.DeepEqual(got, []int64{4, 1, 3}) {
		t.Fatalf("expected churn rows [4 1 3], got %v", got)
	}
	if risk.ChurnRisk[0].DaysToRenewal != -9 || risk.ChurnRisk[0].RiskLevel != domain.RiskHigh {
		t.Fatalf("unexpected lapsed row %+v", risk.ChurnRisk[0])
	}
	if risk.ChurnRisk[1].DaysToRenewal != 19 || risk.ChurnRisk[2].RiskLevel != domain.RiskMedium {
		t.Fatalf("unexpected levels %+v", risk.ChurnRisk)
	}
	if len(risk.PaymentDelays) != 1 || risk.PaymentDelays[0].PolicyID != 1 {
		t.Fatalf("expected overdue policy 1, got %+v", risk.PaymentDelays)
	}

	medium := mustRun(t, uc, RiskAnalysis, map[string]string{"risk_level": "medium"}).Data.(Risk)
	if len(medium.ChurnRisk) != 1 || medium.ChurnRisk[0].PolicyID != 3 {
		t.Fatalf("expected only policy 3, got %+v", medium.ChurnRisk)
	}
	none := mustRun(t, uc, RiskAnalysis, map[string]string{"risk_level": "extreme"}).Data.(Risk)
	if len(none.ChurnRisk) != 0 {
		t.Fatalf("unknown risk level must match nothing, got %+v", none.ChurnRisk)
	}
}

func TestPolicyPerformance(t *testing.T) {
	uc, _ := newTestUseCase(t, richSnapshot())
	stats := mustRun(t, uc, PolicyPerformance, nil).Data.(PolicyStats)

	var order []domain.PolicyType
	for _, row := range stats.Distribution {
		order = append(order, row.PolicyType)
	}
	if !reflect.DeepEqual(order, []domain.PolicyType{domain.PolicyCasco, domain.PolicyHome, domain.PolicyTraffic}) {
		t.Fatalf("unexpected order %v", order)
	}
	if home := stats.Distribution[1]; home.Cancelled != 1 || home.Active != 0 || home.AvgPremium != 3000 {
		t.Fatalf("unexpected home row %+v", home)
	}
	var months []string
	for _, row := range stats.PremiumTrend {
		months = append(months, row.Month)
	}
	if !reflect.DeepEqual(months, []string{"2025-06", "2025-12", "2026-01"}) {
		t.Fatalf("unexpected trend %v", months)
	}

	dated := mustRun(t, uc, PolicyPerformance, map[string]string{"start_date": "2025-12-01", "end_date": "2026-01-31"}).Data.(PolicyStats)
	if len(dated.Distribution) != 2 {
		t.Fatalf("expected two types in range, got %+v", dated.Distribution)
	}
	byCity := mustRun(t, uc, PolicyPerformance, map[string]string{"city": "izmir"}).Data.(PolicyStats)
	if len(byCity.Distribution) != 1 || byCity.Distribution[0].PolicyType != domain.PolicyTraffic {
		t.Fatalf("expected Izmir policies only, got %+v", byCity.Distribution)
	}
}

func TestProfitability(t *testing.T) {
	uc, _ := newTestUseCase(t, richSnapshot())
	profit := mustRun(t, uc, ProfitabilityReport, nil).Data.(Profitability)

	want := ProfitabilityRow{
		PolicyType: "casco", Policies: 1, Revenue: 12000, AvgRevenue: 12000, Commission: 1800,
		EstimatedCost: 10200, AvgProfitPerPolicy: 1800, ProfitMargin: 15,
	}
	if len(profit.Types) != 2 || profit.Types[0] != want {
		t.Fatalf("unexpected rows %+v", profit.Types)
	}
	summary := profit.Summary
	if summary.Policies != 2 || summary.Revenue != 12800 || summary.Commission != 1920 || summary.AvgProfitPerPolicy != 960 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	empty := mustRun(t, uc, ProfitabilityReport, map[string]string{"policy_type": "health"}).Data.(Profitability)
	if len(empty.Types) != 0 || empty.Summary.AvgProfitPerPolicy != 0 || empty.Summary.ProfitMargin != 15 {
		t.Fatalf("expected zero summary without policies, got %+v", empty)
	}

	uc.rules.CommissionRate = 0.2
	if got := mustRun(t, uc, ProfitabilityReport, nil).Data.(Profitability).Summary; got.Commission != 2560 || got.ProfitMargin != 20 {
		t.Fatalf("expected configured rate to apply, got %+v", got)
	}
}

func TestGeographicDistribution(t *testing.T) {
	uc, _ := newTestUseCase(t, richSnapshot())
	geo := mustRun(t, uc, "geographic", nil).Data.(Geography)

	want := []GeoRow{
		{City: "Ankara", District: "Cankaya", Customers: 2, Policies: 2, TotalPremium: 15000, AvgPremium: 7500},
		{City: "Izmir", District: "Konak", Customers: 1, Policies: 1, TotalPremium: 800, AvgPremium: 800},
	}
	if !reflect.DeepEqual(geo.Regions, want) {
		t.Fatalf("unexpected regions %+v", geo.Regions)
	}

	uc.rules.GeoLimit = 1
	if got := mustRun(t, uc, GeographicDistribution, nil).Data.(Geography); len(got.Regions) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(got.Regions))
	}
}

func TestCustomerLifetimeValue(t *testing.T) {
	uc, _ := newTestUseCase(t, domain.Snapshot{
		Customers: []domain.Customer{
			customer(1, "single", testNow.AddDate(0, 0, -365)),
			customer(2, "single", testNow),
			customer(3, "single", testNow.AddDate(-2, 0, 0)),
		},
		Policies: []domain.Policy{
			policy(1, 1, 1, domain.PolicyHome, 20000, domain.PolicyActive),
			policy(2, 2, 1, domain.PolicyHome, 9000, domain.PolicyActive),
		},
	})
	clv := mustRun(t, uc, CustomerLifetimeValue, nil).Data.(LifetimeValue)
	if len(clv.Customers) != 2 {
		t.Fatalf("expected customers with policies only, got %+v", clv.Customers)
	}
	first, second := clv.Customers[0], clv.Customers[1]
	if first.CustomerID != 1 || first.EstimatedCLV != 24000 || first.AnnualValue != 20013.7 || first.Segment != SegmentHigh {
		t.Fatalf("unexpected first row %+v", first)
	}
	if second.TenureDays != 0 || second.AnnualValue != 0 || second.Segment != SegmentMedium || second.EstimatedCLV != 10800 {
		t.Fatalf("unexpected second row %+v", second)
	}

	filtered := mustRun(t, uc, CustomerLifetimeValue, map[string]string{"min_premium": "10000"}).Data.(LifetimeValue)
	if len(filtered.Customers) != 1 || filtered.Customers[0].CustomerID != 1 {
		t.Fatalf("expected min_premium to apply, got %+v", filtered.Customers)
	}
}

func TestMarketAnalysis(t *testing.T) {
	var snap domain.Snapshot
	id := int64(0)
	for i := int64(1); i <= 19; i++ {
		c := customer(i, "single", day(2024, 1, 1))
		c.City = "Bursa"
		if i > 10 {
			c.City = "Adana"
		}
		snap.Customers = append(snap.Customers, c)
		switch {
		case i <= 5:
			id++
			snap.Policies = append(snap.Policies, policy(id, i, 1, domain.PolicyHome, 100, domain.PolicyActive))
			id++
			snap.Policies = append(snap.Policies, policy(id, i, 1, domain.PolicyCasco, 300, domain.PolicyActive))
		case i > 10:
			id++
			snap.Policies = append(snap.Policies, policy(id, i, 1, domain.PolicyTraffic, 1000, domain.PolicyActive))
		}
	}
	uc, _ := newTestUseCase(t, snap)
	market := mustRun(t, uc, MarketAnalysis, nil).Data.(Market)

	if len(market.Cities) != 1 {
		t.Fatalf("expected only Bursa to reach the customer threshold, got %+v", market.Cities)
	}
	bursa := market.Cities[0]
	if bursa.City != "Bursa" || bursa.Customers != 10 || bursa.Policies != 10 || bursa.Penetration != 1 || bursa.TotalPremium != 2000 {
		t.Fatalf("unexpected Bursa row %+v", bursa)
	}
	wantShares := []float64{81.82, 13.64, 4.55}
	for i, row := range market.Shares {
		if !floatEqual(row.Share, wantShares[i]) {
			t.Fatalf("share %d: expected %v, got %+v", i, wantShares[i], row)
		}
	}
}

func TestTaskPerformance(t *testing.T) {
	uc, _ := newTestUseCase(t, richSnapshot())
	tasks := mustRun(t, uc, TaskPerformance, nil).Data.(TaskStats)

	want := []TaskRow{
		{RepresentativeID: 1, Name: "Ayse (2)", Total: 2, Completed: 1, Pending: 1, CompletionRate: 50, AvgCompletionHours: 6},
		{RepresentativeID: 2, Name: "Riza (5)", Total: 1, Overdue: 1},
	}
	if !reflect.DeepEqual(tasks.Representatives, want) {
		t.Fatalf("unexpected rows %+v", tasks.Representatives)
	}

	outside := mustRun(t, uc, TaskPerformance, map[string]string{"start_date": "2025-01-01", "end_date": "2025-01-31"}).Data.(TaskStats)
	for _, row := range outside.Representatives {
		if row.Total != 0 || row.CompletionRate != 0 {
			t.Fatalf("expected zero rows outside the range, got %+v", row)
		}
	}
}

func TestCustomerSatisfaction(t *testing.T) {
	uc, _ := newTestUseCase(t, richSnapshot())
	sat := mustRun(t, uc, CustomerSatisfaction, nil).Data.(Satisfaction)

	if len(sat.Customers) != 2 {
		t.Fatalf("expected customers with policies only, got %+v", sat.Customers)
	}
	if sat.Customers[0].CustomerID != 2 || sat.Customers[0].Level != LevelVerySatisfied {
		t.Fatalf("unexpected first row %+v", sat.Customers[0])
	}
	if sat.Customers[1].RetentionRate != 50 || sat.Customers[1].Level != LevelNeutral {
		t.Fatalf("unexpected second row %+v", sat.Customers[1])
	}
	wantLevels := []SatisfactionLevelRow{
		{Level: LevelVerySatisfied, Customers: 1, Share: 50},
		{Level: LevelSatisfied},
		{Level: LevelNeutral, Customers: 1, Share: 50},
		{Level: LevelDissatisfied},
	}
	if !reflect.DeepEqual(sat.Levels, wantLevels) {
		t.Fatalf("unexpected levels %+v", sat.Levels)
	}
}

func TestResultTablesMatchColumns(t *testing.T) {
	uc, _ := newTestUseCase(t, richSnapshot())
	for _, def := range uc.Catalog().Definitions() {
		rep := mustRun(t, uc, def.Name, nil)
		for _, table := range rep.Data.Tables() {
			if table.Name == "" || len(table.Columns) == 0 {
				t.Fatalf("%s: table without name or columns", def.Name)
			}
			for _, row := range table.Rows {
				if len(row) != len(table.Columns) {
					t.Fatalf("%s/%s: row width %d, want %d", def.Name, table.Name, len(row), len(table.Columns))
				}
			}
		}
	}
}

func TestRulesHonourExplicitZero(t *testing.T) {
	rules := DefaultRules()
	rules.MarketMinCustomers = 0
	rules.CommissionRate = 0
	rules.GeoLimit = 0
	uc := New(memory.NewStore(richSnapshot()), rules, nil, WithClock(fixedClock))

	market := mustRun(t, uc, MarketAnalysis, nil).Data.(Market)
	if len(market.Cities) != 2 {
		t.Fatalf("expected every city without a customer threshold, got %+v", market.Cities)
	}
	profit := mustRun(t, uc, ProfitabilityReport, nil).Data.(Profitability).Summary
	if profit.Commission != 0 || profit.ProfitMargin != 0 {
		t.Fatalf("expected a zero commission rate to apply, got %+v", profit)
	}
	if geo := mustRun(t, uc, GeographicDistribution, nil).Data.(Geography); len(geo.Regions) != 2 {
		t.Fatalf("expected a zero limit to keep every region, got %d", len(geo.Regions))
	}
}

func TestRulesValidate(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	bad := DefaultRules()
	bad.CommissionRate = 1
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected a commission rate of 1 to be rejected")
	}
	bad = DefaultRules()
	bad.GeoLimit = -1
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected a negative limit to be rejected")
	}
}

func TestPolicyPerformanceBucketsByUTCMonthAndCanonicalType(t *testing.T) {
	istanbul := time.FixedZone("+03", 3*60*60)
	late := policy(1, 1, 1, "kasko", 1000, domain.PolicyActive)
	late.CreatedAt = time.Date(2024, 1, 31, 22, 30, 0, 0, time.UTC).In(istanbul)
	early := policy(2, 1, 1, domain.PolicyCasco, 500, domain.PolicyActive)
	early.CreatedAt = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	uc, _ := newTestUseCase(t, domain.Snapshot{
		Customers:       []domain.Customer{customer(1, "Evli", day(2023, 1, 1))},
		Representatives: []domain.Representative{rep(1, "Ayse", 2, domain.RepresentativeActive)},
		Policies:        []domain.Policy{late, early},
	})
	stats := mustRun(t, uc, PolicyPerformance, map[string]string{
		"start_date":  "2024-01-01",
		"end_date":    "2024-01-31",
		"policy_type": "casco",
	}).Data.(PolicyStats)

	if len(stats.Distribution) != 1 || stats.Distribution[0].PolicyType != domain.PolicyCasco || stats.Distribution[0].Count != 2 {
		t.Fatalf("expected both policies under casco, got %+v", stats.Distribution)
	}
	if len(stats.PremiumTrend) != 1 || stats.PremiumTrend[0].Month != "2024-01" {
		t.Fatalf("expected a single 2024-01 bucket, got %+v", stats.PremiumTrend)
	}
}
