package report

import (
	"sort"

	"github.com/fastygo/crm-reports/domain"
)

type ProfitabilityRow struct {
	PolicyType         string  `json:"policy_type"`
	Policies           int     `json:"policy_count"`
	Revenue            float64 `json:"total_revenue"`
	AvgRevenue         float64 `json:"avg_revenue_per_policy"`
	Commission         float64 `json:"estimated_commission"`
	EstimatedCost      float64 `json:"estimated_cost"`
	AvgProfitPerPolicy float64 `json:"avg_profit_per_policy"`
	ProfitMargin       float64 `json:"profit_margin"`
}

// Profitability is the profitability result. The margin is the configured
// commission rate, not a measured cost ratio.
type Profitability struct {
	Types   []ProfitabilityRow `json:"by_type"`
	Summary ProfitabilityRow   `json:"summary"`
}

func (Profitability) isResult() {}

func (p Profitability) Tables() []domain.Table {
	t := domain.Table{Name: "profitability", Columns: []string{
		"policy_type", "policy_count", "total_revenue", "avg_revenue_per_policy", "estimated_commission",
		"estimated_cost", "avg_profit_per_policy", "profit_margin",
	}}
	for _, r := range append(append([]ProfitabilityRow(nil), p.Types...), p.Summary) {
		t.Rows = append(t.Rows, []any{r.PolicyType, r.Policies, r.Revenue, r.AvgRevenue, r.Commission,
			r.EstimatedCost, r.AvgProfitPerPolicy, r.ProfitMargin})
	}
	return []domain.Table{t}
}

func profitabilityRow(label string, count int, revenue, rate float64) ProfitabilityRow {
	commission := revenue * rate
	return ProfitabilityRow{
		PolicyType:         label,
		Policies:           count,
		Revenue:            round2(revenue),
		AvgRevenue:         round2(ratio(revenue, float64(count))),
		Commission:         round2(commission),
		EstimatedCost:      round2(revenue * (1 - rate)),
		AvgProfitPerPolicy: round2(ratio(commission, float64(count))),
		ProfitMargin:       round2(rate * 100),
	}
}

func aggregateProfitability(pred domain.Predicate, snap *domain.Snapshot, env Env) Result {
	scope := policyScope{dated: true, byType: true, activeOnly: true}
	if pred.HasCustomerFilter() {
		scope.customers, _ = customerSet(pred, snap, env.Now, false)
	}

	type acc struct {
		count   int
		revenue float64
	}
	byType := make(map[domain.PolicyType]*acc)
	var total acc
	for _, p := range scopedPolicies(pred, snap, scope) {
		a, ok := byType[p.Type]
		if !ok {
			a = &acc{}
			byType[p.Type] = a
		}
		a.count++
		a.revenue += p.Premium
		total.count++
		total.revenue += p.Premium
	}

	rate := env.Rules.CommissionRate
	out := Profitability{Types: make([]ProfitabilityRow, 0, len(byType))}
	for t, a := range byType {
		out.Types = append(out.Types, profitabilityRow(string(t), a.count, a.revenue, rate))
	}
	sort.Slice(out.Types, func(i, j int) bool {
		a, b := out.Types[i], out.Types[j]
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return domain.PolicyType(a.PolicyType).Rank() < domain.PolicyType(b.PolicyType).Rank()
	})
	out.Summary = profitabilityRow("total", total.count, total.revenue, rate)
	return out
}
