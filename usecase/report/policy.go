package report

import (
	"sort"

	"github.com/fastygo/crm-reports/domain"
)

type PolicyTypeRow struct {
	PolicyType   domain.PolicyType `json:"policy_type"`
	Count        int               `json:"count"`
	TotalPremium float64           `json:"total_premium"`
	AvgPremium   float64           `json:"avg_premium"`
	Active       int               `json:"active_count"`
	Cancelled    int               `json:"cancelled_count"`
	Expired      int               `json:"expired_count"`
}

type PremiumTrendRow struct {
	Month        string  `json:"month"`
	Count        int     `json:"policy_count"`
	TotalPremium float64 `json:"total_premium"`
}

// PolicyStats is the policy_performance result.
type PolicyStats struct {
	Distribution []PolicyTypeRow   `json:"policy_distribution"`
	PremiumTrend []PremiumTrendRow `json:"premium_trend"`
}

func (PolicyStats) isResult() {}

func (s PolicyStats) Tables() []domain.Table {
	dist := domain.Table{Name: "policy_distribution", Columns: []string{
		"policy_type", "count", "total_premium", "avg_premium", "active_count", "cancelled_count", "expired_count",
	}}
	for _, r := range s.Distribution {
		dist.Rows = append(dist.Rows, []any{string(r.PolicyType), r.Count, r.TotalPremium, r.AvgPremium, r.Active, r.Cancelled, r.Expired})
	}
	trend := domain.Table{Name: "premium_trend", Columns: []string{"month", "policy_count", "total_premium"}}
	for _, r := range s.PremiumTrend {
		trend.Rows = append(trend.Rows, []any{r.Month, r.Count, r.TotalPremium})
	}
	return []domain.Table{dist, trend}
}

func aggregatePolicyPerformance(pred domain.Predicate, snap *domain.Snapshot, env Env) Result {
	scope := policyScope{dated: true, byType: true}
	if pred.HasCustomerFilter() {
		scope.customers, _ = customerSet(pred, snap, env.Now, false)
	}

	byType := make(map[domain.PolicyType]*PolicyTypeRow)
	byMonth := make(map[string]*PremiumTrendRow)
	for _, p := range scopedPolicies(pred, snap, scope) {
		row, ok := byType[p.Type]
		if !ok {
			row = &PolicyTypeRow{PolicyType: p.Type}
			byType[p.Type] = row
		}
		row.Count++
		row.TotalPremium += p.Premium
		switch p.Status {
		case domain.PolicyActive:
			row.Active++
		case domain.PolicyCancelled:
			row.Cancelled++
		case domain.PolicyExpired:
			row.Expired++
		}

		month := p.CreatedAt.UTC().Format("2006-01")
		m, ok := byMonth[month]
		if !ok {
			m = &PremiumTrendRow{Month: month}
			byMonth[month] = m
		}
		m.Count++
		m.TotalPremium += p.Premium
	}

	out := PolicyStats{
		Distribution: make([]PolicyTypeRow, 0, len(byType)),
		PremiumTrend: make([]PremiumTrendRow, 0, len(byMonth)),
	}
	for _, row := range byType {
		row.AvgPremium = round2(ratio(row.TotalPremium, float64(row.Count)))
		row.TotalPremium = round2(row.TotalPremium)
		out.Distribution = append(out.Distribution, *row)
	}
	sort.Slice(out.Distribution, func(i, j int) bool {
		a, b := out.Distribution[i], out.Distribution[j]
		if a.TotalPremium != b.TotalPremium {
			return a.TotalPremium > b.TotalPremium
		}
		if a.PolicyType.Rank() != b.PolicyType.Rank() {
			return a.PolicyType.Rank() < b.PolicyType.Rank()
		}
		return a.PolicyType < b.PolicyType
	})
	for _, month := range sortedKeys(byMonth) {
		m := byMonth[month]
		m.TotalPremium = round2(m.TotalPremium)
		out.PremiumTrend = append(out.PremiumTrend, *m)
	}
	return out
}
