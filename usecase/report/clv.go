package report

import (
	"sort"

	"github.com/fastygo/crm-reports/domain"
)

const daysPerYear = 365.25

type LifetimeValueRow struct {
	CustomerID   int64   `json:"customer_id"`
	Name         string  `json:"customer_name"`
	City         string  `json:"city,omitempty"`
	Policies     int     `json:"policy_count"`
	TotalPremium float64 `json:"total_premium"`
	TenureDays   int     `json:"tenure_days"`
	AnnualValue  float64 `json:"annual_value"`
	EstimatedCLV float64 `json:"estimated_clv"`
	Segment      string  `json:"segment"`
}

// LifetimeValue is the customer_lifetime_value result.
type LifetimeValue struct {
	Customers []LifetimeValueRow `json:"customers"`
}

func (LifetimeValue) isResult() {}

func (l LifetimeValue) Tables() []domain.Table {
	t := domain.Table{Name: "customer_lifetime_value", Columns: []string{
		"customer_id", "customer_name", "policy_count", "total_premium", "tenure_days", "annual_value", "estimated_clv", "segment",
	}}
	for _, r := range l.Customers {
		t.Rows = append(t.Rows, []any{r.CustomerID, r.Name, r.Policies, r.TotalPremium, r.TenureDays, r.AnnualValue, r.EstimatedCLV, r.Segment})
	}
	return []domain.Table{t}
}

// aggregateCLV estimates lifetime value as historical premium times a fixed
// multiplier. Customers without policies are left out.
func aggregateCLV(pred domain.Predicate, snap *domain.Snapshot, env Env) Result {
	rules := env.Rules
	customers, ordered := customerSet(pred, snap, env.Now, false)
	byCustomer := groupByCustomer(scopedPolicies(pred, snap, policyScope{byType: true, customers: customers}))

	rows := make([]LifetimeValueRow, 0)
	for _, c := range ordered {
		policies := byCustomer[c.ID]
		if len(policies) == 0 {
			continue
		}
		var total float64
		for _, p := range policies {
			total += p.Premium
		}
		if pred.MinPremium != nil && total < float64(*pred.MinPremium) {
			continue
		}
		tenure := c.TenureDays(env.Now)
		rows = append(rows, LifetimeValueRow{
			CustomerID:   c.ID,
			Name:         c.FullName(),
			City:         c.City,
			Policies:     len(policies),
			TotalPremium: round2(total),
			TenureDays:   tenure,
			AnnualValue:  round2(ratio(total, float64(tenure)/daysPerYear)),
			EstimatedCLV: round2(total * rules.CLVMultiplier),
			Segment:      rules.CLVSegment(total),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].EstimatedCLV != rows[j].EstimatedCLV {
			return rows[i].EstimatedCLV > rows[j].EstimatedCLV
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})
	rows = rows[:limit(len(rows), rules.CLVLimit)]
	return LifetimeValue{Customers: rows}
}
