package report

import (
	"sort"

	"github.com/fastygo/crm-reports/domain"
)

type GeoRow struct {
	City         string  `json:"city"`
	District     string  `json:"district"`
	Customers    int     `json:"customer_count"`
	Policies     int     `json:"policy_count"`
	TotalPremium float64 `json:"total_premium"`
	AvgPremium   float64 `json:"avg_premium"`
}

// Geography is the geographic_distribution result.
type Geography struct {
	Regions []GeoRow `json:"regions"`
}

func (Geography) isResult() {}

func (g Geography) Tables() []domain.Table {
	t := domain.Table{Name: "geographic_distribution", Columns: []string{
		"city", "district", "customer_count", "policy_count", "total_premium", "avg_premium",
	}}
	for _, r := range g.Regions {
		t.Rows = append(t.Rows, []any{r.City, r.District, r.Customers, r.Policies, r.TotalPremium, r.AvgPremium})
	}
	return []domain.Table{t}
}

func aggregateGeographic(pred domain.Predicate, snap *domain.Snapshot, env Env) Result {
	customers, ordered := customerSet(pred, snap, env.Now, true)
	byCustomer := groupByCustomer(scopedPolicies(pred, snap, policyScope{byType: true, customers: customers}))

	type key struct{ city, district string }
	regions := make(map[key]*GeoRow)
	for _, c := range ordered {
		k := key{orUnknown(c.City), orUnknown(c.District)}
		row, ok := regions[k]
		if !ok {
			row = &GeoRow{City: k.city, District: k.district}
			regions[k] = row
		}
		row.Customers++
		for _, p := range byCustomer[c.ID] {
			row.Policies++
			row.TotalPremium += p.Premium
		}
	}

	rows := make([]GeoRow, 0, len(regions))
	for _, row := range regions {
		row.AvgPremium = round2(ratio(row.TotalPremium, float64(row.Policies)))
		row.TotalPremium = round2(row.TotalPremium)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TotalPremium != b.TotalPremium {
			return a.TotalPremium > b.TotalPremium
		}
		if a.City != b.City {
			return a.City < b.City
		}
		return a.District < b.District
	})
	rows = rows[:limit(len(rows), env.Rules.GeoLimit)]
	return Geography{Regions: rows}
}
