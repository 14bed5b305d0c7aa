package report

import (
	"sort"
	"strings"

	"github.com/fastygo/crm-reports/domain"
)

type CityMarketRow struct {
	City         string  `json:"city"`
	Customers    int     `json:"customer_count"`
	Policies     int     `json:"policy_count"`
	Penetration  float64 `json:"penetration_rate"`
	TotalPremium float64 `json:"total_premium"`
}

type TypeShareRow struct {
	PolicyType   domain.PolicyType `json:"policy_type"`
	Policies     int               `json:"policy_count"`
	TotalPremium float64           `json:"total_premium"`
	Share        float64           `json:"market_share"`
}

// Market is the market_analysis result.
type Market struct {
	Cities []CityMarketRow `json:"market_penetration"`
	Shares []TypeShareRow  `json:"policy_type_share"`
}

func (Market) isResult() {}

func (m Market) Tables() []domain.Table {
	cities := domain.Table{Name: "market_penetration", Columns: []string{
		"city", "customer_count", "policy_count", "penetration_rate", "total_premium",
	}}
	for _, r := range m.Cities {
		cities.Rows = append(cities.Rows, []any{r.City, r.Customers, r.Policies, r.Penetration, r.TotalPremium})
	}
	shares := domain.Table{Name: "policy_type_share", Columns: []string{"policy_type", "policy_count", "total_premium", "market_share"}}
	for _, r := range m.Shares {
		shares.Rows = append(shares.Rows, []any{string(r.PolicyType), r.Policies, r.TotalPremium, r.Share})
	}
	return []domain.Table{cities, shares}
}

// aggregateMarket reports penetration (policies per customer) for cities with
// enough distinct customers, and each policy type's share of premium.
func aggregateMarket(pred domain.Predicate, snap *domain.Snapshot, env Env) Result {
	customers, ordered := customerSet(pred, snap, env.Now, false)
	policies := scopedPolicies(pred, snap, policyScope{byType: true, customers: customers})
	byCustomer := groupByCustomer(policies)

	type acc struct {
		display   string
		customers int
		policies  int
		premium   float64
	}
	cities := make(map[string]*acc)
	for _, c := range ordered {
		name := strings.TrimSpace(c.City)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		a, ok := cities[key]
		if !ok {
			a = &acc{display: name}
			cities[key] = a
		}
		a.customers++
		for _, p := range byCustomer[c.ID] {
			a.policies++
			a.premium += p.Premium
		}
	}

	out := Market{Cities: make([]CityMarketRow, 0), Shares: make([]TypeShareRow, 0)}
	for _, a := range cities {
		if a.customers < env.Rules.MarketMinCustomers {
			continue
		}
		out.Cities = append(out.Cities, CityMarketRow{
			City:         a.display,
			Customers:    a.customers,
			Policies:     a.policies,
			Penetration:  round2(ratio(float64(a.policies), float64(a.customers))),
			TotalPremium: round2(a.premium),
		})
	}
	sort.Slice(out.Cities, func(i, j int) bool {
		a, b := out.Cities[i], out.Cities[j]
		if a.Penetration != b.Penetration {
			return a.Penetration > b.Penetration
		}
		if a.Customers != b.Customers {
			return a.Customers > b.Customers
		}
		return a.City < b.City
	})

	byType := make(map[domain.PolicyType]*TypeShareRow)
	var grand float64
	for _, p := range policies {
		row, ok := byType[p.Type]
		if !ok {
			row = &TypeShareRow{PolicyType: p.Type}
			byType[p.Type] = row
		}
		row.Policies++
		row.TotalPremium += p.Premium
		grand += p.Premium
	}
	for _, row := range byType {
		row.Share = percent(row.TotalPremium, grand)
		row.TotalPremium = round2(row.TotalPremium)
		out.Shares = append(out.Shares, *row)
	}
	sort.Slice(out.Shares, func(i, j int) bool {
		a, b := out.Shares[i], out.Shares[j]
		if a.TotalPremium != b.TotalPremium {
			return a.TotalPremium > b.TotalPremium
		}
		return a.PolicyType.Rank() < b.PolicyType.Rank()
	})
	return out
}
