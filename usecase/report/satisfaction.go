package report

import (
	"sort"

	"github.com/fastygo/crm-reports/domain"
)

type SatisfactionRow struct {
	CustomerID     int64   `json:"customer_id"`
	Name           string  `json:"customer_name"`
	Policies       int     `json:"total_policies"`
	ActivePolicies int     `json:"active_policies"`
	RetentionRate  float64 `json:"retention_rate"`
	Level          string  `json:"satisfaction_level"`
}

type SatisfactionLevelRow struct {
	Level     string  `json:"satisfaction_level"`
	Customers int     `json:"customer_count"`
	Share     float64 `json:"share"`
}

// Satisfaction is the customer_satisfaction result. Retention stands in for
// satisfaction; no survey data is involved.
type Satisfaction struct {
	Customers []SatisfactionRow      `json:"customers"`
	Levels    []SatisfactionLevelRow `json:"levels"`
}

func (Satisfaction) isResult() {}

func (s Satisfaction) Tables() []domain.Table {
	customers := domain.Table{Name: "customer_satisfaction", Columns: []string{
		"customer_id", "customer_name", "total_policies", "active_policies", "retention_rate", "satisfaction_level",
	}}
	for _, r := range s.Customers {
		customers.Rows = append(customers.Rows, []any{r.CustomerID, r.Name, r.Policies, r.ActivePolicies, r.RetentionRate, r.Level})
	}
	levels := domain.Table{Name: "satisfaction_levels", Columns: []string{"satisfaction_level", "customer_count", "share"}}
	for _, r := range s.Levels {
		levels.Rows = append(levels.Rows, []any{r.Level, r.Customers, r.Share})
	}
	return []domain.Table{customers, levels}
}

func aggregateSatisfaction(pred domain.Predicate, snap *domain.Snapshot, env Env) Result {
	customers, ordered := customerSet(pred, snap, env.Now, false)
	byCustomer := groupByCustomer(scopedPolicies(pred, snap, policyScope{byType: true, customers: customers}))

	rows := make([]SatisfactionRow, 0)
	counts := make(map[string]int, len(satisfactionLevels))
	for _, c := range ordered {
		policies := byCustomer[c.ID]
		if len(policies) == 0 {
			continue
		}
		active := 0
		for _, p := range policies {
			if p.IsActive() {
				active++
			}
		}
		rate := percent(float64(active), float64(len(policies)))
		level := env.Rules.SatisfactionLevel(rate)
		counts[level]++
		rows = append(rows, SatisfactionRow{
			CustomerID:     c.ID,
			Name:           c.FullName(),
			Policies:       len(policies),
			ActivePolicies: active,
			RetentionRate:  rate,
			Level:          level,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].RetentionRate != rows[j].RetentionRate {
			return rows[i].RetentionRate > rows[j].RetentionRate
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})

	levels := make([]SatisfactionLevelRow, 0, len(satisfactionLevels))
	for _, level := range satisfactionLevels {
		levels = append(levels, SatisfactionLevelRow{
			Level:     level,
			Customers: counts[level],
			Share:     percent(float64(counts[level]), float64(len(rows))),
		})
	}
	return Satisfaction{Customers: rows, Levels: levels}
}
