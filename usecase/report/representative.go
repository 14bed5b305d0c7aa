package report

import (
	"sort"

	"github.com/fastygo/crm-reports/domain"
)

type RepresentativeRow struct {
	RepresentativeID int64   `json:"representative_id"`
	Name             string  `json:"rep_name"`
	RoleLevel        int     `json:"role_level"`
	Department       string  `json:"department,omitempty"`
	Policies         int     `json:"policy_count"`
	TotalPremium     float64 `json:"total_premium"`
	AvgPremium       float64 `json:"avg_premium"`
	ActivePolicies   int     `json:"active_policies"`
	Customers        int     `json:"unique_customers"`
}

// RepresentativeStats is the representative_performance result.
type RepresentativeStats struct {
	Representatives []RepresentativeRow `json:"representatives"`
}

func (RepresentativeStats) isResult() {}

func (s RepresentativeStats) Tables() []domain.Table {
	t := domain.Table{Name: "representative_performance", Columns: []string{
		"representative_id", "rep_name", "policy_count", "total_premium", "avg_premium", "active_policies", "unique_customers",
	}}
	for _, r := range s.Representatives {
		t.Rows = append(t.Rows, []any{r.RepresentativeID, r.Name, r.Policies, r.TotalPremium, r.AvgPremium, r.ActivePolicies, r.Customers})
	}
	return []domain.Table{t}
}

// aggregateRepresentativePerformance emits one row per active representative.
// The date range restricts the joined policies, never the representatives.
func aggregateRepresentativePerformance(pred domain.Predicate, snap *domain.Snapshot, env Env) Result {
	scope := policyScope{dated: true, byType: true}
	if pred.HasCustomerFilter() {
		scope.customers, _ = customerSet(pred, snap, env.Now, false)
	}

	byRep := make(map[int64][]*domain.Policy)
	for _, p := range scopedPolicies(pred, snap, scope) {
		byRep[p.RepresentativeID] = append(byRep[p.RepresentativeID], p)
	}

	reps := activeRepresentatives(snap)
	rows := make([]RepresentativeRow, 0, len(reps))
	for _, r := range reps {
		row := RepresentativeRow{
			RepresentativeID: r.ID,
			Name:             r.Label(),
			RoleLevel:        r.RoleLevel,
			Department:       r.Department,
		}
		customers := make(map[int64]struct{})
		for _, p := range byRep[r.ID] {
			row.Policies++
			row.TotalPremium += p.Premium
			if p.IsActive() {
				row.ActivePolicies++
			}
			customers[p.CustomerID] = struct{}{}
		}
		row.Customers = len(customers)
		row.AvgPremium = round2(ratio(row.TotalPremium, float64(row.Policies)))
		row.TotalPremium = round2(row.TotalPremium)
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalPremium != rows[j].TotalPremium {
			return rows[i].TotalPremium > rows[j].TotalPremium
		}
		return rows[i].RepresentativeID < rows[j].RepresentativeID
	})
	return RepresentativeStats{Representatives: rows}
}
