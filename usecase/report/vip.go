package report

import (
	"sort"

	"github.com/fastygo/crm-reports/domain"
)

type VIPCustomer struct {
	CustomerID    int64   `json:"customer_id"`
	Name          string  `json:"customer_name"`
	Phone         string  `json:"phone,omitempty"`
	Email         string  `json:"email,omitempty"`
	MaritalStatus string  `json:"marital_status"`
	Policies      int     `json:"policy_count"`
	TotalPremium  float64 `json:"total_premium"`
	TenureDays    int     `json:"tenure_days"`
	RenewalRate   float64 `json:"renewal_rate"`
}

// VIPList is the vip_customers result.
type VIPList struct {
	Customers []VIPCustomer `json:"customers"`
}

func (VIPList) isResult() {}

func (v VIPList) Tables() []domain.Table {
	t := domain.Table{Name: "vip_customers", Columns: []string{
		"customer_id", "customer_name", "phone", "email", "policy_count", "total_premium", "tenure_days", "renewal_rate",
	}}
	for _, c := range v.Customers {
		t.Rows = append(t.Rows, []any{c.CustomerID, c.Name, c.Phone, c.Email, c.Policies, c.TotalPremium, c.TenureDays, c.RenewalRate})
	}
	return []domain.Table{t}
}

// aggregateVIP keeps married customers above the premium and tenure
// thresholds. Renewal rate is the share of the customer's policies that are
// active.
func aggregateVIP(pred domain.Predicate, snap *domain.Snapshot, env Env) Result {
	rules := env.Rules
	vipStatus := domain.NormalizeMaritalStatus(rules.VIPMaritalStatus)

	customers, ordered := customerSet(pred, snap, env.Now, false)
	byCustomer := groupByCustomer(scopedPolicies(pred, snap, policyScope{customers: customers}))

	rows := make([]VIPCustomer, 0)
	for _, c := range ordered {
		status := domain.NormalizeMaritalStatus(c.MaritalStatus)
		if status != vipStatus {
			continue
		}
		policies := byCustomer[c.ID]
		var total float64
		active := 0
		for _, p := range policies {
			total += p.Premium
			if p.IsActive() {
				active++
			}
		}
		tenure := c.TenureDays(env.Now)

		if total <= rules.VIPMinPremium || tenure <= rules.VIPMinTenureDays {
			continue
		}
		if pred.MinPremium != nil && total < float64(*pred.MinPremium) {
			continue
		}
		if pred.MinDurationDays != nil && int64(tenure) < *pred.MinDurationDays {
			continue
		}

		rows = append(rows, VIPCustomer{
			CustomerID:    c.ID,
			Name:          c.FullName(),
			Phone:         c.Phone,
			Email:         c.Email,
			MaritalStatus: status,
			Policies:      len(policies),
			TotalPremium:  round2(total),
			TenureDays:    tenure,
			RenewalRate:   percent(float64(active), float64(len(policies))),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TotalPremium != b.TotalPremium {
			return a.TotalPremium > b.TotalPremium
		}
		if a.RenewalRate != b.RenewalRate {
			return a.RenewalRate > b.RenewalRate
		}
		return a.CustomerID < b.CustomerID
	})
	rows = rows[:limit(len(rows), rules.VIPLimit)]
	return VIPList{Customers: rows}
}
