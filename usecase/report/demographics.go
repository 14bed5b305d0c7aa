package report

import (
	"sort"

	"github.com/fastygo/crm-reports/domain"
)

type AgeGroupRow struct {
	AgeGroup   string  `json:"age_group"`
	Customers  int     `json:"customer_count"`
	Policies   int     `json:"policy_count"`
	AvgPremium float64 `json:"avg_premium"`
}

type GenderRow struct {
	Gender       string  `json:"gender"`
	Customers    int     `json:"customer_count"`
	Policies     int     `json:"policy_count"`
	TotalPremium float64 `json:"total_premium"`
}

type MaritalRow struct {
	MaritalStatus string  `json:"marital_status"`
	Customers     int     `json:"customer_count"`
	AvgPremium    float64 `json:"avg_premium"`
}

// Demographics is the customer_demographics result.
type Demographics struct {
	AgeGroups       []AgeGroupRow `json:"age_groups"`
	Genders         []GenderRow   `json:"gender_distribution"`
	MaritalStatuses []MaritalRow  `json:"marital_status"`
}

func (Demographics) isResult() {}

func (d Demographics) Tables() []domain.Table {
	ages := domain.Table{Name: "age_groups", Columns: []string{"age_group", "customer_count", "policy_count", "avg_premium"}}
	for _, r := range d.AgeGroups {
		ages.Rows = append(ages.Rows, []any{r.AgeGroup, r.Customers, r.Policies, r.AvgPremium})
	}
	genders := domain.Table{Name: "gender_distribution", Columns: []string{"gender", "customer_count", "policy_count", "total_premium"}}
	for _, r := range d.Genders {
		genders.Rows = append(genders.Rows, []any{r.Gender, r.Customers, r.Policies, r.TotalPremium})
	}
	marital := domain.Table{Name: "marital_status", Columns: []string{"marital_status", "customer_count", "avg_premium"}}
	for _, r := range d.MaritalStatuses {
		marital.Rows = append(marital.Rows, []any{r.MaritalStatus, r.Customers, r.AvgPremium})
	}
	return []domain.Table{ages, genders, marital}
}

// joinBucket accumulates customer x policy left-join rows. A customer without
// policies contributes one row with premium 0.
type joinBucket struct {
	customers int
	policies  int
	rows      int
	premium   float64
}

func (b *joinBucket) add(policies []*domain.Policy) {
	b.customers++
	if len(policies) == 0 {
		b.rows++
		return
	}
	for _, p := range policies {
		b.policies++
		b.rows++
		b.premium += p.Premium
	}
}

func aggregateDemographics(pred domain.Predicate, snap *domain.Snapshot, env Env) Result {
	customers, ordered := customerSet(pred, snap, env.Now, true)
	byCustomer := groupByCustomer(scopedPolicies(pred, snap, policyScope{byType: true, customers: customers}))

	ages := make(map[string]*joinBucket)
	genders := make(map[string]*joinBucket)
	marital := make(map[string]*joinBucket)
	bucket := func(m map[string]*joinBucket, key string) *joinBucket {
		b, ok := m[key]
		if !ok {
			b = &joinBucket{}
			m[key] = b
		}
		return b
	}

	for _, c := range ordered {
		policies := byCustomer[c.ID]
		bucket(ages, domain.AgeGroupOf(c, env.Now)).add(policies)
		bucket(genders, orUnknown(c.Gender)).add(policies)
		bucket(marital, orUnknown(domain.NormalizeMaritalStatus(c.MaritalStatus))).add(policies)
	}

	var out Demographics
	for _, group := range domain.AgeGroups {
		b, ok := ages[group]
		if !ok {
			continue
		}
		out.AgeGroups = append(out.AgeGroups, AgeGroupRow{
			AgeGroup:   group,
			Customers:  b.customers,
			Policies:   b.policies,
			AvgPremium: round2(ratio(b.premium, float64(b.rows))),
		})
	}
	for _, key := range sortedKeys(genders) {
		b := genders[key]
		out.Genders = append(out.Genders, GenderRow{
			Gender:       key,
			Customers:    b.customers,
			Policies:     b.policies,
			TotalPremium: round2(b.premium),
		})
	}
	for _, key := range sortedKeys(marital) {
		b := marital[key]
		out.MaritalStatuses = append(out.MaritalStatuses, MaritalRow{
			MaritalStatus: key,
			Customers:     b.customers,
			AvgPremium:    round2(ratio(b.premium, float64(b.rows))),
		})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
