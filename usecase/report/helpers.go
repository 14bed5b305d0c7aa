package report

import (
	"math"
	"strings"
	"time"

	"github.com/fastygo/crm-reports/domain"
)

// Env carries the per-run inputs an aggregation needs besides data.
type Env struct {
	Now   time.Time
	Rules Rules
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ratio divides and yields 0 for a zero denominator.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// percent is ratio scaled to 0..100 and rounded to two decimals.
func percent(num, den float64) float64 {
	return round2(ratio(num, den) * 100)
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}

// customerSet applies the customer attribute filters and, when dated is set,
// the date range on creation time.
func customerSet(pred domain.Predicate, snap *domain.Snapshot, now time.Time, dated bool) (map[int64]*domain.Customer, []*domain.Customer) {
	index := make(map[int64]*domain.Customer, len(snap.Customers))
	ordered := make([]*domain.Customer, 0, len(snap.Customers))
	for i := range snap.Customers {
		c := &snap.Customers[i]
		if dated && !pred.InRange(c.CreatedAt) {
			continue
		}
		if !pred.MatchesCustomer(c, now) {
			continue
		}
		index[c.ID] = c
		ordered = append(ordered, c)
	}
	return index, ordered
}

type policyScope struct {
	dated      bool
	byType     bool
	activeOnly bool
	// customers, when non-nil, restricts policies to the listed owners.
	customers map[int64]*domain.Customer
}

func scopedPolicies(pred domain.Predicate, snap *domain.Snapshot, scope policyScope) []*domain.Policy {
	out := make([]*domain.Policy, 0, len(snap.Policies))
	for i := range snap.Policies {
		p := &snap.Policies[i]
		if scope.dated && !pred.InRange(p.CreatedAt) {
			continue
		}
		if scope.byType && !pred.MatchesPolicyType(p.Type) {
			continue
		}
		if scope.activeOnly && !p.IsActive() {
			continue
		}
		if scope.customers != nil {
			if _, ok := scope.customers[p.CustomerID]; !ok {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func groupByCustomer(policies []*domain.Policy) map[int64][]*domain.Policy {
	grouped := make(map[int64][]*domain.Policy)
	for _, p := range policies {
		grouped[p.CustomerID] = append(grouped[p.CustomerID], p)
	}
	return grouped
}

func activeRepresentatives(snap *domain.Snapshot) []*domain.Representative {
	out := make([]*domain.Representative, 0, len(snap.Representatives))
	for i := range snap.Representatives {
		if r := &snap.Representatives[i]; r.IsActive() {
			out = append(out, r)
		}
	}
	return out
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
