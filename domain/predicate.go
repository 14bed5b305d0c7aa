package domain

import (
	"strings"
	"time"
)

// Risk levels assigned by the churn report.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Age groups used by the demographics report, in display order.
const (
	AgeGroup18To25  = "18-25"
	AgeGroup26To35  = "26-35"
	AgeGroup36To50  = "36-50"
	AgeGroup50Plus  = "50+"
	AgeGroupUnknown = "unknown"
)

// AgeGroups lists the buckets in the order reports emit them.
var AgeGroups = []string{AgeGroup18To25, AgeGroup26To35, AgeGroup36To50, AgeGroup50Plus, AgeGroupUnknown}

// AgeGroupOf buckets a customer by age. Ages under 18 and unknown birth
// dates land in the unknown bucket.
func AgeGroupOf(c *Customer, now time.Time) string {
	age, ok := c.Age(now)
	switch {
	case !ok:
		return AgeGroupUnknown
	case age >= 18 && age <= 25:
		return AgeGroup18To25
	case age >= 26 && age <= 35:
		return AgeGroup26To35
	case age >= 36 && age <= 50:
		return AgeGroup36To50
	case age > 50:
		return AgeGroup50Plus
	default:
		return AgeGroupUnknown
	}
}

// DateRange is an inclusive calendar-date interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains compares the UTC calendar date of t against the range.
func (r DateRange) Contains(t time.Time) bool {
	t = t.UTC()
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(r.Start) && !d.After(r.End)
}

// EndExclusive is the first instant after the range, for half-open store queries.
func (r DateRange) EndExclusive() time.Time {
	return r.End.AddDate(0, 0, 1)
}

// Predicate is the canonical, validated form of a report filter set.
// The zero value restricts nothing.
type Predicate struct {
	Range           *DateRange
	PolicyType      PolicyType
	MinPremium      *int64
	MinDurationDays *int64
	City            string
	RiskLevel       string
	MaritalStatus   string
	AgeGroup        string

	raw map[string]string
}

// NewPredicate attaches the canonical filter echo to p.
func NewPredicate(p Predicate, raw map[string]string) Predicate {
	p.raw = raw
	return p
}

// Raw returns a copy of the canonical filters that produced the predicate.
func (p Predicate) Raw() map[string]string {
	out := make(map[string]string, len(p.raw))
	for k, v := range p.raw {
		out[k] = v
	}
	return out
}

// InRange reports whether t satisfies the date range. Without a range every
// timestamp matches.
func (p Predicate) InRange(t time.Time) bool {
	if p.Range == nil {
		return true
	}
	return p.Range.Contains(t)
}

func (p Predicate) MatchesPolicyType(t PolicyType) bool {
	return p.PolicyType == "" || p.PolicyType == PolicyTypeOf(string(t))
}

// HasCustomerFilter reports whether any customer attribute filter is set.
func (p Predicate) HasCustomerFilter() bool {
	return p.City != "" || p.MaritalStatus != "" || p.AgeGroup != ""
}

// MatchesCustomer applies the customer attribute filters. A nil customer only
// matches when no customer filter is set.
func (p Predicate) MatchesCustomer(c *Customer, now time.Time) bool {
	if !p.HasCustomerFilter() {
		return true
	}
	if c == nil {
		return false
	}
	if p.City != "" && !strings.EqualFold(strings.TrimSpace(c.City), p.City) {
		return false
	}
	if p.MaritalStatus != "" && NormalizeMaritalStatus(c.MaritalStatus) != p.MaritalStatus {
		return false
	}
	if p.AgeGroup != "" && AgeGroupOf(c, now) != p.AgeGroup {
		return false
	}
	return true
}

// MatchesRisk applies the risk_level filter to an assigned level.
func (p Predicate) MatchesRisk(level string) bool {
	return p.RiskLevel == "" || p.RiskLevel == level
}
