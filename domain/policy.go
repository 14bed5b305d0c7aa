package domain

import (
	"sort"
	"strings"
	"time"
)

// PolicyType enumerates the insurance product lines.
type PolicyType string

const (
	PolicyTraffic    PolicyType = "traffic"
	PolicyCasco      PolicyType = "casco"
	PolicyHome       PolicyType = "home"
	PolicyEarthquake PolicyType = "earthquake"
	PolicyHealth     PolicyType = "health"
	PolicyOther      PolicyType = "other"
)

// PolicyTypes lists every product line in display order.
var PolicyTypes = []PolicyType{
	PolicyTraffic,
	PolicyCasco,
	PolicyHome,
	PolicyEarthquake,
	PolicyHealth,
	PolicyOther,
}

var policyTypeAliases = map[string]PolicyType{
	"trafik": PolicyTraffic,
	"kasko":  PolicyCasco,
	"konut":  PolicyHome,
	"dask":   PolicyEarthquake,
	"saglik": PolicyHealth,
	"sağlık": PolicyHealth,
	"diger":  PolicyOther,
	"diğer":  PolicyOther,
}

// ParsePolicyType accepts canonical names and the legacy Turkish product codes.
func ParsePolicyType(value string) (PolicyType, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, t := range PolicyTypes {
		if string(t) == v {
			return t, true
		}
	}
	if t, ok := policyTypeAliases[v]; ok {
		return t, true
	}
	return "", false
}

// PolicyTypeOf maps a stored product code to its canonical type. Unknown
// codes are kept verbatim.
func PolicyTypeOf(value string) PolicyType {
	if t, ok := ParsePolicyType(value); ok {
		return t
	}
	return PolicyType(value)
}

// StoredNames lists the codes a store may hold for t: the canonical name
// followed by its legacy aliases.
func (t PolicyType) StoredNames() []string {
	var aliases []string
	for alias, canonical := range policyTypeAliases {
		if canonical == t {
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)
	return append([]string{string(t)}, aliases...)
}

// Rank is the position of the type in PolicyTypes, used for stable ordering.
func (t PolicyType) Rank() int {
	for i, candidate := range PolicyTypes {
		if candidate == t {
			return i
		}
	}
	return len(PolicyTypes)
}

// PolicyStatus is the lifecycle state of a policy.
type PolicyStatus string

const (
	PolicyActive    PolicyStatus = "active"
	PolicyCancelled PolicyStatus = "cancelled"
	PolicyExpired   PolicyStatus = "expired"
)

// PaymentStatus tracks premium collection.
type PaymentStatus string

const (
	PaymentCurrent PaymentStatus = "current"
	PaymentOverdue PaymentStatus = "overdue"
)

// Policy belongs to exactly one customer and one representative.
type Policy struct {
	ID               int64         `json:"id"`
	PolicyNumber     string        `json:"policy_number"`
	CustomerID       int64         `json:"customer_id"`
	RepresentativeID int64         `json:"representative_id"`
	OfferID          *int64        `json:"offer_id,omitempty"`
	Type             PolicyType    `json:"policy_type"`
	Premium          float64       `json:"premium_amount"`
	Status           PolicyStatus  `json:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	StartDate        time.Time     `json:"start_date"`
	EndDate          time.Time     `json:"end_date"`
	CreatedAt        time.Time     `json:"created_at"`
}

func (p *Policy) IsActive() bool {
	return p != nil && p.Status == PolicyActive
}

// IsOverdue reports an active policy whose premium payment is late.
func (p *Policy) IsOverdue() bool {
	return p.IsActive() && p.PaymentStatus == PaymentOverdue
}
