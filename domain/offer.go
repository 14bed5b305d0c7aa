package domain

import "time"

// Offer is a quote that may later be converted into a policy. A conversion
// is recorded on the policy side through Policy.OfferID.
type Offer struct {
	ID         int64      `json:"id"`
	CustomerID int64      `json:"customer_id"`
	Type       PolicyType `json:"policy_type"`
	Premium    float64    `json:"premium_amount"`
	CreatedAt  time.Time  `json:"created_at"`
}
