package domain

import "time"

// Snapshot is a consistent read of the CRM tables taken for one report run.
// Slices are owned by the caller and must not be mutated by aggregations.
type Snapshot struct {
	Customers       []Customer
	Policies        []Policy
	Representatives []Representative
	Offers          []Offer
	Tasks           []Task
	TakenAt         time.Time
}

// CustomerIndex maps customer ids onto their position in Customers.
func (s *Snapshot) CustomerIndex() map[int64]*Customer {
	index := make(map[int64]*Customer, len(s.Customers))
	for i := range s.Customers {
		index[s.Customers[i].ID] = &s.Customers[i]
	}
	return index
}

// PoliciesByCustomer groups policies by their owning customer.
func (s *Snapshot) PoliciesByCustomer() map[int64][]*Policy {
	grouped := make(map[int64][]*Policy)
	for i := range s.Policies {
		p := &s.Policies[i]
		grouped[p.CustomerID] = append(grouped[p.CustomerID], p)
	}
	return grouped
}
