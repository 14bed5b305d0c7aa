// Package memory holds an in-process SnapshotReader used by tests and demos.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fastygo/crm-reports/domain"
	"github.com/fastygo/crm-reports/repository"
)

// Store serves snapshots from data held in memory. It applies the same
// pushed-down filters as the SQL adapters.
type Store struct {
	mu   sync.RWMutex
	data domain.Snapshot
	err  error
	now  func() time.Time
}

// NewStore copies data into a new Store.
func NewStore(data domain.Snapshot) *Store {
	s := &Store{now: time.Now}
	s.Replace(data)
	return s
}

// Replace swaps the stored tables.
func (s *Store) Replace(data domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = domain.Snapshot{
		Customers:       append([]domain.Customer(nil), data.Customers...),
		Policies:        append([]domain.Policy(nil), data.Policies...),
		Representatives: append([]domain.Representative(nil), data.Representatives...),
		Offers:          append([]domain.Offer(nil), data.Offers...),
		Tasks:           append([]domain.Task(nil), data.Tasks...),
	}
}

// FailWith makes every subsequent Load return err. Pass nil to clear.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Store) Load(ctx context.Context, query repository.SnapshotQuery) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}

	out := &domain.Snapshot{TakenAt: s.now().UTC()}
	if f := query.Customers; f != nil {
		for _, c := range s.data.Customers {
			if inRange(f.Created, c.CreatedAt) && cityMatches(f.City, c.City) {
				out.Customers = append(out.Customers, c)
			}
		}
	}
	if f := query.Policies; f != nil {
		cities := make(map[int64]string, len(s.data.Customers))
		for _, c := range s.data.Customers {
			cities[c.ID] = c.City
		}
		for _, p := range s.data.Policies {
			p.Type = domain.PolicyTypeOf(string(p.Type))
			if !inRange(f.Created, p.CreatedAt) {
				continue
			}
			if f.Type != "" && p.Type != f.Type {
				continue
			}
			if len(f.Statuses) > 0 && !hasStatus(f.Statuses, p.Status) {
				continue
			}
			if f.CustomerCity != "" && !cityMatches(f.CustomerCity, cities[p.CustomerID]) {
				continue
			}
			out.Policies = append(out.Policies, p)
		}
	}
	if f := query.Representatives; f != nil {
		for _, r := range s.data.Representatives {
			if !f.ActiveOnly || r.IsActive() {
				out.Representatives = append(out.Representatives, r)
			}
		}
	}
	if f := query.Offers; f != nil {
		for _, o := range s.data.Offers {
			o.Type = domain.PolicyTypeOf(string(o.Type))
			if inRange(f.Created, o.CreatedAt) && (f.Type == "" || o.Type == f.Type) {
				out.Offers = append(out.Offers, o)
			}
		}
	}
	if f := query.Tasks; f != nil {
		for _, t := range s.data.Tasks {
			if inRange(f.Created, t.CreatedAt) {
				out.Tasks = append(out.Tasks, t)
			}
		}
	}
	return out, nil
}

func inRange(r *domain.DateRange, t time.Time) bool {
	return r == nil || r.Contains(t)
}

func cityMatches(filter, city string) bool {
	return filter == "" || strings.EqualFold(strings.TrimSpace(city), strings.TrimSpace(filter))
}

func hasStatus(statuses []domain.PolicyStatus, status domain.PolicyStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
