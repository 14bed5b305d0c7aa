package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/crm-reports/domain"
)

// RepresentativeStore is an in-process RepresentativeRepository.
type RepresentativeStore struct {
	mu     sync.Mutex
	nextID int64
	byUser map[int64]domain.Representative
}

func NewRepresentativeStore(reps ...domain.Representative) *RepresentativeStore {
	s := &RepresentativeStore{byUser: make(map[int64]domain.Representative)}
	for _, r := range reps {
		s.byUser[r.UserID] = r
		if r.ID > s.nextID {
			s.nextID = r.ID
		}
	}
	return s
}

func (s *RepresentativeStore) GetByUserID(_ context.Context, userID int64) (*domain.Representative, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.byUser[userID]
	if !ok {
		return nil, domain.ErrRepresentativeNotFound
	}
	return &rep, nil
}

func (s *RepresentativeStore) Create(_ context.Context, rep *domain.Representative) error {
	if rep == nil {
		return domain.ErrInvalidPayload
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rep.ID = s.nextID
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}
	s.byUser[rep.UserID] = *rep
	return nil
}
