package device

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store represents a registration storage backend contract,
// an account owns at most one registration
type Store interface {
	// UpsertRegistration creates or replaces the registration of an account
	// as one atomic step, keeping its original creation time
	UpsertRegistration(ctx context.Context, r Registration) (Registration, error)
	FetchRegistration(ctx context.Context, accountID uuid.UUID) (Registration, error)
	FetchActiveRegistrations(ctx context.Context, p Provider) ([]Registration, error)
	DeleteRegistration(ctx context.Context, accountID uuid.UUID) error
}

type memoryStore struct {
	registrations map[uuid.UUID]Registration
	sync.RWMutex
}

// NewMemoryStore returns an in-memory registration store
func NewMemoryStore() Store {
	return &memoryStore{registrations: make(map[uuid.UUID]Registration)}
}

func (s *memoryStore) UpsertRegistration(ctx context.Context, r Registration) (Registration, error) {
	if err := r.Validate(); err != nil {
		return r, err
	}

	s.Lock()
	defer s.Unlock()

	if existing, ok := s.registrations[r.AccountID]; ok {
		r.CreatedAt = existing.CreatedAt
	}

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	s.registrations[r.AccountID] = r

	return r, nil
}

func (s *memoryStore) FetchRegistration(ctx context.Context, accountID uuid.UUID) (Registration, error) {
	s.RLock()
	r, ok := s.registrations[accountID]
	s.RUnlock()

	if !ok {
		return r, ErrRegistrationNotFound
	}

	return r, nil
}

func (s *memoryStore) FetchActiveRegistrations(ctx context.Context, p Provider) ([]Registration, error) {
	rs := make([]Registration, 0)

	s.RLock()
	for _, r := range s.registrations {
		if r.Active && r.Provider == p {
			rs = append(rs, r)
		}
	}
	s.RUnlock()

	// same order as the database store
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].CreatedAt.Before(rs[j].CreatedAt)
	})

	return rs, nil
}

func (s *memoryStore) DeleteRegistration(ctx context.Context, accountID uuid.UUID) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.registrations[accountID]; !ok {
		return ErrRegistrationNotFound
	}

	delete(s.registrations, accountID)

	return nil
}
