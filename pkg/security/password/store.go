package password

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store interface
// NOTE: ownerID is the ID of the account that owns a given password
type Store interface {
	Upsert(ctx context.Context, p Password) error
	Get(ctx context.Context, ownerID uuid.UUID) (Password, error)
	Delete(ctx context.Context, ownerID uuid.UUID) error
}

type memoryStore struct {
	passwords map[uuid.UUID]Password
	sync.RWMutex
}

// NewMemoryStore returns an in-memory password store
func NewMemoryStore() Store {
	return &memoryStore{passwords: make(map[uuid.UUID]Password)}
}

func (s *memoryStore) Upsert(ctx context.Context, p Password) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.Lock()
	if existing, ok := s.passwords[p.OwnerID]; ok {
		p.CreatedAt = existing.CreatedAt
	}

	s.passwords[p.OwnerID] = p
	s.Unlock()

	return nil
}

func (s *memoryStore) Get(ctx context.Context, ownerID uuid.UUID) (Password, error) {
	s.RLock()
	p, ok := s.passwords[ownerID]
	s.RUnlock()

	if !ok {
		return p, ErrPasswordNotFound
	}

	return p, nil
}

func (s *memoryStore) Delete(ctx context.Context, ownerID uuid.UUID) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.passwords[ownerID]; !ok {
		return ErrPasswordNotFound
	}

	delete(s.passwords, ownerID)

	return nil
}
