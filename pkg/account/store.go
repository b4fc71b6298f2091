package account

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store represents an account storage backend contract
type Store interface {
	CreateAccount(ctx context.Context, a Account) (Account, error)
	FetchAccountByID(ctx context.Context, id uuid.UUID) (Account, error)
	FetchAccountByUsername(ctx context.Context, username string) (Account, error)
	DeleteAccountByID(ctx context.Context, id uuid.UUID) error
}

type memoryStore struct {
	accounts  map[uuid.UUID]Account
	usernames map[string]uuid.UUID
	sync.RWMutex
}

// NewMemoryStore returns an in-memory account store
func NewMemoryStore() Store {
	return &memoryStore{
		accounts:  make(map[uuid.UUID]Account),
		usernames: make(map[string]uuid.UUID),
	}
}

func (s *memoryStore) CreateAccount(ctx context.Context, a Account) (Account, error) {
	if err := a.Validate(); err != nil {
		return a, err
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.usernames[a.Username]; ok {
		return a, ErrUsernameTaken
	}

	s.accounts[a.ID] = a
	s.usernames[a.Username] = a.ID

	return a, nil
}

func (s *memoryStore) FetchAccountByID(ctx context.Context, id uuid.UUID) (Account, error) {
	s.RLock()
	a, ok := s.accounts[id]
	s.RUnlock()

	if !ok {
		return a, ErrAccountNotFound
	}

	return a, nil
}

func (s *memoryStore) FetchAccountByUsername(ctx context.Context, username string) (a Account, err error) {
	s.RLock()
	defer s.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return a, ErrAccountNotFound
	}

	return s.accounts[id], nil
}

func (s *memoryStore) DeleteAccountByID(ctx context.Context, id uuid.UUID) error {
	s.Lock()
	defer s.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}

	delete(s.usernames, a.Username)
	delete(s.accounts, id)

	return nil
}
