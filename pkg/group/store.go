package group

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store describes a storage contract for groups and their memberships
type Store interface {
	CreateGroup(ctx context.Context, g Group) (Group, error)
	FetchGroupByKey(ctx context.Context, key string) (Group, error)
	CreateRelation(ctx context.Context, groupID, accountID uuid.UUID) error
	HasRelation(ctx context.Context, groupID, accountID uuid.UUID) (bool, error)
	DeleteRelation(ctx context.Context, groupID, accountID uuid.UUID) error
	DeleteMemberRelations(ctx context.Context, accountID uuid.UUID) error
}

type relation struct {
	groupID   uuid.UUID
	accountID uuid.UUID
}

type memoryStore struct {
	groups    map[uuid.UUID]Group
	keys      map[string]uuid.UUID
	relations map[relation]struct{}
	sync.RWMutex
}

// NewMemoryStore returns an in-memory group store
func NewMemoryStore() Store {
	return &memoryStore{
		groups:    make(map[uuid.UUID]Group),
		keys:      make(map[string]uuid.UUID),
		relations: make(map[relation]struct{}),
	}
}

func (s *memoryStore) CreateGroup(ctx context.Context, g Group) (Group, error) {
	if err := g.Validate(); err != nil {
		return g, err
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.keys[g.Key]; ok {
		return g, ErrGroupKeyTaken
	}

	s.groups[g.ID] = g
	s.keys[g.Key] = g.ID

	return g, nil
}

func (s *memoryStore) FetchGroupByKey(ctx context.Context, key string) (g Group, err error) {
	s.RLock()
	defer s.RUnlock()

	id, ok := s.keys[key]
	if !ok {
		return g, ErrGroupNotFound
	}

	return s.groups[id], nil
}

func (s *memoryStore) CreateRelation(ctx context.Context, groupID, accountID uuid.UUID) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return ErrGroupNotFound
	}

	s.relations[relation{groupID, accountID}] = struct{}{}

	return nil
}

func (s *memoryStore) HasRelation(ctx context.Context, groupID, accountID uuid.UUID) (bool, error) {
	s.RLock()
	_, ok := s.relations[relation{groupID, accountID}]
	s.RUnlock()

	return ok, nil
}

func (s *memoryStore) DeleteRelation(ctx context.Context, groupID, accountID uuid.UUID) error {
	s.Lock()
	defer s.Unlock()

	r := relation{groupID, accountID}
	if _, ok := s.relations[r]; !ok {
		return ErrRelationNotFound
	}

	delete(s.relations, r)

	return nil
}

func (s *memoryStore) DeleteMemberRelations(ctx context.Context, accountID uuid.UUID) error {
	s.Lock()
	for r := range s.relations {
		if r.accountID == accountID {
			delete(s.relations, r)
		}
	}
	s.Unlock()

	return nil
}
