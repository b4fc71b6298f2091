package group

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Manager is responsible for groups and memberships
// NOTE: groups are cached by key once obtained, they never change
type Manager struct {
	store  Store
	keyMap map[string]Group
	logger *zap.Logger
	sync.RWMutex
}

// NewManager initializing a new group manager
func NewManager(s Store) (*Manager, error) {
	if s == nil {
		return nil, ErrNilGroupStore
	}

	m := &Manager{
		store:  s,
		keyMap: make(map[string]Group),
	}

	return m, nil
}

// SetLogger assigns a logger for this manager
func (m *Manager) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[group]")
	}

	m.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
func (m *Manager) Logger() *zap.Logger {
	if m.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize group manager logger: %s", err))
		}

		m.logger = l
	}

	return m.logger
}

// GroupByKey returns a group by its key
func (m *Manager) GroupByKey(ctx context.Context, key string) (g Group, err error) {
	m.RLock()
	g, ok := m.keyMap[key]
	m.RUnlock()

	if ok {
		return g, nil
	}

	g, err = m.store.FetchGroupByKey(ctx, key)
	if err != nil {
		return g, err
	}

	m.Lock()
	m.keyMap[g.Key] = g
	m.Unlock()

	return g, nil
}

// Obtain returns an existing group by key, creating it on first use
func (m *Manager) Obtain(ctx context.Context, kind Kind, key string, name string) (g Group, err error) {
	g, err = m.GroupByKey(ctx, key)
	if errors.Cause(err) != ErrGroupNotFound {
		return g, err
	}

	g, err = NewGroup(kind, key, name)
	if err != nil {
		return g, errors.Wrapf(err, "failed to initialize new group: %s", key)
	}

	g, err = m.store.CreateGroup(ctx, g)
	switch errors.Cause(err) {
	case nil:
	case ErrGroupKeyTaken:
		// created concurrently
		return m.GroupByKey(ctx, key)
	default:
		return g, errors.Wrapf(err, "failed to create group: %s", key)
	}

	m.Lock()
	m.keyMap[g.Key] = g
	m.Unlock()

	m.Logger().Info("created new group", zap.String("group", g.StringID()))

	return g, nil
}

// AddMember adds an account to a group
func (m *Manager) AddMember(ctx context.Context, g Group, accountID uuid.UUID) error {
	if g.ID == uuid.Nil {
		return ErrZeroID
	}

	if accountID == uuid.Nil {
		return ErrZeroMemberID
	}

	if err := m.store.CreateRelation(ctx, g.ID, accountID); err != nil {
		return errors.Wrapf(err, "failed to add member to %s", g.StringID())
	}

	return nil
}

// IsMember tests whether an account belongs to a group
func (m *Manager) IsMember(ctx context.Context, g Group, accountID uuid.UUID) (bool, error) {
	if g.ID == uuid.Nil || accountID == uuid.Nil {
		return false, nil
	}

	return m.store.HasRelation(ctx, g.ID, accountID)
}

// RemoveMember removes an account from a group
func (m *Manager) RemoveMember(ctx context.Context, g Group, accountID uuid.UUID) error {
	if g.ID == uuid.Nil {
		return ErrZeroID
	}

	return m.store.DeleteRelation(ctx, g.ID, accountID)
}

// ReleaseAccount removes an account from every group
func (m *Manager) ReleaseAccount(ctx context.Context, accountID uuid.UUID) error {
	if accountID == uuid.Nil {
		return ErrZeroMemberID
	}

	return m.store.DeleteMemberRelations(ctx, accountID)
}
