package password

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Manager describes the behaviour of an account password manager
type Manager interface {
	Set(ctx context.Context, ownerID uuid.UUID, rawpass []byte) error
	Compare(ctx context.Context, ownerID uuid.UUID, rawpass []byte) (bool, error)
	Delete(ctx context.Context, ownerID uuid.UUID) error
}

type defaultManager struct {
	store Store
	cost  int
}

// NewManager initializes the default password manager,
// zero cost means bcrypt.DefaultCost
func NewManager(store Store, cost int) (Manager, error) {
	if store == nil {
		return nil, ErrNilPasswordStore
	}

	pm := &defaultManager{
		store: store,
		cost:  cost,
	}

	return pm, nil
}

func (m *defaultManager) Set(ctx context.Context, ownerID uuid.UUID, rawpass []byte) (err error) {
	p, err := New(ownerID, rawpass, m.cost)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	return m.store.Upsert(ctx, p)
}

// Compare returns false without an error if the owner has no password
func (m *defaultManager) Compare(ctx context.Context, ownerID uuid.UUID, rawpass []byte) (bool, error) {
	if ownerID == uuid.Nil {
		return false, ErrNilOwnerID
	}

	p, err := m.store.Get(ctx, ownerID)
	switch errors.Cause(err) {
	case nil:
		return p.Compare(rawpass), nil
	case ErrPasswordNotFound:
		return false, nil
	default:
		return false, err
	}
}

// Delete is idempotent, a missing password is not an error
func (m *defaultManager) Delete(ctx context.Context, ownerID uuid.UUID) error {
	if ownerID == uuid.Nil {
		return ErrNilOwnerID
	}

	if err := m.store.Delete(ctx, ownerID); err != nil && errors.Cause(err) != ErrPasswordNotFound {
		return err
	}

	return nil
}
