package account

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CascadeFunc deletes whatever data is owned by a deleted account
type CascadeFunc func(ctx context.Context, accountID uuid.UUID) error

type cascade struct {
	name string
	fn   CascadeFunc
}

// Manager is responsible for the account lifecycle
type Manager struct {
	store    Store
	cascades []cascade
	logger   *zap.Logger
	sync.RWMutex
}

// NewManager initializing a new account manager
func NewManager(s Store) (*Manager, error) {
	if s == nil {
		return nil, ErrNilStore
	}

	m := &Manager{
		store:    s,
		cascades: make([]cascade, 0),
	}

	return m, nil
}

// SetLogger assigns a logger for this manager
func (m *Manager) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[account]")
	}

	m.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
// a new default emergency logger
func (m *Manager) Logger() *zap.Logger {
	if m.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize account manager logger: %s", err))
		}

		m.logger = l
	}

	return m.logger
}

// OnDelete registers a function to be called after an account is deleted,
// functions are called in the order of registration
func (m *Manager) OnDelete(name string, fn CascadeFunc) error {
	if fn == nil {
		return ErrNilCascadeFunc
	}

	m.Lock()
	m.cascades = append(m.cascades, cascade{name: name, fn: fn})
	m.Unlock()

	return nil
}

// Create creates a new account, returns ErrUsernameTaken if an
// account with the same username already exists
func (m *Manager) Create(ctx context.Context, username string, isAdmin bool) (a Account, err error) {
	a = NewAccount(username, isAdmin)

	a, err = m.store.CreateAccount(ctx, a)
	if err != nil {
		return a, err
	}

	m.Logger().Debug(
		"created new account",
		zap.String("id", a.ID.String()),
		zap.String("username", a.Username),
		zap.Bool("is_admin", a.IsAdmin),
	)

	return a, nil
}

// AccountByID returns an account if found by id
func (m *Manager) AccountByID(ctx context.Context, id uuid.UUID) (a Account, err error) {
	if id == uuid.Nil {
		return a, ErrAccountNotFound
	}

	a, err = m.store.FetchAccountByID(ctx, id)
	if err != nil {
		return a, errors.Wrapf(err, "failed to obtain account by id: %s", id)
	}

	return a, nil
}

// AccountByUsername returns an account if found by username
func (m *Manager) AccountByUsername(ctx context.Context, username string) (a Account, err error) {
	if username == "" {
		return a, ErrAccountNotFound
	}

	a, err = m.store.FetchAccountByUsername(ctx, username)
	if err != nil {
		return a, errors.Wrapf(err, "failed to obtain account by username: %s", username)
	}

	return a, nil
}

// IsTaken tests whether a given username is already registered
func (m *Manager) IsTaken(ctx context.Context, username string) (bool, error) {
	_, err := m.AccountByUsername(ctx, username)

	switch errors.Cause(err) {
	case nil:
		return true, nil
	case ErrAccountNotFound:
		return false, nil
	default:
		return false, err
	}
}

// DeleteAccountByID deletes an account along with everything it owns
func (m *Manager) DeleteAccountByID(ctx context.Context, id uuid.UUID) (err error) {
	if id == uuid.Nil {
		return ErrZeroID
	}

	if err = m.store.DeleteAccountByID(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete account")
	}

	m.RLock()
	cascades := m.cascades
	m.RUnlock()

	// the account is already gone, so every dependent is attempted
	// and the first failure is reported
	for _, c := range cascades {
		if xerr := c.fn(ctx, id); xerr != nil {
			m.Logger().Warn(
				"failed to delete account dependent",
				zap.String("id", id.String()),
				zap.String("dependent", c.name),
				zap.Error(xerr),
			)

			if err == nil {
				err = errors.Wrapf(xerr, "failed to delete account %s", c.name)
			}
		}
	}

	if err != nil {
		return err
	}

	m.Logger().Debug("deleted account", zap.String("id", id.String()))

	return nil
}
