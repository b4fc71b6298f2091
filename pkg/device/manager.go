package device

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/r3labs/diff"
	"go.uber.org/zap"
)

// Manager reconciles push settings submissions with the stored registrations
type Manager struct {
	store  Store
	logger *zap.Logger
}

// NewManager initializing a new registration manager
func NewManager(s Store) (*Manager, error) {
	if s == nil {
		return nil, ErrNilStore
	}

	return &Manager{store: s}, nil
}

// SetLogger assigns a logger for this manager
func (m *Manager) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[device]")
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
			panic(fmt.Errorf("failed to initialize device manager logger: %s", err))
		}

		m.logger = l
	}

	return m.logger
}

// CreatePlaceholder stores a blank registration for a freshly enrolled account
func (m *Manager) CreatePlaceholder(ctx context.Context, accountID uuid.UUID) (r Registration, err error) {
	if accountID == uuid.Nil {
		return r, ErrZeroAccountID
	}

	r, err = m.store.UpsertRegistration(ctx, NewRegistration(accountID))
	if err != nil {
		return r, errors.Wrap(err, "failed to store placeholder registration")
	}

	return r, nil
}

// Registration returns the registration of an account
func (m *Manager) Registration(ctx context.Context, accountID uuid.UUID) (Registration, error) {
	if accountID == uuid.Nil {
		return Registration{}, ErrZeroAccountID
	}

	return m.store.FetchRegistration(ctx, accountID)
}

// Settings returns the push settings of an account,
// an account without a registration is simply inactive
func (m *Manager) Settings(ctx context.Context, accountID uuid.UUID) (s Settings, err error) {
	r, err := m.Registration(ctx, accountID)
	switch errors.Cause(err) {
	case nil:
		return Settings{Active: r.Active}, nil
	case ErrRegistrationNotFound:
		return Settings{Active: false}, nil
	default:
		return s, errors.Wrap(err, "failed to obtain registration")
	}
}

// UpdateSettings validates an update and applies it to the account's
// registration, creating one if necessary
//
// NOTE: the provider of an existing registration never changes, a stored
// token is kept unless a new one is supplied (also when deactivating), and
// an update which changes nothing is not written at all
func (m *Manager) UpdateSettings(ctx context.Context, accountID uuid.UUID, u Update) (s Settings, err error) {
	if accountID == uuid.Nil {
		return s, ErrZeroAccountID
	}

	if err = u.Validate(); err != nil {
		return s, err
	}

	existing, err := m.store.FetchRegistration(ctx, accountID)
	switch errors.Cause(err) {
	case nil:
		if !existing.IsPlaceholder() && existing.Provider != u.Provider {
			return s, invalid(fmt.Sprintf("cannot switch providers from %s to %s", existing.Provider, u.Provider))
		}
	case ErrRegistrationNotFound:
		existing = Registration{}
	default:
		return s, errors.Wrap(err, "failed to obtain existing registration")
	}

	base := existing
	if base.AccountID == uuid.Nil {
		base = NewRegistration(accountID)
	}

	updated := u.Apply(base)

	changelog, err := diff.Diff(existing, updated)
	if err != nil {
		return s, errors.Wrap(err, "failed to diff registration changes")
	}

	// identical resubmission
	if existing.AccountID != uuid.Nil && len(changelog) == 0 {
		return Settings{Active: existing.Active}, nil
	}

	updated.UpdatedAt = time.Now().UTC()

	updated, err = m.store.UpsertRegistration(ctx, updated)
	if err != nil {
		return s, errors.Wrap(err, "failed to store registration")
	}

	m.Logger().Debug(
		"updated push settings",
		zap.String("account_id", accountID.String()),
		zap.String("provider", string(updated.Provider)),
		zap.Bool("active", updated.Active),
		zap.Strings("changed", changedFields(changelog)),
	)

	return Settings{Active: updated.Active}, nil
}

// DeleteRegistration removes the registration of an account, a missing one is not an error
func (m *Manager) DeleteRegistration(ctx context.Context, accountID uuid.UUID) error {
	if accountID == uuid.Nil {
		return ErrZeroAccountID
	}

	err := m.store.DeleteRegistration(ctx, accountID)
	if err != nil && errors.Cause(err) != ErrRegistrationNotFound {
		return errors.Wrap(err, "failed to delete registration")
	}

	return nil
}

// ActiveRegistrations returns every active registration bound to a given provider
func (m *Manager) ActiveRegistrations(ctx context.Context, p Provider) ([]Registration, error) {
	return m.store.FetchActiveRegistrations(ctx, p)
}

func changedFields(changelog diff.Changelog) []string {
	fields := make([]string, 0, len(changelog))
	for _, c := range changelog {
		if len(c.Path) > 0 {
			fields = append(fields, c.Path[0])
		}
	}

	return fields
}
