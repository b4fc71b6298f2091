package enrollment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/pkg/account"
	"github.com/sebastiaanschool/schoolhub/pkg/device"
	"github.com/sebastiaanschool/schoolhub/pkg/group"
	"github.com/sebastiaanschool/schoolhub/pkg/security/password"
	"go.uber.org/zap"
)

// SessionRevoker terminates an authenticated session
type SessionRevoker interface {
	RevokeSession(ctx context.Context, sessionID string) error
}

// Service handles the lifecycle of self-enrolled accounts
type Service struct {
	accounts  *account.Manager
	groups    *group.Manager
	passwords password.Manager
	devices   *device.Manager
	sessions  SessionRevoker
	logger    *zap.Logger
}

// NewService initializing a new enrollment service
func NewService(
	accounts *account.Manager,
	groups *group.Manager,
	passwords password.Manager,
	devices *device.Manager,
	sessions SessionRevoker,
) (*Service, error) {
	switch {
	case accounts == nil:
		return nil, ErrNilAccountManager
	case groups == nil:
		return nil, ErrNilGroupManager
	case passwords == nil:
		return nil, ErrNilPasswordManager
	case devices == nil:
		return nil, ErrNilDeviceManager
	case sessions == nil:
		return nil, ErrNilSessionRevoker
	}

	s := &Service{
		accounts:  accounts,
		groups:    groups,
		passwords: passwords,
		devices:   devices,
		sessions:  sessions,
	}

	return s, nil
}

// SetLogger assigns a logger for this service
func (s *Service) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[enrollment]")
	}

	s.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
// a new default emergency logger
func (s *Service) Logger() *zap.Logger {
	if s.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize enrollment logger: %s", err))
		}

		s.logger = l
	}

	return s.logger
}

// Enroll registers a new self-enrolled account: the account itself,
// its self-enrolled group membership, its password and a blank
// registration placeholder; the account is removed again if any step fails
func (s *Service) Enroll(ctx context.Context, req Request) (acc account.Account, err error) {
	if err = req.Validate(); err != nil {
		return acc, err
	}

	acc, err = s.accounts.Create(ctx, req.Username, false)
	if err != nil {
		if errors.Cause(err) == account.ErrUsernameTaken {
			return acc, ErrUsernameTaken
		}

		return acc, errors.Wrap(err, "failed to create account")
	}

	if err = s.provision(ctx, acc, req.Password); err != nil {
		if xerr := s.accounts.DeleteAccountByID(ctx, acc.ID); xerr != nil {
			s.Logger().Error(
				"failed to roll back enrollment",
				zap.String("account_id", acc.ID.String()),
				zap.Error(xerr),
			)
		}

		return account.Account{}, err
	}

	s.Logger().Info("enrolled new account", zap.String("account_id", acc.ID.String()))

	return acc, nil
}

func (s *Service) provision(ctx context.Context, acc account.Account, rawpass string) error {
	g, err := s.groups.Obtain(ctx, group.GKGroup, group.SelfEnrolledKey, group.SelfEnrolledName)
	if err != nil {
		return errors.Wrap(err, "failed to obtain self-enrolled group")
	}

	if err = s.groups.AddMember(ctx, g, acc.ID); err != nil {
		return errors.Wrap(err, "failed to join self-enrolled group")
	}

	if err = s.passwords.Set(ctx, acc.ID, []byte(rawpass)); err != nil {
		return errors.Wrap(err, "failed to set password")
	}

	if _, err = s.devices.CreatePlaceholder(ctx, acc.ID); err != nil {
		return errors.Wrap(err, "failed to create registration placeholder")
	}

	return nil
}

// Unenroll terminates the caller's session and deletes its account
// along with everything the account owns
func (s *Service) Unenroll(ctx context.Context, accountID uuid.UUID, sessionID string) error {
	if sessionID != "" {
		if err := s.sessions.RevokeSession(ctx, sessionID); err != nil {
			return errors.Wrap(err, "failed to revoke session")
		}
	}

	if err := s.accounts.DeleteAccountByID(ctx, accountID); err != nil {
		return errors.Wrap(err, "failed to delete account")
	}

	s.Logger().Info("unenrolled account", zap.String("account_id", accountID.String()))

	return nil
}

// RegisterAdmin creates an administrator account, its password must pass
// the strength evaluation
func (s *Service) RegisterAdmin(ctx context.Context, username string, rawpass []byte) (acc account.Account, err error) {
	if err = password.EvaluatePasswordStrength(rawpass, []string{username}); err != nil {
		return acc, errors.Wrap(err, "password is rejected")
	}

	acc, err = s.accounts.Create(ctx, username, true)
	if err != nil {
		if errors.Cause(err) == account.ErrUsernameTaken {
			return acc, ErrUsernameTaken
		}

		return acc, errors.Wrap(err, "failed to create account")
	}

	if err = s.passwords.Set(ctx, acc.ID, rawpass); err != nil {
		if xerr := s.accounts.DeleteAccountByID(ctx, acc.ID); xerr != nil {
			s.Logger().Error("failed to roll back admin registration", zap.Error(xerr))
		}

		return account.Account{}, errors.Wrap(err, "failed to set password")
	}

	s.Logger().Info(
		"registered administrator",
		zap.String("account_id", acc.ID.String()),
		zap.String("username", acc.Username),
	)

	return acc, nil
}
