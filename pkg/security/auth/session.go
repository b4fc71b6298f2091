package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/pkg/util"
)

// Session represents an authenticated login of an account
// NOTE: the session ID doubles as the JWT ID of its access token
type Session struct {
	ID        string    `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpireAt  time.Time `json:"expire_at"`
}

// NewSession initializes a new session for a given account
func NewSession(accountID uuid.UUID, ttl time.Duration) Session {
	now := time.Now().UTC()

	return Session{
		ID:        util.NewULID().String(),
		AccountID: accountID,
		CreatedAt: now,
		ExpireAt:  now.Add(ttl),
	}
}

// Validate validates the session
func (s Session) Validate() error {
	if s.ID == "" {
		return ErrInvalidSessionID
	}

	if s.AccountID == uuid.Nil {
		return errors.New("account id is not set")
	}

	if s.ExpireAt.IsZero() {
		return errors.New("expiration time is not set")
	}

	return nil
}

// IsExpired tells whether the session is past its expiration time
func (s Session) IsExpired() bool {
	return !s.ExpireAt.After(time.Now())
}
