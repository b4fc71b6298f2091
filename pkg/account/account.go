package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is the main identity of this project, an account is either
// self-enrolled by an anonymous device or registered by an administrator
type Account struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	IsAdmin   bool      `db:"is_admin" json:"is_admin"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NewAccount initializing a new account
func NewAccount(username string, isAdmin bool) Account {
	return Account{
		ID:        uuid.New(),
		Username:  username,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks whether the account can be stored
func (a Account) Validate() error {
	if a.ID == uuid.Nil {
		return ErrZeroID
	}

	if strings.TrimSpace(a.Username) == "" {
		return ErrEmptyUsername
	}

	return nil
}
