package account

import "github.com/pkg/errors"

// errors
var (
	ErrNilStore        = errors.New("account store is nil")
	ErrNilDatabase     = errors.New("database is nil")
	ErrZeroID          = errors.New("account id is zero")
	ErrEmptyUsername   = errors.New("username is empty")
	ErrUsernameTaken   = errors.New("username is already taken")
	ErrAccountNotFound = errors.New("account not found")
	ErrNilCascadeFunc  = errors.New("cascade function is nil")
)
