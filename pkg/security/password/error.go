package password

import "github.com/pkg/errors"

var (
	ErrNilOwnerID       = errors.New("owner id is zero")
	ErrNilPasswordStore = errors.New("password store is nil")
	ErrNilDatabase      = errors.New("database is nil")
	ErrEmptyPassword    = errors.New("empty password is forbidden")
	ErrPasswordNotFound = errors.New("password not found")
	ErrShortPassword    = errors.New("password is too short")
	ErrLongPassword     = errors.New("password is too long")
	ErrUnsafePassword   = errors.New("password is too unsafe")
	ErrInvalidCost      = errors.New("bcrypt cost is out of range")
)
