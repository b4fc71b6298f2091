package device

import "github.com/pkg/errors"

var (
	ErrNilStore             = errors.New("registration store is nil")
	ErrNilDatabase          = errors.New("database is nil")
	ErrZeroAccountID        = errors.New("account id is zero")
	ErrRegistrationNotFound = errors.New("registration is not found")
	ErrInvalidRegistration  = errors.New("registration is invalid")
)

// ValidationError is a user-correctable rejection of a settings update,
// its reason is reported to the caller verbatim
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidationError tests whether a given error was caused by a rejected update
func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}
