package enrollment

import "github.com/pkg/errors"

// errors
var (
	ErrNilAccountManager  = errors.New("account manager is nil")
	ErrNilGroupManager    = errors.New("group manager is nil")
	ErrNilPasswordManager = errors.New("password manager is nil")
	ErrNilDeviceManager   = errors.New("device manager is nil")
	ErrNilSessionRevoker  = errors.New("session revoker is nil")
	ErrUsernameTaken      = errors.New("username is already taken")
)

// ValidationError is a rejected enrollment request, its reason is
// reported to the caller verbatim
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidationError tests whether a given error was caused by a rejected request
func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}
