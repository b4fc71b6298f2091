package content

import "github.com/pkg/errors"

// errors
var (
	ErrNilStore       = errors.New("content store is nil")
	ErrNilDatabase    = errors.New("database is nil")
	ErrInvalidKind    = errors.New("invalid content kind")
	ErrRecordNotFound = errors.New("record not found")
	ErrZeroID         = errors.New("record id is zero")
	ErrKindMismatch   = errors.New("record kind mismatch")
)

// ValidationError is a rejected record, its reason is reported to the caller
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidationError tests whether a given error was caused by a rejected record
func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}
