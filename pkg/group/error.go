package group

import "github.com/pkg/errors"

// errors
var (
	ErrNilDatabase      = errors.New("database is nil")
	ErrNilGroupStore    = errors.New("group store is nil")
	ErrZeroID           = errors.New("id is zero")
	ErrZeroMemberID     = errors.New("member id is zero")
	ErrInvalidKind      = errors.New("invalid group kind")
	ErrGroupNotFound    = errors.New("group not found")
	ErrGroupKeyTaken    = errors.New("group key is already taken")
	ErrRelationNotFound = errors.New("relation not found")
)
