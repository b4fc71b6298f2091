package group

import (
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind designates a group kind i.e. Group, Role etc...
type Kind uint8

func (k Kind) String() string {
	switch k {
	case GKGroup:
		return "group"
	case GKRole:
		return "role group"
	default:
		return "unknown group kind"
	}
}

// group kinds
const (
	GKGroup Kind = 1 << iota
	GKRole
)

// well-known groups
const (
	SelfEnrolledKey  = "self-enrolled"
	SelfEnrolledName = "Self-enrolled devices"
)

// Group represents an account group
// NOTE: group kind is permanent and must never change
type Group struct {
	ID        uuid.UUID `db:"id" json:"id" valid:"-"`
	Kind      Kind      `db:"kind" json:"kind" valid:"-"`
	Key       string    `db:"key" json:"key" valid:"required,ascii,stringlength(1|64)"`
	Name      string    `db:"name" json:"name" valid:"required,stringlength(1|128)"`
	CreatedAt time.Time `db:"created_at" json:"created_at" valid:"-"`
}

// NewGroup initializing a new group
func NewGroup(kind Kind, key string, name string) (g Group, err error) {
	g = Group{
		ID:        uuid.New(),
		Kind:      kind,
		Key:       strings.ToLower(strings.TrimSpace(key)),
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}

	return g, g.Validate()
}

// StringID returns short object info
func (g Group) StringID() string {
	return fmt.Sprintf("%s(%s:%s)", g.Kind, g.ID, g.Key)
}

// Validate tells a group to perform self-check and return errors if something's wrong
func (g Group) Validate() error {
	if g.ID == uuid.Nil {
		return ErrZeroID
	}

	if g.Kind != GKGroup && g.Kind != GKRole {
		return ErrInvalidKind
	}

	if _, err := govalidator.ValidateStruct(g); err != nil {
		return errors.Wrapf(err, "%s validation failed", g.Kind)
	}

	return nil
}
