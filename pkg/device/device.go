package device

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Provider is the push delivery channel a registration is bound to
type Provider string

// supported providers
const (
	APNS Provider = "apns"
	GCM  Provider = "gcm"
)

// Providers lists every supported provider
var Providers = []Provider{APNS, GCM}

// IsValid tests whether a provider is supported
func (p Provider) IsValid() bool {
	for _, v := range Providers {
		if p == v {
			return true
		}
	}

	return false
}

func providerList() string {
	names := make([]string, len(Providers))
	for i, p := range Providers {
		names[i] = string(p)
	}

	return "[" + strings.Join(names, ", ") + "]"
}

// registration token and name limits, counted in characters
const (
	MinTokenLength = 16
	MaxTokenLength = 256
	MaxNameLength  = 255
)

// Registration is the single push registration owned by an account
// NOTE: an empty provider marks the placeholder created at enrollment,
// it binds to whichever provider is submitted first
type Registration struct {
	AccountID uuid.UUID `db:"account_id" json:"-" diff:"-"`
	Provider  Provider  `db:"provider" json:"provider" diff:"provider"`
	Active    bool      `db:"active" json:"active" diff:"active"`
	Token     string    `db:"token" json:"-" diff:"token"`
	Name      string    `db:"name" json:"name" diff:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at" diff:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" diff:"-"`
}

// NewRegistration initializes a blank inactive registration
func NewRegistration(accountID uuid.UUID) Registration {
	now := time.Now().UTC()

	return Registration{
		AccountID: accountID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPlaceholder tells whether the registration is not yet bound to a provider
func (r Registration) IsPlaceholder() bool {
	return r.Provider == ""
}

// Validate checks the stored invariants of a registration
func (r Registration) Validate() error {
	if r.AccountID == uuid.Nil {
		return ErrZeroAccountID
	}

	if !r.IsPlaceholder() && !r.Provider.IsValid() {
		return errors.Wrapf(ErrInvalidRegistration, "unknown provider %q", r.Provider)
	}

	if r.Active && r.Token == "" {
		return errors.Wrap(ErrInvalidRegistration, "active registration without a token")
	}

	if r.Active && r.IsPlaceholder() {
		return errors.Wrap(ErrInvalidRegistration, "active registration without a provider")
	}

	if r.Token != "" {
		if n := utf8.RuneCountInString(r.Token); n <= MinTokenLength || n > MaxTokenLength {
			return errors.Wrap(ErrInvalidRegistration, "token length is out of range")
		}
	}

	if utf8.RuneCountInString(r.Name) > MaxNameLength {
		return errors.Wrap(ErrInvalidRegistration, "name is too long")
	}

	return nil
}

// Settings is what an account sees of its own registration
type Settings struct {
	Active bool `json:"active"`
}
