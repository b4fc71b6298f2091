package auth

import "github.com/pkg/errors"

// errors
var (
	ErrNilAccountManager     = errors.New("account manager is nil")
	ErrNilPasswordManager    = errors.New("password manager is nil")
	ErrNilCache              = errors.New("session cache is nil")
	ErrEmptySecret           = errors.New("signing secret is empty")
	ErrAuthenticationFailed  = errors.New("authentication failed")
	ErrEmptyUsername         = errors.New("username is empty")
	ErrEmptyPassword         = errors.New("password is empty")
	ErrInvalidAccessToken    = errors.New("invalid access token")
	ErrSessionNotFound       = errors.New("session not found")
	ErrInvalidSessionID      = errors.New("invalid session id")
	ErrCacheMiss             = errors.New("cache entry not found")
	ErrUnsupportedAuthScheme = errors.New("unsupported authorization scheme")
	ErrMalformedCredentials  = errors.New("malformed credentials")
)
