package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/pkg/account"
	"github.com/sebastiaanschool/schoolhub/pkg/security/password"
	"go.uber.org/zap"
)

// ContextKey is used to store authentication results in a request context
type ContextKey uint8

// context keys
const (
	CKIdentity ContextKey = iota
)

// DefaultSessionTTL is used when no session lifetime is configured
const DefaultSessionTTL = 30 * 24 * time.Hour

// Identity is an authenticated caller
// NOTE: SessionID is empty when a request authenticated with basic credentials
type Identity struct {
	Account   account.Account
	SessionID string
}

// IdentityFromContext returns the identity stored in a context, if any
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(CKIdentity).(Identity)
	return ident, ok
}

// WithIdentity returns a context carrying a given identity
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, CKIdentity, ident)
}

// Authenticator verifies credentials and manages sessions
type Authenticator struct {
	accounts  *account.Manager
	passwords password.Manager
	cache     Cache
	secret    []byte
	ttl       time.Duration
	logger    *zap.Logger
}

// NewAuthenticator initializing a new authenticator,
// zero ttl means DefaultSessionTTL
func NewAuthenticator(
	accounts *account.Manager,
	passwords password.Manager,
	cache Cache,
	secret []byte,
	ttl time.Duration,
) (*Authenticator, error) {
	switch {
	case accounts == nil:
		return nil, ErrNilAccountManager
	case passwords == nil:
		return nil, ErrNilPasswordManager
	case cache == nil:
		return nil, ErrNilCache
	case len(secret) == 0:
		return nil, ErrEmptySecret
	}

	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	a := &Authenticator{
		accounts:  accounts,
		passwords: passwords,
		cache:     cache,
		secret:    secret,
		ttl:       ttl,
	}

	return a, nil
}

// SetLogger assigns a logger for this authenticator
func (a *Authenticator) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[auth]")
	}

	a.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
// a new default emergency logger
func (a *Authenticator) Logger() *zap.Logger {
	if a.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize authenticator logger: %s", err))
		}

		a.logger = l
	}

	return a.logger
}

// AuthenticateByPassword verifies a username and password pair
func (a *Authenticator) AuthenticateByPassword(ctx context.Context, username string, rawpass []byte) (acc account.Account, err error) {
	if username == "" {
		return acc, ErrEmptyUsername
	}

	if len(rawpass) == 0 {
		return acc, ErrAuthenticationFailed
	}

	acc, err = a.accounts.AccountByUsername(ctx, username)
	if err != nil {
		if errors.Cause(err) == account.ErrAccountNotFound {
			return acc, ErrAuthenticationFailed
		}

		return acc, errors.Wrap(err, "failed to obtain account")
	}

	ok, err := a.passwords.Compare(ctx, acc.ID, rawpass)
	if err != nil {
		return acc, errors.Wrap(err, "failed to compare password")
	}

	if !ok {
		return account.Account{}, ErrAuthenticationFailed
	}

	return acc, nil
}

// Login authenticates by password and starts a new session,
// returning it along with its signed access token
func (a *Authenticator) Login(ctx context.Context, username string, rawpass []byte) (s Session, signedToken string, err error) {
	acc, err := a.AuthenticateByPassword(ctx, username, rawpass)
	if err != nil {
		return s, "", err
	}

	s = NewSession(acc.ID, a.ttl)

	signedToken, err = NewAccessToken(a.secret, s)
	if err != nil {
		return s, "", errors.Wrap(err, "failed to create access token")
	}

	payload, err := jsoniter.ConfigFastest.Marshal(s)
	if err != nil {
		return s, "", errors.Wrap(err, "failed to marshal session")
	}

	if err = a.cache.Put(ctx, s.ID, payload, a.ttl); err != nil {
		return s, "", errors.Wrap(err, "failed to store session")
	}

	a.Logger().Debug(
		"session started",
		zap.String("session_id", s.ID),
		zap.String("account_id", acc.ID.String()),
	)

	return s, signedToken, nil
}

// SessionByAccessToken returns an active session matching a given access token
func (a *Authenticator) SessionByAccessToken(ctx context.Context, signedToken string) (s Session, err error) {
	claims, err := ParseAccessToken(a.secret, signedToken)
	if err != nil {
		return s, err
	}

	payload, err := a.cache.Get(ctx, claims.Id)
	if err != nil {
		if errors.Cause(err) == ErrCacheMiss {
			return s, ErrSessionNotFound
		}

		return s, errors.Wrap(err, "failed to obtain session")
	}

	if err = jsoniter.ConfigFastest.Unmarshal(payload, &s); err != nil {
		return s, errors.Wrap(err, "failed to unmarshal session")
	}

	if s.IsExpired() || s.AccountID.String() != claims.Subject {
		return Session{}, ErrSessionNotFound
	}

	return s, nil
}

// RevokeSession terminates a session, a missing session is not an error
func (a *Authenticator) RevokeSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSessionID
	}

	if err := a.cache.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "failed to revoke session")
	}

	a.Logger().Debug("session revoked", zap.String("session_id", sessionID))

	return nil
}

// AuthenticateRequest resolves the caller of a request from its
// Authorization header, either a bearer access token or basic credentials
//
// NOTE: a request without the header is anonymous, which is reported as
// a false flag and no error
func (a *Authenticator) AuthenticateRequest(r *http.Request) (ident Identity, ok bool, err error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ident, false, nil
	}

	scheme, credentials := header, ""
	if i := strings.IndexByte(header, ' '); i > 0 {
		scheme, credentials = header[:i], strings.TrimSpace(header[i+1:])
	}

	ctx := r.Context()

	switch strings.ToLower(scheme) {
	case "bearer":
		s, err := a.SessionByAccessToken(ctx, credentials)
		if err != nil {
			return ident, false, err
		}

		acc, err := a.accounts.AccountByID(ctx, s.AccountID)
		if err != nil {
			if errors.Cause(err) == account.ErrAccountNotFound {
				return ident, false, ErrSessionNotFound
			}

			return ident, false, err
		}

		return Identity{Account: acc, SessionID: s.ID}, true, nil
	case "basic":
		username, rawpass, err := decodeBasic(credentials)
		if err != nil {
			return ident, false, err
		}

		acc, err := a.AuthenticateByPassword(ctx, username, rawpass)
		if err != nil {
			return ident, false, err
		}

		return Identity{Account: acc}, true, nil
	default:
		return ident, false, ErrUnsupportedAuthScheme
	}
}

func decodeBasic(credentials string) (username string, rawpass []byte, err error) {
	decoded, err := base64.StdEncoding.DecodeString(credentials)
	if err != nil {
		return "", nil, ErrMalformedCredentials
	}

	i := strings.IndexByte(string(decoded), ':')
	if i < 0 {
		return "", nil, ErrMalformedCredentials
	}

	return string(decoded[:i]), decoded[i+1:], nil
}

// IsCredentialsError tells whether an error means the caller presented
// credentials which could not be accepted
func IsCredentialsError(err error) bool {
	switch errors.Cause(err) {
	case ErrAuthenticationFailed,
		ErrEmptyUsername,
		ErrInvalidAccessToken,
		ErrInvalidSessionID,
		ErrSessionNotFound,
		ErrUnsupportedAuthScheme,
		ErrMalformedCredentials:
		return true
	default:
		return false
	}
}
