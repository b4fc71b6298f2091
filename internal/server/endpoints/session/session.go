package session

import (
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/internal/core"
	"github.com/sebastiaanschool/schoolhub/internal/server/endpoints"
	"github.com/sebastiaanschool/schoolhub/pkg/security/auth"
)

// errors
var (
	ErrMalformedLogin     = errors.New("request body should be a JSON object with username and password strings")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Login is the request body of a login
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token is a freshly issued access token
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Post opens a new session
func Post(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
	body, err := endpoints.ReadBody(w, r)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	var login Login
	if err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &login); err != nil {
		return nil, http.StatusBadRequest, ErrMalformedLogin
	}

	s, token, err := c.Authenticator().Login(ctx, login.Username, []byte(login.Password))
	switch {
	case err == nil:
		return Token{Token: token, ExpiresAt: s.ExpireAt}, http.StatusOK, nil
	case auth.IsCredentialsError(err):
		return nil, http.StatusUnauthorized, ErrInvalidCredentials
	default:
		return nil, http.StatusInternalServerError, err
	}
}

// Delete closes the caller's session, basic authentication has none to close
func Delete(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
	ident, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, http.StatusUnauthorized, auth.ErrAuthenticationFailed
	}

	if ident.SessionID != "" {
		if err = c.Authenticator().RevokeSession(ctx, ident.SessionID); err != nil {
			return nil, http.StatusInternalServerError, err
		}
	}

	return nil, http.StatusNoContent, nil
}
