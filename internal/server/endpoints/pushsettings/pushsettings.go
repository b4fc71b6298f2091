package pushsettings

import (
	"context"
	"net/http"

	"github.com/sebastiaanschool/schoolhub/internal/core"
	"github.com/sebastiaanschool/schoolhub/internal/server/endpoints"
	"github.com/sebastiaanschool/schoolhub/pkg/device"
	"github.com/sebastiaanschool/schoolhub/pkg/security/auth"
)

// Get returns the caller's push settings
func Get(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
	ident, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, http.StatusUnauthorized, auth.ErrAuthenticationFailed
	}

	s, err := c.DeviceManager().Settings(ctx, ident.Account.ID)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	return s, http.StatusOK, nil
}

// Post updates the caller's push settings
func Post(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
	ident, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, http.StatusUnauthorized, auth.ErrAuthenticationFailed
	}

	body, err := endpoints.ReadBody(w, r)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	u, err := device.ParseUpdate(body)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	s, err := c.DeviceManager().UpdateSettings(ctx, ident.Account.ID, u)
	switch {
	case err == nil:
		return s, http.StatusOK, nil
	case device.IsValidationError(err):
		return nil, http.StatusBadRequest, err
	default:
		return nil, http.StatusInternalServerError, err
	}
}
