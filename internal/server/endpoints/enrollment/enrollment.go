package enrollment

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/internal/core"
	"github.com/sebastiaanschool/schoolhub/internal/server/endpoints"
	"github.com/sebastiaanschool/schoolhub/pkg/enrollment"
	"github.com/sebastiaanschool/schoolhub/pkg/security/auth"
)

// Post enrolls a new anonymous account
func Post(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
	body, err := endpoints.ReadBody(w, r)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	req, err := enrollment.ParseRequest(body)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	_, err = c.Enrollment().Enroll(ctx, req)
	switch {
	case err == nil:
		return nil, http.StatusNoContent, nil
	case enrollment.IsValidationError(err):
		return nil, http.StatusBadRequest, err
	case errors.Cause(err) == enrollment.ErrUsernameTaken:
		return nil, http.StatusConflict, err
	default:
		return nil, http.StatusInternalServerError, err
	}
}

// Delete unenrolls the caller
func Delete(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
	ident, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, http.StatusUnauthorized, auth.ErrAuthenticationFailed
	}

	if err = c.Enrollment().Unenroll(ctx, ident.Account.ID, ident.SessionID); err != nil {
		return nil, http.StatusInternalServerError, err
	}

	return nil, http.StatusNoContent, nil
}
