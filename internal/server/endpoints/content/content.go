package content

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/internal/core"
	"github.com/sebastiaanschool/schoolhub/internal/server/endpoints"
	"github.com/sebastiaanschool/schoolhub/pkg/accesspolicy"
	"github.com/sebastiaanschool/schoolhub/pkg/content"
)

// ErrNotFound is reported for a missing or malformed record identifier
var ErrNotFound = errors.New("not found")

// recordID parses the record identifier of an item path
func recordID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNotFound
	}

	return id, nil
}

// failure maps a content error to its response
func failure(err error) (interface{}, int, error) {
	switch {
	case content.IsValidationError(err):
		return nil, http.StatusBadRequest, err
	case errors.Cause(err) == content.ErrRecordNotFound:
		return nil, http.StatusNotFound, ErrNotFound
	default:
		return nil, http.StatusInternalServerError, err
	}
}

// List returns the listing of a kind, the `all` flag is honoured
// only for callers who may see everything
func List(k content.Kind, l accesspolicy.Listing) endpoints.Handler {
	return func(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
		all := endpoints.HasFlag(r, "all") && accesspolicy.CanListAll(l, endpoints.Caller(ctx))

		rs, err := c.ContentManager().List(ctx, k, all)
		if err != nil {
			return failure(err)
		}

		return rs, http.StatusOK, nil
	}
}

// Get returns a single record
func Get(k content.Kind) endpoints.Handler {
	return func(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
		id, err := recordID(r)
		if err != nil {
			return nil, http.StatusNotFound, err
		}

		rec, err := c.ContentManager().Record(ctx, k, id)
		if err != nil {
			return failure(err)
		}

		return rec, http.StatusOK, nil
	}
}

// Post creates a new record
func Post(k content.Kind) endpoints.Handler {
	return func(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
		body, err := endpoints.ReadBody(w, r)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}

		rec, err := content.Decode(k, body)
		if err != nil {
			return failure(err)
		}

		if rec, err = c.ContentManager().Create(ctx, rec); err != nil {
			return failure(err)
		}

		return rec, http.StatusCreated, nil
	}
}

// Put replaces a record as a whole
func Put(k content.Kind) endpoints.Handler {
	return func(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
		id, err := recordID(r)
		if err != nil {
			return nil, http.StatusNotFound, err
		}

		body, err := endpoints.ReadBody(w, r)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}

		rec, err := content.Decode(k, body)
		if err != nil {
			return failure(err)
		}

		if rec, err = c.ContentManager().Update(ctx, rec.WithID(id)); err != nil {
			return failure(err)
		}

		return rec, http.StatusOK, nil
	}
}

// Patch changes the fields present in the body
func Patch(k content.Kind) endpoints.Handler {
	return func(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
		id, err := recordID(r)
		if err != nil {
			return nil, http.StatusNotFound, err
		}

		body, err := endpoints.ReadBody(w, r)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}

		rec, err := c.ContentManager().Patch(ctx, k, id, body)
		if err != nil {
			return failure(err)
		}

		return rec, http.StatusOK, nil
	}
}

// Delete deletes a record
func Delete(k content.Kind) endpoints.Handler {
	return func(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
		id, err := recordID(r)
		if err != nil {
			return nil, http.StatusNotFound, err
		}

		if err = c.ContentManager().Delete(ctx, k, id); err != nil {
			return failure(err)
		}

		return nil, http.StatusNoContent, nil
	}
}

// Timeline returns the combined feed
func Timeline(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
	caller := endpoints.Caller(ctx)
	all := endpoints.HasFlag(r, "all")

	entries, err := c.ContentManager().Timeline(
		ctx,
		all && accesspolicy.CanListAll(accesspolicy.LBulletins, caller),
		all && accesspolicy.CanListAll(accesspolicy.LAgenda, caller),
	)
	if err != nil {
		return failure(err)
	}

	return entries, http.StatusOK, nil
}
