package device

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/internal/core"
)

// ErrForbidden is the only answer registrations addressed by identifier get
var ErrForbidden = errors.New("you do not have permission to perform this action")

// Any refuses every request, registrations are only reachable through push settings
func Any(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, code int, err error) {
	return nil, http.StatusForbidden, ErrForbidden
}
