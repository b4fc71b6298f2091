package endpoints

import (
	"context"

	"github.com/sebastiaanschool/schoolhub/pkg/accesspolicy"
	"github.com/sebastiaanschool/schoolhub/pkg/security/auth"
)

// Caller describes the caller of a request for the access policy gate
func Caller(ctx context.Context) accesspolicy.Caller {
	ident, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return accesspolicy.Anonymous
	}

	return accesspolicy.Caller{
		Authenticated: true,
		IsAdmin:       ident.Account.IsAdmin,
	}
}
