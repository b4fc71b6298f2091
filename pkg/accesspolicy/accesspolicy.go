package accesspolicy

import (
	"fmt"
	"net/http"
)

// AccessRight is a single right or a set of rights
type AccessRight uint8

// declaring discrete rights for all cases
const (
	APNoAccess = AccessRight(0)
	APView     = AccessRight(1 << (iota - 1))
	APCreate
	APChange
	APDelete
	APFullAccess = APView | APCreate | APChange | APDelete
)

func (r AccessRight) String() string {
	switch r {
	case APNoAccess:
		return "no access"
	case APView:
		return "view"
	case APCreate:
		return "create"
	case APChange:
		return "change"
	case APDelete:
		return "delete"
	default:
		return fmt.Sprintf("rights(%d)", uint8(r))
	}
}

// RightForMethod maps an HTTP method to the right it requires
func RightForMethod(method string) AccessRight {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return APView
	case http.MethodPost:
		return APCreate
	case http.MethodPut, http.MethodPatch:
		return APChange
	case http.MethodDelete:
		return APDelete
	default:
		return APNoAccess
	}
}

// Caller is what the gate knows about whoever makes a request
type Caller struct {
	Authenticated bool
	IsAdmin       bool
}

// Anonymous is an unauthenticated caller
var Anonymous = Caller{}

// Policy denotes who has what rights on a resource
type Policy struct {
	// Supported lists the rights which exist on the resource at all,
	// anything else is not allowed regardless of the caller
	Supported AccessRight

	// Everyone is granted to any caller
	Everyone AccessRight

	// Anonymous is granted only to unauthenticated callers
	Anonymous AccessRight

	// Authenticated is granted to any authenticated caller
	Authenticated AccessRight

	// Admin is granted to administrators
	Admin AccessRight

	// Forbidden resources are never accessible to anyone
	Forbidden bool
}

// Summarize summarizing the resulting access right flags of a caller
func (p Policy) Summarize(c Caller) AccessRight {
	r := p.Everyone

	if !c.Authenticated {
		return (r | p.Anonymous) & p.Supported
	}

	r |= p.Authenticated

	if c.IsAdmin {
		r |= p.Admin
	}

	return r & p.Supported
}

// Outcome is the verdict of the gate
type Outcome uint8

// outcomes
const (
	Allow Outcome = iota
	AlreadyAuthenticated
	Unauthenticated
	Forbidden
	MethodNotAllowed
)

// Decision is the outcome of a single authorization check
type Decision struct {
	Outcome Outcome
	Reason  string
}

// Allowed tells whether the request may proceed
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Status returns the HTTP status a rejected request is answered with
func (d Decision) Status() int {
	switch d.Outcome {
	case Allow:
		return http.StatusOK
	case AlreadyAuthenticated:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusMethodNotAllowed
	}
}

// Evaluate decides whether a caller may use a method on a resource
//
// NOTE: the check order is fixed: forbidden resources, then unsupported
// methods, then the caller's rights
func (p Policy) Evaluate(method string, c Caller) Decision {
	if p.Forbidden {
		return Decision{Forbidden, "you do not have permission to perform this action"}
	}

	right := RightForMethod(method)
	if right == APNoAccess || p.Supported&right == 0 {
		return Decision{MethodNotAllowed, fmt.Sprintf("method %q not allowed", method)}
	}

	if p.Summarize(c)&right != 0 {
		return Decision{Outcome: Allow}
	}

	switch {
	case !c.Authenticated:
		return Decision{Unauthenticated, "authentication credentials were not provided"}
	case p.Anonymous&right != 0:
		return Decision{AlreadyAuthenticated, "already authenticated"}
	default:
		return Decision{Forbidden, "you do not have permission to perform this action"}
	}
}
