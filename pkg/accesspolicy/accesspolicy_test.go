package accesspolicy_test

import (
	"net/http"
	"testing"

	"github.com/sebastiaanschool/schoolhub/pkg/accesspolicy"
	"github.com/stretchr/testify/assert"
)

var (
	anonymous = accesspolicy.Anonymous
	regular   = accesspolicy.Caller{Authenticated: true}
	admin     = accesspolicy.Caller{Authenticated: true, IsAdmin: true}
)

type expectation struct {
	method string
	caller accesspolicy.Caller
	status int
}

func check(a *assert.Assertions, name string, p accesspolicy.Policy, cases []expectation) {
	for _, c := range cases {
		d := p.Evaluate(c.method, c.caller)
		a.Equal(c.status, d.Status(), "%s %s %+v", name, c.method, c.caller)
		a.Equal(c.status == http.StatusOK, d.Allowed(), "%s %s %+v", name, c.method, c.caller)

		if !d.Allowed() {
			a.NotEmpty(d.Reason)
		}
	}
}

func TestContentPolicies(t *testing.T) {
	a := assert.New(t)

	check(a, "content collection", accesspolicy.ContentCollection, []expectation{
		{http.MethodGet, anonymous, http.StatusOK},
		{http.MethodGet, regular, http.StatusOK},
		{http.MethodPost, anonymous, http.StatusUnauthorized},
		{http.MethodPost, regular, http.StatusForbidden},
		{http.MethodPost, admin, http.StatusOK},
		{http.MethodPut, anonymous, http.StatusMethodNotAllowed},
		{http.MethodPut, regular, http.StatusMethodNotAllowed},
		{http.MethodPut, admin, http.StatusMethodNotAllowed},
		{http.MethodDelete, admin, http.StatusMethodNotAllowed},
	})

	check(a, "content item", accesspolicy.ContentItem, []expectation{
		{http.MethodGet, anonymous, http.StatusOK},
		{http.MethodPatch, anonymous, http.StatusUnauthorized},
		{http.MethodPatch, regular, http.StatusForbidden},
		{http.MethodPatch, admin, http.StatusOK},
		{http.MethodPut, admin, http.StatusOK},
		{http.MethodDelete, regular, http.StatusForbidden},
		{http.MethodDelete, admin, http.StatusOK},
		{http.MethodPost, admin, http.StatusMethodNotAllowed},
	})

	check(a, "timeline", accesspolicy.Timeline, []expectation{
		{http.MethodGet, anonymous, http.StatusOK},
		{http.MethodPost, admin, http.StatusMethodNotAllowed},
	})
}

func TestEnrollmentPolicy(t *testing.T) {
	a := assert.New(t)

	check(a, "enrollment", accesspolicy.Enrollment, []expectation{
		{http.MethodPost, anonymous, http.StatusOK},
		{http.MethodPost, regular, http.StatusBadRequest},
		{http.MethodPost, admin, http.StatusBadRequest},
		{http.MethodDelete, anonymous, http.StatusUnauthorized},
		{http.MethodDelete, regular, http.StatusOK},
		{http.MethodGet, anonymous, http.StatusMethodNotAllowed},
		{http.MethodGet, regular, http.StatusMethodNotAllowed},
		{http.MethodPut, regular, http.StatusMethodNotAllowed},
	})
}

func TestPushSettingsPolicy(t *testing.T) {
	a := assert.New(t)

	check(a, "push settings", accesspolicy.PushSettings, []expectation{
		{http.MethodGet, anonymous, http.StatusUnauthorized},
		{http.MethodPost, anonymous, http.StatusUnauthorized},
		{http.MethodGet, regular, http.StatusOK},
		{http.MethodPost, regular, http.StatusOK},
		{http.MethodPut, anonymous, http.StatusMethodNotAllowed},
		{http.MethodPut, regular, http.StatusMethodNotAllowed},
		{http.MethodDelete, anonymous, http.StatusMethodNotAllowed},
		{http.MethodDelete, admin, http.StatusMethodNotAllowed},
	})
}

func TestDeviceByIDPolicy(t *testing.T) {
	a := assert.New(t)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		check(a, "device by id", accesspolicy.DeviceByID, []expectation{
			{method, anonymous, http.StatusForbidden},
			{method, regular, http.StatusForbidden},
			{method, admin, http.StatusForbidden},
		})
	}
}

func TestSessionPolicy(t *testing.T) {
	a := assert.New(t)

	check(a, "session", accesspolicy.Session, []expectation{
		{http.MethodPost, anonymous, http.StatusOK},
		{http.MethodPost, regular, http.StatusOK},
		{http.MethodDelete, anonymous, http.StatusUnauthorized},
		{http.MethodDelete, regular, http.StatusOK},
		{http.MethodGet, regular, http.StatusMethodNotAllowed},
	})
}

func TestCanListAll(t *testing.T) {
	a := assert.New(t)

	for _, l := range []accesspolicy.Listing{accesspolicy.LBulletins, accesspolicy.LNewsletters} {
		a.False(accesspolicy.CanListAll(l, anonymous))
		a.False(accesspolicy.CanListAll(l, regular))
		a.True(accesspolicy.CanListAll(l, admin))
	}

	a.True(accesspolicy.CanListAll(accesspolicy.LAgenda, anonymous))
	a.True(accesspolicy.CanListAll(accesspolicy.LAgenda, regular))
	a.True(accesspolicy.CanListAll(accesspolicy.LAgenda, admin))
}

func TestRightForMethod(t *testing.T) {
	a := assert.New(t)

	a.Equal(accesspolicy.APView, accesspolicy.RightForMethod(http.MethodHead))
	a.Equal(accesspolicy.APChange, accesspolicy.RightForMethod(http.MethodPatch))
	a.Equal(accesspolicy.APNoAccess, accesspolicy.RightForMethod("TRACE"))
	a.Equal("delete", accesspolicy.APDelete.String())
}
