package server_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/internal/core"
	"github.com/sebastiaanschool/schoolhub/internal/server"
	"github.com/sebastiaanschool/schoolhub/pkg/account"
	"github.com/sebastiaanschool/schoolhub/pkg/content"
	"github.com/sebastiaanschool/schoolhub/pkg/device"
	"github.com/stretchr/testify/assert"
)

const (
	username = "22222222-4321-1234-abcd-4321abcd1234"
	password = "bbbbbbbb-4321-abcd-1234-4321abcd1234"

	adminUsername = "administrator"
	adminPassword = "xK9#mQ2$vL7!pR4&wT"
)

type testServer struct {
	core    *core.Core
	handler http.Handler
}

func newTestServer(a *assert.Assertions) *testServer {
	c, err := core.NewForTesting()
	a.NoError(err)

	_, err = c.Enrollment().RegisterAdmin(context.Background(), adminUsername, []byte(adminPassword))
	a.NoError(err)

	return &testServer{core: c, handler: server.NewRouter(c)}
}

func (s *testServer) do(method, path, body, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	return w
}

func basic(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func detail(a *assert.Assertions, w *httptest.ResponseRecorder) string {
	var body struct {
		Detail string `json:"detail"`
	}

	a.NoError(jsoniter.Unmarshal(w.Body.Bytes(), &body), w.Body.String())

	return body.Detail
}

func (s *testServer) enroll(a *assert.Assertions, username, password string) {
	w := s.do(http.MethodPost, "/api/enrollment/", `{"username":"`+username+`","password":"`+password+`"}`, "")
	a.Equal(http.StatusNoContent, w.Code, w.Body.String())
}

func (s *testServer) login(a *assert.Assertions, username, password string) string {
	w := s.do(http.MethodPost, "/api/session", `{"username":"`+username+`","password":"`+password+`"}`, "")
	a.Equal(http.StatusOK, w.Code, w.Body.String())

	var token struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	a.NoError(jsoniter.Unmarshal(w.Body.Bytes(), &token))
	a.NotEmpty(token.Token)
	a.True(token.ExpiresAt.After(time.Now()))

	return "Bearer " + token.Token
}

//---------------------------------------------------------------------------
// enrollment
//---------------------------------------------------------------------------

func TestEnrollThenLogin(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	s.enroll(a, username, password)

	bearer := s.login(a, username, password)

	w := s.do(http.MethodGet, "/api/push-settings/", "", bearer)
	a.Equal(http.StatusOK, w.Code)
	a.JSONEq(`{"active":false}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/push-settings/", "", basic(username, password))
	a.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/push-settings/", "", basic(username, "wrong"+password))
	a.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/session", `{"username":"`+username+`","password":"wrong"}`, "")
	a.Equal(http.StatusUnauthorized, w.Code)
}

func TestEnrollValidation(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	cases := []struct {
		body   string
		reason string
	}{
		{`[]`, "request body should be a JSON object"},
		{`{"password":"` + password + `"}`, "username should be a string"},
		{`{"username":"` + strings.Repeat("u", 16) + `","password":"` + password + `"}`, "username should be longer than 16 and at most 150 characters"},
		{`{"username":"` + strings.Repeat("u", 151) + `","password":"` + password + `"}`, "username should be longer than 16 and at most 150 characters"},
		{`{"username":"` + username + `","password":12}`, "password should be a string"},
		{`{"username":"` + username + `","password":"` + strings.Repeat("p", 16) + `"}`, "password should be longer than 16 and at most 256 characters"},
		{`{"username":"` + username + `","password":"` + strings.Repeat("p", 257) + `"}`, "password should be longer than 16 and at most 256 characters"},
	}

	for _, tc := range cases {
		w := s.do(http.MethodPost, "/api/enrollment", tc.body, "")
		a.Equal(http.StatusBadRequest, w.Code, tc.body)
		a.Equal(tc.reason, detail(a, w), tc.body)
	}

	_, err := s.core.AccountManager().AccountByUsername(context.Background(), username)
	a.Equal(account.ErrAccountNotFound, errors.Cause(err))
}

func TestEnrollTakenUsername(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	s.enroll(a, username, password)

	before, err := s.core.AccountManager().AccountByUsername(context.Background(), username)
	a.NoError(err)

	w := s.do(http.MethodPost, "/api/enrollment", `{"username":"`+username+`","password":"`+strings.Repeat("x", 20)+`"}`, "")
	a.Equal(http.StatusConflict, w.Code)
	a.Equal("username is already taken", detail(a, w))

	after, err := s.core.AccountManager().AccountByUsername(context.Background(), username)
	a.NoError(err)
	a.Equal(before, after)

	// the original password still works
	s.login(a, username, password)
}

func TestEnrollWhileAuthenticated(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	s.enroll(a, username, password)

	w := s.do(http.MethodPost, "/api/enrollment", `{"username":"another-`+username+`","password":"`+password+`"}`, basic(username, password))
	a.Equal(http.StatusBadRequest, w.Code)
	a.Equal("already authenticated", detail(a, w))
}

func TestEnrollmentMethods(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch} {
		w := s.do(method, "/api/enrollment", "", "")
		a.Equal(http.StatusMethodNotAllowed, w.Code, method)
	}
}

func TestUnenroll(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)
	ctx := context.Background()

	w := s.do(http.MethodDelete, "/api/enrollment", "", "")
	a.Equal(http.StatusUnauthorized, w.Code)

	s.enroll(a, username, password)
	bearer := s.login(a, username, password)

	acc, err := s.core.AccountManager().AccountByUsername(ctx, username)
	a.NoError(err)

	w = s.do(http.MethodDelete, "/api/enrollment", "", bearer)
	a.Equal(http.StatusNoContent, w.Code)

	_, err = s.core.AccountManager().AccountByID(ctx, acc.ID)
	a.Equal(account.ErrAccountNotFound, errors.Cause(err))

	_, err = s.core.DeviceManager().Registration(ctx, acc.ID)
	a.Equal(device.ErrRegistrationNotFound, errors.Cause(err))

	// the revoked session no longer authenticates
	w = s.do(http.MethodGet, "/api/push-settings", "", bearer)
	a.Equal(http.StatusUnauthorized, w.Code)

	// and the username is free again
	s.enroll(a, username, password)
}

//---------------------------------------------------------------------------
// push settings
//---------------------------------------------------------------------------

func TestPushSettingsProviderSwitch(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	s.enroll(a, username, password)
	auth := basic(username, password)

	w := s.do(http.MethodPost, "/api/push-settings", `{"service":"gcm","active":true,"registration_id":"1234-5678-abcdefgh"}`, auth)
	a.Equal(http.StatusOK, w.Code, w.Body.String())
	a.JSONEq(`{"active":true}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/push-settings", `{"service":"apns","active":true,"registration_id":"1234-5678-abcdefgh"}`, auth)
	a.Equal(http.StatusBadRequest, w.Code)
	a.Equal("cannot switch providers from gcm to apns", detail(a, w))

	acc, err := s.core.AccountManager().AccountByUsername(context.Background(), username)
	a.NoError(err)

	r, err := s.core.DeviceManager().Registration(context.Background(), acc.ID)
	a.NoError(err)
	a.Equal(device.GCM, r.Provider)
	a.Equal("1234-5678-abcdefgh", r.Token)
}

func TestPushSettingsValidation(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	s.enroll(a, username, password)
	auth := basic(username, password)

	w := s.do(http.MethodPost, "/api/push-settings", `{"service":"gcm","active":true}`, auth)
	a.Equal(http.StatusBadRequest, w.Code)
	a.Equal("registration_token is required if active is true", detail(a, w))

	w = s.do(http.MethodPost, "/api/push-settings", `{"active":true}`, auth)
	a.Equal(http.StatusBadRequest, w.Code)
	a.Equal("provider is required", detail(a, w))

	w = s.do(http.MethodPost, "/api/push-settings", `{"provider":"wns"}`, auth)
	a.Equal(http.StatusBadRequest, w.Code)
	a.Equal("provider should be one of [apns, gcm]", detail(a, w))

	// nothing changed
	w = s.do(http.MethodGet, "/api/push-settings", "", auth)
	a.Equal(http.StatusOK, w.Code)
	a.JSONEq(`{"active":false}`, w.Body.String())
}

func TestPushSettingsResubmission(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	s.enroll(a, username, password)
	auth := basic(username, password)

	payload := `{"provider":"apns","active":true,"registration_token":"abcdefgh-1234-5678","name":"phone"}`

	for i := 0; i < 2; i++ {
		w := s.do(http.MethodPost, "/api/push-settings", payload, auth)
		a.Equal(http.StatusOK, w.Code)
		a.JSONEq(`{"active":true}`, w.Body.String())
	}

	rs, err := s.core.DeviceManager().ActiveRegistrations(context.Background(), device.APNS)
	a.NoError(err)
	a.Len(rs, 1)
}

func TestPushSettingsMethods(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	s.enroll(a, username, password)

	w := s.do(http.MethodGet, "/api/push-settings", "", "")
	a.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/push-settings", `{"service":"gcm"}`, "")
	a.Equal(http.StatusUnauthorized, w.Code)

	for _, auth := range []string{"", basic(username, password)} {
		for _, method := range []string{http.MethodPut, http.MethodDelete} {
			w := s.do(method, "/api/push-settings", "", auth)
			a.Equal(http.StatusMethodNotAllowed, w.Code, method)
		}
	}
}

func TestDeviceByIDIsForbidden(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	s.enroll(a, username, password)

	for _, auth := range []string{"", basic(username, password), basic(adminUsername, adminPassword)} {
		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
			w := s.do(method, "/api/devices/1", "", auth)
			a.Equal(http.StatusForbidden, w.Code, method)
		}
	}
}

//---------------------------------------------------------------------------
// content
//---------------------------------------------------------------------------

func bulletin(title string, publishedAt time.Time) string {
	body, _ := jsoniter.MarshalToString(map[string]interface{}{
		"title":       title,
		"body":        "body of " + title,
		"publishedAt": publishedAt.UTC().Format(time.RFC3339),
	})

	return body
}

func titles(a *assert.Assertions, w *httptest.ResponseRecorder) []string {
	var items []struct {
		Title string `json:"title"`
	}

	a.NoError(jsoniter.Unmarshal(w.Body.Bytes(), &items), w.Body.String())

	ts := make([]string, len(items))
	for i, item := range items {
		ts[i] = item.Title
	}

	return ts
}

func TestContentWriteAccess(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	s.enroll(a, username, password)
	body := bulletin("news", time.Now().Add(-time.Hour))

	w := s.do(http.MethodPost, "/api/bulletins/", body, "")
	a.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/bulletins/", body, basic(username, password))
	a.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/bulletins/", body, basic(adminUsername, adminPassword))
	a.Equal(http.StatusCreated, w.Code, w.Body.String())

	for _, auth := range []string{"", basic(username, password), basic(adminUsername, adminPassword)} {
		w = s.do(http.MethodPut, "/api/bulletins/", body, auth)
		a.Equal(http.StatusMethodNotAllowed, w.Code)
	}

	rs, err := s.core.ContentManager().List(context.Background(), content.KBulletin, true)
	a.NoError(err)
	a.Len(rs, 1)
}

func TestBulletinListing(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	s.enroll(a, username, password)
	admin := basic(adminUsername, adminPassword)

	for _, b := range []string{
		bulletin("last month", time.Now().Add(-31*24*time.Hour)),
		bulletin("next month", time.Now().Add(31*24*time.Hour)),
		bulletin("today", time.Now().Add(-time.Minute)),
	} {
		w := s.do(http.MethodPost, "/api/bulletins/", b, admin)
		a.Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(http.MethodGet, "/api/bulletins/", "", "")
	a.Equal(http.StatusOK, w.Code)
	a.Equal([]string{"today", "last month"}, titles(a, w))

	w = s.do(http.MethodGet, "/api/bulletins/?all", "", "")
	a.Equal([]string{"today", "last month"}, titles(a, w))

	w = s.do(http.MethodGet, "/api/bulletins/?all", "", basic(username, password))
	a.Equal([]string{"today", "last month"}, titles(a, w))

	w = s.do(http.MethodGet, "/api/bulletins/?all", "", admin)
	a.Equal([]string{"next month", "today", "last month"}, titles(a, w))
}

func TestAgendaListing(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	admin := basic(adminUsername, adminPassword)
	today := time.Now().UTC().Truncate(24 * time.Hour)

	for _, item := range []map[string]interface{}{
		{"title": "last month", "type": "event", "start": today.Add(-31 * 24 * time.Hour), "end": today.Add(-24 * time.Hour)},
		{"title": "this month", "type": "event", "start": today, "end": today.Add(31 * 24 * time.Hour)},
		{"title": "next month", "type": "event", "start": today.Add(31 * 24 * time.Hour), "end": today.Add(62 * 24 * time.Hour)},
	} {
		body, err := jsoniter.MarshalToString(item)
		a.NoError(err)

		w := s.do(http.MethodPost, "/api/agendaItems/", body, admin)
		a.Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(http.MethodGet, "/api/agendaItems/", "", "")
	a.Equal(http.StatusOK, w.Code)
	a.Equal([]string{"next month", "this month"}, titles(a, w))

	w = s.do(http.MethodGet, "/api/agendaItems/?all", "", "")
	a.Equal([]string{"next month", "this month", "last month"}, titles(a, w))
}

func TestContentItemLifecycle(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	s.enroll(a, username, password)
	admin := basic(adminUsername, adminPassword)

	w := s.do(http.MethodPost, "/api/newsLetters/", `{"title":"march","documentUrl":"https://example.com/march.pdf","publishedAt":"2020-03-01T00:00:00Z"}`, admin)
	a.Equal(http.StatusCreated, w.Code, w.Body.String())

	var created content.Newsletter
	a.NoError(jsoniter.Unmarshal(w.Body.Bytes(), &created))
	a.NotZero(created.ID)

	item := "/api/newsletters/" + strconv.FormatInt(created.ID, 10)

	w = s.do(http.MethodGet, item, "", "")
	a.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPatch, item, `{"title":"march edition"}`, basic(username, password))
	a.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPatch, item, `{"title":"march edition"}`, admin)
	a.Equal(http.StatusOK, w.Code, w.Body.String())

	var patched content.Newsletter
	a.NoError(jsoniter.Unmarshal(w.Body.Bytes(), &patched))
	a.Equal("march edition", patched.Title)
	a.Equal(created.DocumentURL, patched.DocumentURL)

	w = s.do(http.MethodPut, item, `{"title":"march"}`, admin)
	a.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, item, "", "")
	a.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodDelete, item, "", admin)
	a.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, item, "", "")
	a.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/newsletters/abc", "", "")
	a.Equal(http.StatusNotFound, w.Code)
}

func TestContactOrderingAndETag(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	admin := basic(adminUsername, adminPassword)

	for _, body := range []string{
		`{"displayName":"office","email":"office@example.com","order":2,"detailText":"mon-fri"}`,
		`{"displayName":"principal","email":"principal@example.com","order":1,"detailText":"by appointment"}`,
	} {
		w := s.do(http.MethodPost, "/api/contactItems/", body, admin)
		a.Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(http.MethodGet, "/api/contactItems/", "", "")
	a.Equal(http.StatusOK, w.Code)

	var contacts []content.Contact
	a.NoError(jsoniter.Unmarshal(w.Body.Bytes(), &contacts))
	if a.Len(contacts, 2) {
		a.Equal("principal", contacts[0].DisplayName)
		a.Equal("office", contacts[1].DisplayName)
	}

	etag := w.Header().Get("ETag")
	a.NotEmpty(etag)

	req := httptest.NewRequest(http.MethodGet, "/api/contactItems/", nil)
	req.Header.Set("If-None-Match", etag)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	a.Equal(http.StatusNotModified, rec.Code)
	a.Empty(rec.Body.String())

	w = s.do(http.MethodGet, "/api/contactItems/?pretty", "", "")
	a.Equal(http.StatusOK, w.Code)
	a.Contains(w.Body.String(), "\n  ")
}

func TestTimeline(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	admin := basic(adminUsername, adminPassword)

	w := s.do(http.MethodPost, "/api/bulletins/", bulletin("published", time.Now().Add(-time.Hour)), admin)
	a.Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/api/bulletins/", bulletin("scheduled", time.Now().Add(time.Hour)), admin)
	a.Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/api/timeline/", "", "")
	a.Equal(http.StatusOK, w.Code)
	a.Equal([]string{"published"}, titles(a, w))

	w = s.do(http.MethodGet, "/api/timeline/?all", "", admin)
	a.Equal([]string{"scheduled", "published"}, titles(a, w))

	w = s.do(http.MethodPost, "/api/timeline/", "", admin)
	a.Equal(http.StatusMethodNotAllowed, w.Code)
}

func TestRequestID(t *testing.T) {
	a := assert.New(t)
	s := newTestServer(a)

	w := s.do(http.MethodGet, "/api/bulletins", "", "")
	a.NotEmpty(w.Header().Get(server.HeaderRequestID))

	w = s.do(http.MethodGet, "/nowhere", "", "")
	a.Equal(http.StatusNotFound, w.Code)
	a.NotEmpty(w.Header().Get(server.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/api/bulletins", nil)
	req.Header.Set(server.HeaderRequestID, "client-supplied")

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	a.Equal("client-supplied", rec.Header().Get(server.HeaderRequestID))
}
