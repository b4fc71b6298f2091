package device_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sebastiaanschool/schoolhub/pkg/device"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// countingStore counts the writes reaching the underlying store
type countingStore struct {
	device.Store
	upserts int
}

func (s *countingStore) UpsertRegistration(ctx context.Context, r device.Registration) (device.Registration, error) {
	s.upserts++
	return s.Store.UpsertRegistration(ctx, r)
}

func newTestManager(a *assert.Assertions, s device.Store) *device.Manager {
	m, err := device.NewManager(s)
	a.NoError(err)
	a.NotNil(m)
	a.NoError(m.SetLogger(zap.NewNop()))

	return m
}

func parse(a *assert.Assertions, body string) device.Update {
	u, err := device.ParseUpdate([]byte(body))
	a.NoError(err)

	return u
}

func TestNewManager(t *testing.T) {
	a := assert.New(t)

	m, err := device.NewManager(nil)
	a.Equal(device.ErrNilStore, err)
	a.Nil(m)
}

func TestSettingsWithoutRegistration(t *testing.T) {
	a := assert.New(t)
	m := newTestManager(a, device.NewMemoryStore())

	s, err := m.Settings(context.Background(), uuid.New())
	a.NoError(err)
	a.False(s.Active)
}

func TestUpdateSettingsCreatesRegistration(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	m := newTestManager(a, device.NewMemoryStore())
	accountID := uuid.New()

	s, err := m.UpdateSettings(ctx, accountID, parse(a, `{"service":"gcm","active":true,"registration_id":"1234-5678-abcdefgh","name":"phone"}`))
	a.NoError(err)
	a.True(s.Active)

	r, err := m.Registration(ctx, accountID)
	a.NoError(err)
	a.Equal(device.GCM, r.Provider)
	a.True(r.Active)
	a.Equal("1234-5678-abcdefgh", r.Token)
	a.Equal("phone", r.Name)

	s, err = m.Settings(ctx, accountID)
	a.NoError(err)
	a.True(s.Active)
}

func TestUpdateSettingsRejectsProviderSwitch(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	store := &countingStore{Store: device.NewMemoryStore()}
	m := newTestManager(a, store)
	accountID := uuid.New()

	_, err := m.UpdateSettings(ctx, accountID, parse(a, `{"service":"gcm","active":true,"registration_id":"1234-5678-abcdefgh"}`))
	a.NoError(err)
	a.Equal(1, store.upserts)

	_, err = m.UpdateSettings(ctx, accountID, parse(a, `{"service":"apns","active":true,"registration_id":"1234-5678-abcdefgh"}`))
	a.Error(err)
	a.True(device.IsValidationError(err))
	a.Equal("cannot switch providers from gcm to apns", err.Error())
	a.Equal(1, store.upserts)

	r, err := m.Registration(ctx, accountID)
	a.NoError(err)
	a.Equal(device.GCM, r.Provider)
}

func TestUpdateSettingsIsIdempotent(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	store := &countingStore{Store: device.NewMemoryStore()}
	m := newTestManager(a, store)
	accountID := uuid.New()

	body := `{"service":"apns","active":true,"registration_id":"abcdefghijklmnopqrstu"}`

	first, err := m.UpdateSettings(ctx, accountID, parse(a, body))
	a.NoError(err)

	second, err := m.UpdateSettings(ctx, accountID, parse(a, body))
	a.NoError(err)

	a.Equal(first, second)
	a.Equal(1, store.upserts)

	active, err := m.ActiveRegistrations(ctx, device.APNS)
	a.NoError(err)
	a.Len(active, 1)
}

func TestUpdateSettingsRetainsToken(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	m := newTestManager(a, device.NewMemoryStore())
	accountID := uuid.New()

	_, err := m.UpdateSettings(ctx, accountID, parse(a, `{"service":"gcm","active":true,"registration_id":"1234-5678-abcdefgh","name":"phone"}`))
	a.NoError(err)

	// deactivating without a token keeps the token and the name
	s, err := m.UpdateSettings(ctx, accountID, parse(a, `{"service":"gcm","active":false}`))
	a.NoError(err)
	a.False(s.Active)

	r, err := m.Registration(ctx, accountID)
	a.NoError(err)
	a.False(r.Active)
	a.Equal("1234-5678-abcdefgh", r.Token)
	a.Equal("phone", r.Name)

	// a new token and name replace the old ones
	_, err = m.UpdateSettings(ctx, accountID, parse(a, `{"service":"gcm","active":true,"registration_id":"8765-4321-hgfedcba","name":"tablet"}`))
	a.NoError(err)

	r, err = m.Registration(ctx, accountID)
	a.NoError(err)
	a.True(r.Active)
	a.Equal("8765-4321-hgfedcba", r.Token)
	a.Equal("tablet", r.Name)
}

func TestUpdateSettingsActiveWithoutTokenMutatesNothing(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	store := &countingStore{Store: device.NewMemoryStore()}
	m := newTestManager(a, store)
	accountID := uuid.New()

	_, err := m.UpdateSettings(ctx, accountID, device.Update{Provider: device.GCM, Active: true})
	a.Error(err)
	a.Equal("registration_token is required if active is true", err.Error())
	a.Equal(0, store.upserts)

	_, err = m.Registration(ctx, accountID)
	a.Equal(device.ErrRegistrationNotFound, errors.Cause(err))
}

func TestPlaceholderBindsToFirstProvider(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	m := newTestManager(a, device.NewMemoryStore())
	accountID := uuid.New()

	placeholder, err := m.CreatePlaceholder(ctx, accountID)
	a.NoError(err)
	a.True(placeholder.IsPlaceholder())
	a.False(placeholder.Active)

	s, err := m.Settings(ctx, accountID)
	a.NoError(err)
	a.False(s.Active)

	_, err = m.UpdateSettings(ctx, accountID, parse(a, `{"service":"apns","active":true,"registration_id":"abcdefghijklmnopqrstu"}`))
	a.NoError(err)

	r, err := m.Registration(ctx, accountID)
	a.NoError(err)
	a.Equal(device.APNS, r.Provider)
	a.Equal(placeholder.CreatedAt, r.CreatedAt)

	_, err = m.UpdateSettings(ctx, accountID, parse(a, `{"service":"gcm"}`))
	a.EqualError(err, "cannot switch providers from apns to gcm")
}

func TestDeleteRegistration(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()
	m := newTestManager(a, device.NewMemoryStore())
	accountID := uuid.New()

	_, err := m.CreatePlaceholder(ctx, accountID)
	a.NoError(err)

	a.NoError(m.DeleteRegistration(ctx, accountID))
	a.NoError(m.DeleteRegistration(ctx, accountID))

	_, err = m.Registration(ctx, accountID)
	a.Equal(device.ErrRegistrationNotFound, errors.Cause(err))
}
