package device_test

import (
	"strings"
	"testing"

	"github.com/sebastiaanschool/schoolhub/pkg/device"
	"github.com/stretchr/testify/assert"
)

func TestParseUpdate(t *testing.T) {
	a := assert.New(t)

	longToken := strings.Repeat("t", 257)
	longName := strings.Repeat("n", 256)

	rejected := []struct {
		body   string
		reason string
	}{
		{`[]`, "request body should be a JSON object"},
		{`{}`, "provider is required"},
		{`{"service": null, "active": 5}`, "provider is required"},
		{`{"service": "wns"}`, "provider should be one of [apns, gcm]"},
		{`{"service": 1, "active": "yes"}`, "provider should be one of [apns, gcm]"},
		{`{"service": "gcm", "active": "yes", "registration_id": 5}`, "active should be a boolean"},
		{`{"service": "gcm", "registration_id": 5, "name": 5}`, "registration_token should be a string"},
		{`{"service": "gcm", "registration_id": "1234567890123456"}`, "registration_token should be longer than 16 and at most 256 characters"},
		{`{"service": "gcm", "registration_id": "` + longToken + `"}`, "registration_token should be longer than 16 and at most 256 characters"},
		{`{"service": "gcm", "registration_id": "12345678901234567", "name": false}`, "name should be a string"},
		{`{"service": "gcm", "name": "` + longName + `"}`, "name should be at most 255 characters"},
		{`{"service": "gcm", "active": true}`, "registration_token is required if active is true"},
		{`{"service": "gcm", "active": true, "registration_id": null}`, "registration_token is required if active is true"},
	}

	for _, c := range rejected {
		_, err := device.ParseUpdate([]byte(c.body))
		if a.Error(err, c.body) {
			a.True(device.IsValidationError(err), c.body)
			a.Equal(c.reason, err.Error(), c.body)
		}
	}

	// full body
	u, err := device.ParseUpdate([]byte(`{"service":"gcm","active":true,"registration_id":"1234-5678-abcdefgh","name":"phone"}`))
	a.NoError(err)
	a.Equal(device.GCM, u.Provider)
	a.True(u.Active)
	a.Equal("1234-5678-abcdefgh", *u.Token)
	a.Equal("phone", *u.Name)

	// aliases, absent active defaults to false
	u, err = device.ParseUpdate([]byte(`{"provider":"apns","registration_token":"abcdefghijklmnopq"}`))
	a.NoError(err)
	a.Equal(device.APNS, u.Provider)
	a.False(u.Active)
	a.Equal("abcdefghijklmnopq", *u.Token)
	a.Nil(u.Name)

	// null means absent
	u, err = device.ParseUpdate([]byte(`{"service":"apns","active":null,"registration_id":null,"name":null}`))
	a.NoError(err)
	a.False(u.Active)
	a.Nil(u.Token)
	a.Nil(u.Name)

	// lengths are counted in characters
	token := strings.Repeat("ü", 17)
	u, err = device.ParseUpdate([]byte(`{"service":"apns","registration_id":"` + token + `"}`))
	a.NoError(err)
	a.Equal(token, *u.Token)
}

func TestUpdateValidate(t *testing.T) {
	a := assert.New(t)

	short := "short"
	token := "1234-5678-abcdefgh"

	a.EqualError(device.Update{}.Validate(), "provider is required")
	a.EqualError(device.Update{Provider: "wns"}.Validate(), "provider should be one of [apns, gcm]")
	a.EqualError(
		device.Update{Provider: device.GCM, Token: &short}.Validate(),
		"registration_token should be longer than 16 and at most 256 characters",
	)
	a.EqualError(
		device.Update{Provider: device.GCM, Active: true}.Validate(),
		"registration_token is required if active is true",
	)
	a.NoError(device.Update{Provider: device.GCM, Active: true, Token: &token}.Validate())
}
