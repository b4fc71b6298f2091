package device

import (
	"fmt"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
)

// Update is an already type-checked push settings submission
// NOTE: nil token or name means "keep the stored value"
type Update struct {
	Provider Provider
	Active   bool
	Token    *string
	Name     *string
}

// ParseUpdate reads a JSON request body into an Update, checking fields
// in a fixed order so that any given body is always rejected for the same reason
//
// accepted keys: service (or provider), active, registration_id
// (or registration_token) and name; null counts as absent
func ParseUpdate(body []byte) (u Update, err error) {
	fields := make(map[string]interface{})

	json := jsoniter.ConfigCompatibleWithStandardLibrary
	if err = json.Unmarshal(body, &fields); err != nil {
		return u, invalid("request body should be a JSON object")
	}

	// provider
	v, ok := lookup(fields, "service", "provider")
	if !ok {
		return u, invalid("provider is required")
	}

	s, isString := v.(string)
	if !isString || !Provider(s).IsValid() {
		return u, invalid("provider should be one of " + providerList())
	}

	u.Provider = Provider(s)

	// active flag
	if v, ok = lookup(fields, "active"); ok {
		active, isBool := v.(bool)
		if !isBool {
			return u, invalid("active should be a boolean")
		}

		u.Active = active
	}

	// registration token
	if v, ok = lookup(fields, "registration_id", "registration_token"); ok {
		token, isString := v.(string)
		if !isString {
			return u, invalid("registration_token should be a string")
		}

		if err = checkToken(token); err != nil {
			return u, err
		}

		u.Token = &token
	}

	// display name
	if v, ok = lookup(fields, "name"); ok {
		name, isString := v.(string)
		if !isString {
			return u, invalid("name should be a string")
		}

		if err = checkName(name); err != nil {
			return u, err
		}

		u.Name = &name
	}

	if err = checkActiveToken(u); err != nil {
		return u, err
	}

	return u, nil
}

// Validate repeats the value checks of ParseUpdate in the same order,
// for updates that were constructed directly
func (u Update) Validate() error {
	if u.Provider == "" {
		return invalid("provider is required")
	}

	if !u.Provider.IsValid() {
		return invalid("provider should be one of " + providerList())
	}

	if u.Token != nil {
		if err := checkToken(*u.Token); err != nil {
			return err
		}
	}

	if u.Name != nil {
		if err := checkName(*u.Name); err != nil {
			return err
		}
	}

	return checkActiveToken(u)
}

// Apply returns a registration with this update applied on top of it
func (u Update) Apply(r Registration) Registration {
	r.Provider = u.Provider
	r.Active = u.Active

	if u.Token != nil {
		r.Token = *u.Token
	}

	if u.Name != nil {
		r.Name = *u.Name
	}

	return r
}

func lookup(fields map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			return v, true
		}
	}

	return nil, false
}

func checkToken(token string) error {
	if n := utf8.RuneCountInString(token); n <= MinTokenLength || n > MaxTokenLength {
		return invalid(fmt.Sprintf(
			"registration_token should be longer than %d and at most %d characters",
			MinTokenLength,
			MaxTokenLength,
		))
	}

	return nil
}

func checkName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return invalid(fmt.Sprintf("name should be at most %d characters", MaxNameLength))
	}

	return nil
}

func checkActiveToken(u Update) error {
	if u.Active && u.Token == nil {
		return invalid("registration_token is required if active is true")
	}

	return nil
}
