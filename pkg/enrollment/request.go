package enrollment

import (
	"fmt"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
)

// credential limits, counted in characters
const (
	MinUsernameLength = 16
	MaxUsernameLength = 150
	MinPasswordLength = 16
	MaxPasswordLength = 256
)

// Request is a type-checked self-enrollment request
type Request struct {
	Username string
	Password string
}

// ParseRequest reads a JSON request body, the first failing check decides the reason
func ParseRequest(body []byte) (req Request, err error) {
	fields := make(map[string]interface{})

	json := jsoniter.ConfigCompatibleWithStandardLibrary
	if err = json.Unmarshal(body, &fields); err != nil {
		return req, &ValidationError{"request body should be a JSON object"}
	}

	username, ok := fields["username"].(string)
	if !ok {
		return req, &ValidationError{"username should be a string"}
	}

	if err = checkLength("username", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return req, err
	}

	password, ok := fields["password"].(string)
	if !ok {
		return req, &ValidationError{"password should be a string"}
	}

	if err = checkLength("password", password, MinPasswordLength, MaxPasswordLength); err != nil {
		return req, err
	}

	return Request{Username: username, Password: password}, nil
}

// Validate repeats the length checks of ParseRequest
func (r Request) Validate() error {
	if err := checkLength("username", r.Username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	return checkLength("password", r.Password, MinPasswordLength, MaxPasswordLength)
}

func checkLength(field, value string, min, max int) error {
	if n := utf8.RuneCountInString(value); n <= min || n > max {
		return &ValidationError{fmt.Sprintf("%s should be longer than %d and at most %d characters", field, min, max)}
	}

	return nil
}
