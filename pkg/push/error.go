package push

import "github.com/pkg/errors"

var (
	ErrNilRegistrations = errors.New("registration source is nil")
	ErrNilClient        = errors.New("sns client is nil")
	ErrNoPlatforms      = errors.New("no platform application is configured")
	ErrEmptyRegion      = errors.New("aws region is empty")
)
