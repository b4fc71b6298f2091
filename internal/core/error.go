package core

import "github.com/pkg/errors"

// errors
var (
	ErrNilCore  = errors.New("core is nil")
	ErrNilStore = errors.New("store is nil")
	ErrNilCache = errors.New("session cache is nil")
)
