package util

import (
	"flag"
	"os"
	"strings"
)

func IsTestMode() bool {
	return flag.Lookup("test.v") != nil
}

// TestDSN returns a test database DSN taken from a given environment
// variable, an empty result means that database-backed tests must be skipped
func TestDSN(env string) string {
	if !IsTestMode() {
		return ""
	}

	return strings.TrimSpace(os.Getenv(env))
}
