package util

import (
	"strconv"

	"github.com/cespare/xxhash"
)

// HashKey produces a `xxhash` hash from a given byte slice
// NOTE: https://github.com/cespare/xxhash for more details
func HashKey(payload []byte) uint64 {
	return xxhash.Sum64(payload)
}

// ETag returns a quoted entity tag for a response payload
func ETag(payload []byte) string {
	return strconv.Quote(strconv.FormatUint(HashKey(payload), 36))
}
