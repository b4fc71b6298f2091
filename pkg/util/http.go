package util

import (
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteResponseErrorTo is a helper function that writes an error to
// a supplied http.ResponseWriter
func WriteResponseErrorTo(w http.ResponseWriter, detail string, code int) {
	payload, err := json.Marshal(HTTPError{Detail: detail})
	if err != nil {
		http.Error(w, "failed to marshal error response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(code)
	w.Write(payload)
}
