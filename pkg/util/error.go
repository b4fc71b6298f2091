package util

// HTTPError represents a common error wrapper to be used
// as an HTTP error response
type HTTPError struct {
	Detail string `json:"detail"`
}
