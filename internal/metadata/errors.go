package metadata

import (
	"errors"
	"fmt"
)

// Common errors returned by the provider transport.
var (
	// ErrNotFound indicates the provider has no record for the identifier.
	ErrNotFound = errors.New("metadata record not found")

	// ErrRateLimited indicates the provider rate limit has been exceeded.
	ErrRateLimited = errors.New("metadata provider rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error contacting metadata provider")

	// ErrInvalidResponse indicates an unexpected provider response.
	ErrInvalidResponse = errors.New("invalid response from metadata provider")
)

// APIError represents an error response from a metadata provider.
type APIError struct {
	StatusCode int
	Provider   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
