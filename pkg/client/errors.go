package client

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a failure reported by the platform with an HTTP status.
// The message carries the backend's error field when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// NetworkError represents a transport-level fault where no response was
// received. It is deliberately distinct from APIError so callers never
// mistake a connectivity problem for a server-side failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthError is the expected-failure result of login and signup. The message
// is always suitable for direct display to the user.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a 401 response
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports whether err is a 403 response
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

// IsConflict reports whether err is a 409 response
func IsConflict(err error) bool {
	return statusOf(err) == http.StatusConflict
}

// IsRateLimited reports whether err is a 429 response
func IsRateLimited(err error) bool {
	return statusOf(err) == http.StatusTooManyRequests
}

// IsNetworkError reports whether err is a transport fault with no response
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
