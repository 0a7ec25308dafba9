package constructcycle

import (
	"github.com/eshaffer321/constructcycle-go/internal/types"
	"github.com/pkg/errors"
)

// APIError is a non-2xx backend response. Use its accessors, or UserMessage,
// to pick the text shown to a user.
type APIError = types.APIError

var (
	// ErrNotAuthenticated matches 401 responses
	ErrNotAuthenticated = types.ErrNotAuthenticated

	// ErrForbidden matches 403 responses
	ErrForbidden = types.ErrForbidden

	// ErrNotFound matches 404 responses
	ErrNotFound = types.ErrNotFound

	// ErrRateLimited matches 429 responses
	ErrRateLimited = types.ErrRateLimited

	// ErrServerError matches 5xx responses
	ErrServerError = types.ErrServerError

	// ErrMalformedResponse is returned when a body is not valid JSON
	ErrMalformedResponse = types.ErrMalformedResponse
)

// AsAPIError returns the APIError in err's chain, if any
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status of an API error, or 0 for transport
// failures and other errors
func StatusCode(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.StatusCode
	}
	return 0
}

// UserMessage returns the message to show for err: the backend's text for API
// errors, fallback for everything else.
func UserMessage(err error, fallback string) string {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.UserMessage(fallback)
	}
	return fallback
}

// IsAuthError checks if error is authentication related
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated)
}

// IsRetryable checks if error is retryable
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServerError) {
		return true
	}
	return false
}
