package types

import (
	"errors"
	"time"
)

const (
	// DefaultBaseURL is the default ConstructCycle API base URL
	DefaultBaseURL = "http://localhost:8000/api/v1"

	// DefaultTimeout is the default HTTP client timeout. Zero means the
	// caller's context is the only deadline.
	DefaultTimeout time.Duration = 0

	// UserAgent is the user agent string
	UserAgent = "constructcycle-go/1.0.0"

	// TokenKey is the storage key holding the auth token
	TokenKey = "constructcycle_token"

	// UserKey is the storage key holding the JSON encoded user profile
	UserKey = "constructcycle_user"

	// DefaultLoginPath is where logout sends the user
	DefaultLoginPath = "/login/"
)

// Common errors
var (
	// ErrNotAuthenticated is returned when authentication is required or rejected (401)
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrForbidden is returned when the backend refuses an authenticated request (403)
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when resource not found (404)
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited is returned when rate limited (429)
	ErrRateLimited = errors.New("rate limited")

	// ErrServerError is returned for server errors (5xx)
	ErrServerError = errors.New("server error")

	// ErrMalformedResponse is returned when a response body is not valid JSON
	ErrMalformedResponse = errors.New("malformed response")
)
