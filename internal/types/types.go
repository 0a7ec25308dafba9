package types

import (
	"context"
	"net/http"
	"time"
)

// Logger interface for logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxRetries int           `json:"maxRetries"`
	RetryWait  time.Duration `json:"retryWait"`
	MaxWait    time.Duration `json:"maxWait"`
}

// Hooks provides lifecycle hooks for requests
type Hooks struct {
	OnRequest  func(ctx context.Context, req *http.Request)
	OnResponse func(ctx context.Context, resp *http.Response, duration time.Duration)
	OnError    func(ctx context.Context, err error)
}

// User is the profile record the backend returns for the authenticated account
type User struct {
	ID              int64  `json:"id"`
	Email           string `json:"email,omitempty"`
	Username        string `json:"username,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	FullName        string `json:"full_name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	UserType        string `json:"user_type,omitempty"`
	IsSeller        bool   `json:"is_seller,omitempty"`
	IsBuyer         bool   `json:"is_buyer,omitempty"`
	IsEmailVerified bool   `json:"is_email_verified,omitempty"`
	IsActive        bool   `json:"is_active,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// User types
const (
	UserTypeBuyer  = "buyer"
	UserTypeSeller = "seller"
	UserTypeAdmin  = "admin"
)
