package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/eshaffer321/constructcycle-go/internal/session"
	"github.com/eshaffer321/constructcycle-go/internal/transport"
	"github.com/eshaffer321/constructcycle-go/internal/types"
	"github.com/pkg/errors"
)

const (
	registerEndpoint           = "/auth/register/"
	loginEndpoint              = "/auth/login/"
	logoutEndpoint             = "/auth/logout/"
	profileEndpoint            = "/auth/profile/"
	changePasswordEndpoint     = "/auth/change-password/"
	verifyEmailEndpoint        = "/auth/verify-email/"
	resendVerificationEndpoint = "/auth/resend-verification/"
)

// Doer performs API requests
type Doer interface {
	Do(ctx context.Context, req *transport.Request, result interface{}) error
}

// Navigator receives the page change a logout implies
type Navigator interface {
	Navigate(path string)
}

// Response is the body of register, login and verify-email calls. Register
// may answer with only success/message/errors when verification is pending.
type Response struct {
	Token   string          `json:"token,omitempty"`
	User    *types.User     `json:"user,omitempty"`
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Errors  json.RawMessage `json:"errors,omitempty"`
}

// StatusResponse acknowledges calls that do not return a resource
type StatusResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Errors  json.RawMessage `json:"errors,omitempty"`
}

// RegisterParams is the registration form
type RegisterParams struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	UserType        string `json:"user_type"`
}

// UpdateProfileParams carries the profile fields to change
type UpdateProfileParams struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Username  *string `json:"username,omitempty"`
	UserType  *string `json:"user_type,omitempty"`
}

// ChangePasswordParams is the change-password form
type ChangePasswordParams struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// Service owns session lifecycle transitions: it writes the store after a
// successful login or registration and clears it on logout.
type Service struct {
	doer      Doer
	store     *session.Store
	logger    types.Logger
	navigator Navigator
	loginPath string
}

// NewService creates a new auth service
func NewService(doer Doer, store *session.Store, logger types.Logger) *Service {
	return &Service{
		doer:      doer,
		store:     store,
		logger:    logger,
		loginPath: types.DefaultLoginPath,
	}
}

// SetNavigator installs the collaborator told about logout redirects
func (s *Service) SetNavigator(n Navigator, loginPath string) {
	s.navigator = n
	if loginPath != "" {
		s.loginPath = loginPath
	}
}

// Register creates an account. When the backend returns a token the session
// is stored; otherwise the store is left untouched.
func (s *Service) Register(ctx context.Context, params *RegisterParams) (*Response, error) {
	if params == nil {
		params = &RegisterParams{}
	}

	var resp Response
	if err := s.post(ctx, registerEndpoint, params, &resp); err != nil {
		return nil, err
	}

	if err := s.storeSession(ctx, &resp); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Registration accepted", "email", params.Email, "session", resp.Token != "")
	}
	return &resp, nil
}

// Login authenticates with email and password
func (s *Service) Login(ctx context.Context, email, password string) (*Response, error) {
	reqBody := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	if s.logger != nil {
		s.logger.Debug("Login request", "email", email)
	}

	var resp Response
	if err := s.post(ctx, loginEndpoint, reqBody, &resp); err != nil {
		return nil, err
	}

	if err := s.storeSession(ctx, &resp); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Login successful", "email", email)
	}
	return &resp, nil
}

// VerifyEmail submits the emailed verification code. The backend logs the
// user in on success, so a returned token starts a session.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) (*Response, error) {
	reqBody := map[string]interface{}{
		"email": email,
		"code":  code,
	}

	var resp Response
	if err := s.post(ctx, verifyEmailEndpoint, reqBody, &resp); err != nil {
		return nil, err
	}

	if err := s.storeSession(ctx, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResendVerification asks the backend to email a fresh code
func (s *Service) ResendVerification(ctx context.Context, email string) (*StatusResponse, error) {
	var resp StatusResponse
	if err := s.post(ctx, resendVerificationEndpoint, map[string]interface{}{"email": email}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout clears the stored session and redirects to the login page. It never
// contacts the backend and is safe to call repeatedly.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("Logged out")
	}

	if s.navigator != nil {
		s.navigator.Navigate(s.loginPath)
	}
	return nil
}

// LogoutIfCurrent logs out only while token is still the stored one. A
// session that was already cleared or replaced by a newer login is left
// alone, so a late answer to an old request cannot end it. When the store
// cannot be read the logout happens anyway.
func (s *Service) LogoutIfCurrent(ctx context.Context, token string) (bool, error) {
	current, err := s.store.Token(ctx)
	if err == nil && current != token {
		if s.logger != nil {
			s.logger.Debug("Session already changed, skipping logout")
		}
		return false, nil
	}
	return true, s.Logout(ctx)
}

// Revoke deletes the token on the backend, then logs out locally whatever
// the backend said. The backend error, if any, is returned.
func (s *Service) Revoke(ctx context.Context) error {
	token, err := s.store.Token(ctx)
	if err != nil {
		return err
	}

	revokeErr := s.post(ctx, logoutEndpoint, nil, nil)
	if revokeErr != nil && s.logger != nil {
		s.logger.Warn("Token revocation failed", "error", revokeErr)
	}

	if _, err := s.LogoutIfCurrent(ctx, token); err != nil {
		return err
	}
	return revokeErr
}

// Profile fetches the current user. It neither updates the cache nor logs
// out on failure; that policy belongs to the caller.
func (s *Service) Profile(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := s.doer.Do(ctx, &transport.Request{Method: http.MethodGet, Path: profileEndpoint}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile patches the profile and replaces the cached user with the
// full response. Cached fields missing from the response are lost.
func (s *Service) UpdateProfile(ctx context.Context, params *UpdateProfileParams) (*types.User, error) {
	if params == nil {
		params = &UpdateProfileParams{}
	}

	var user types.User
	req := &transport.Request{Method: http.MethodPatch, Path: profileEndpoint, Body: params}
	if err := s.doer.Do(ctx, req, &user); err != nil {
		return nil, err
	}

	if err := s.store.SetUser(ctx, &user); err != nil {
		return nil, errors.Wrap(err, "failed to cache updated profile")
	}
	return &user, nil
}

// ChangePassword submits the change-password form. The session is not touched.
func (s *Service) ChangePassword(ctx context.Context, params *ChangePasswordParams) (*StatusResponse, error) {
	if params == nil {
		params = &ChangePasswordParams{}
	}

	var resp StatusResponse
	if err := s.post(ctx, changePasswordEndpoint, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSession returns the stored session
func (s *Service) GetSession(ctx context.Context) (*session.Session, error) {
	return s.store.Session(ctx)
}

// CurrentUser returns the cached profile, or nil
func (s *Service) CurrentUser(ctx context.Context) (*types.User, error) {
	return s.store.User(ctx)
}

// CacheUser overwrites the cached profile
func (s *Service) CacheUser(ctx context.Context, user *types.User) error {
	return s.store.SetUser(ctx, user)
}

// IsLoggedIn reports whether a token is stored
func (s *Service) IsLoggedIn(ctx context.Context) bool {
	return s.store.IsLoggedIn(ctx)
}

func (s *Service) post(ctx context.Context, path string, body, result interface{}) error {
	return s.doer.Do(ctx, &transport.Request{Method: http.MethodPost, Path: path, Body: body}, result)
}

func (s *Service) storeSession(ctx context.Context, resp *Response) error {
	if resp.Token == "" {
		return nil
	}
	if err := s.store.SetSession(ctx, resp.Token, resp.User); err != nil {
		return errors.Wrap(err, "failed to store session")
	}
	return nil
}
