package session

import (
	"context"
	"encoding/json"

	"github.com/eshaffer321/constructcycle-go/internal/types"
	"github.com/pkg/errors"
)

// Keys names the two storage entries a session occupies
type Keys struct {
	Token string
	User  string
}

// DefaultKeys are the storage keys the web frontend uses
var DefaultKeys = Keys{
	Token: types.TokenKey,
	User:  types.UserKey,
}

// Session is the client-held pair of token and cached profile. An empty
// Token means logged out; User may be stale.
type Session struct {
	Token string      `json:"token"`
	User  *types.User `json:"user,omitempty"`
}

// Store reads and writes the session entries of a Storage
type Store struct {
	storage Storage
	keys    Keys
	logger  types.Logger
}

// NewStore wraps storage. Empty key names fall back to DefaultKeys.
func NewStore(storage Storage, keys Keys, logger types.Logger) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if keys.Token == "" {
		keys.Token = DefaultKeys.Token
	}
	if keys.User == "" {
		keys.User = DefaultKeys.User
	}
	return &Store{
		storage: storage,
		keys:    keys,
		logger:  logger,
	}
}

// SetSession stores token and user as two independent writes. A nil user
// removes the cached profile.
func (s *Store) SetSession(ctx context.Context, token string, user *types.User) error {
	if err := s.storage.Set(ctx, s.keys.Token, token); err != nil {
		return errors.Wrap(err, "failed to store token")
	}
	return s.SetUser(ctx, user)
}

// SetUser replaces the cached profile
func (s *Store) SetUser(ctx context.Context, user *types.User) error {
	if user == nil {
		if err := s.storage.Delete(ctx, s.keys.User); err != nil {
			return errors.Wrap(err, "failed to remove user")
		}
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "failed to marshal user")
	}
	if err := s.storage.Set(ctx, s.keys.User, string(data)); err != nil {
		return errors.Wrap(err, "failed to store user")
	}
	return nil
}

// Token returns the stored token, or "" when logged out
func (s *Store) Token(ctx context.Context) (string, error) {
	token, _, err := s.storage.Get(ctx, s.keys.Token)
	if err != nil {
		return "", errors.Wrap(err, "failed to read token")
	}
	return token, nil
}

// User returns the cached profile. Missing or unparseable data yields nil
// without an error; only storage failures are reported.
func (s *Store) User(ctx context.Context) (*types.User, error) {
	raw, found, err := s.storage.Get(ctx, s.keys.User)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read user")
	}
	if !found || raw == "" {
		return nil, nil
	}

	var user *types.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		if s.logger != nil {
			s.logger.Warn("Ignoring unreadable cached user", "error", err)
		}
		return nil, nil
	}
	return user, nil
}

// Session returns both entries
func (s *Store) Session(ctx context.Context) (*Session, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.User(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// IsLoggedIn reports whether a token is stored. Storage failures count as
// logged out.
func (s *Store) IsLoggedIn(ctx context.Context) bool {
	token, err := s.Token(ctx)
	return err == nil && token != ""
}

// Clear removes both entries. Clearing an empty store is a no-op. Both
// deletes are attempted; the first failure is returned.
func (s *Store) Clear(ctx context.Context) error {
	var firstErr error
	if err := s.storage.Delete(ctx, s.keys.Token); err != nil {
		firstErr = errors.Wrap(err, "failed to remove token")
	}
	if err := s.storage.Delete(ctx, s.keys.User); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "failed to remove user")
	}
	return firstErr
}
