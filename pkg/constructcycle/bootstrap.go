package constructcycle

import (
	"context"
)

// VerifySession confirms a stored session on startup. Without a token it
// returns ErrNotAuthenticated and changes nothing. With one it fetches the
// profile: on success the cached user is replaced and returned, on any
// failure the session is logged out and the error returned. A session the
// 401 handler already cleared is not logged out a second time.
func (c *Client) VerifySession(ctx context.Context) (*User, error) {
	token, err := c.store.Token(ctx)
	if err != nil || token == "" {
		return nil, ErrNotAuthenticated
	}

	user, err := c.auth.Profile(ctx)
	if err != nil {
		if c.options.Logger != nil {
			c.options.Logger.Warn("Stored session rejected", "error", err)
		}
		if _, logoutErr := c.auth.LogoutIfCurrent(ctx, token); logoutErr != nil {
			return nil, logoutErr
		}
		return nil, err
	}

	if err := c.auth.CacheUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
