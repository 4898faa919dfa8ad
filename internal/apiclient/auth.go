package apiclient

import (
	"context"
	"errors"
	"net/http"
)

// CurrentUser returns the signed-in user, or nil when the server answers with any
// non-success status or cannot be reached. Callers cannot tell "signed out" from
// "server unavailable" apart.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var resp currentUserResponse
	err := c.request(ctx, "fetch current user", http.MethodGet, "/auth/user", nil, nil, &resp)
	if err != nil {
		if IsOperationFailed(err) {
			return nil, nil
		}
		return nil, err
	}
	if resp.User == nil {
		return nil, nil
	}
	if err := c.check("fetch current user", resp.User); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// FetchIdentity is like CurrentUser but only reads 401 and 403 as signed out;
// every other failure is returned so callers can avoid caching it.
func (c *Client) FetchIdentity(ctx context.Context) (*User, error) {
	var resp currentUserResponse
	err := c.request(ctx, "fetch current user", http.MethodGet, "/auth/user", nil, nil, &resp)
	if err != nil {
		var opErr *OperationError
		if errors.As(err, &opErr) && (opErr.status == http.StatusUnauthorized || opErr.status == http.StatusForbidden) {
			return nil, nil
		}
		return nil, err
	}
	if resp.User == nil {
		return nil, nil
	}
	if err := c.check("fetch current user", resp.User); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// LoginURL returns the backend endpoint that starts the GitHub OAuth flow.
func (c *Client) LoginURL() string {
	return c.baseURL + "/auth/github"
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	return c.request(ctx, "log out", http.MethodGet, "/auth/logout", nil, nil, nil)
}
