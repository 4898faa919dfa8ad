package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListUsers returns all users visible to the caller.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	return getList[User](ctx, c, "fetch users", "/api/users", nil, "users")
}

// GetUser returns a user by ID.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.getObject(ctx, "fetch user", fmt.Sprintf("/api/users/%s", url.PathEscape(id)), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername returns a user by handle.
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	if err := c.getObject(ctx, "fetch user", fmt.Sprintf("/api/users/username/%s", url.PathEscape(username)), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser applies a partial profile update.
func (c *Client) UpdateUser(ctx context.Context, id string, in UserUpdate) (*User, error) {
	var u User
	if err := c.send(ctx, "update user", http.MethodPut, fmt.Sprintf("/api/users/%s", url.PathEscape(id)), in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser deletes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.send(ctx, "delete user", http.MethodDelete, fmt.Sprintf("/api/users/%s", url.PathEscape(id)), nil, nil)
}

// AddFavorite adds a template to the user's favorites.
func (c *Client) AddFavorite(ctx context.Context, userID, templateID string) error {
	path := fmt.Sprintf("/api/users/%s/favorites/%s", url.PathEscape(userID), url.PathEscape(templateID))
	return c.send(ctx, "add favorite", http.MethodPost, path, nil, nil)
}

// RemoveFavorite removes a template from the user's favorites.
func (c *Client) RemoveFavorite(ctx context.Context, userID, templateID string) error {
	path := fmt.Sprintf("/api/users/%s/favorites/%s", url.PathEscape(userID), url.PathEscape(templateID))
	return c.send(ctx, "remove favorite", http.MethodDelete, path, nil, nil)
}

// ListFavorites returns the user's favorite templates.
func (c *Client) ListFavorites(ctx context.Context, userID string) ([]Template, error) {
	return getList[Template](ctx, c, "fetch favorites", fmt.Sprintf("/api/users/%s/favorites", url.PathEscape(userID)), nil, "templates")
}

// ListUserReviews returns reviews written by a user.
func (c *Client) ListUserReviews(ctx context.Context, userID string) ([]Review, error) {
	return getList[Review](ctx, c, "fetch user reviews", fmt.Sprintf("/api/users/%s/reviews", url.PathEscape(userID)), nil, "reviews")
}
