package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListTemplateReviews returns reviews for a template.
func (c *Client) ListTemplateReviews(ctx context.Context, templateID string) ([]Review, error) {
	path := fmt.Sprintf("/api/templates/%s/reviews", url.PathEscape(templateID))
	return getList[Review](ctx, c, "fetch template reviews", path, nil, "reviews")
}

// CreateReview reviews a template as the signed-in user.
func (c *Client) CreateReview(ctx context.Context, templateID string, in ReviewInput) (*Review, error) {
	var r Review
	path := fmt.Sprintf("/api/templates/%s/reviews", url.PathEscape(templateID))
	if err := c.send(ctx, "create review", http.MethodPost, path, in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReview returns a review by ID.
func (c *Client) GetReview(ctx context.Context, id string) (*Review, error) {
	var r Review
	if err := c.getObject(ctx, "fetch review", fmt.Sprintf("/api/reviews/%s", url.PathEscape(id)), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateReview applies a partial review update.
func (c *Client) UpdateReview(ctx context.Context, id string, in ReviewUpdate) (*Review, error) {
	var r Review
	if err := c.send(ctx, "update review", http.MethodPut, fmt.Sprintf("/api/reviews/%s", url.PathEscape(id)), in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteReview deletes a review.
func (c *Client) DeleteReview(ctx context.Context, id string) error {
	return c.send(ctx, "delete review", http.MethodDelete, fmt.Sprintf("/api/reviews/%s", url.PathEscape(id)), nil, nil)
}

// MarkReviewHelpful records a helpful vote on a review.
func (c *Client) MarkReviewHelpful(ctx context.Context, id string) error {
	return c.send(ctx, "mark review helpful", http.MethodPost, fmt.Sprintf("/api/reviews/%s/helpful", url.PathEscape(id)), nil, nil)
}
