package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ListTemplatesOptions filters a template listing. Zero values are omitted from the query.
type ListTemplatesOptions struct {
	Public         *bool
	Featured       *bool
	Tags           []string
	Search         string
	Sort           string
	OwnerID        string
	OrganizationID string
	Limit          int
	Offset         int
}

// Values encodes the options as query parameters.
func (o ListTemplatesOptions) Values() url.Values {
	q := url.Values{}
	if o.Public != nil {
		q.Set("public", strconv.FormatBool(*o.Public))
	}
	if o.Featured != nil {
		q.Set("featured", strconv.FormatBool(*o.Featured))
	}
	if len(o.Tags) > 0 {
		q.Set("tags", strings.Join(o.Tags, ","))
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	if o.OwnerID != "" {
		q.Set("owner_id", o.OwnerID)
	}
	if o.OrganizationID != "" {
		q.Set("organization_id", o.OrganizationID)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}

// ListTemplates returns templates matching opts.
func (c *Client) ListTemplates(ctx context.Context, opts ListTemplatesOptions) ([]Template, error) {
	return getList[Template](ctx, c, "fetch templates", "/api/templates", opts.Values(), "templates")
}

// SearchTemplates runs a server-side search.
func (c *Client) SearchTemplates(ctx context.Context, query string) ([]Template, error) {
	q := url.Values{}
	q.Set("search", query)
	return getList[Template](ctx, c, "search templates", "/api/templates/search", q, "templates")
}

// GetTemplate returns a template by ID.
func (c *Client) GetTemplate(ctx context.Context, id string) (*Template, error) {
	var t Template
	if err := c.getObject(ctx, "fetch template", fmt.Sprintf("/api/templates/%s", url.PathEscape(id)), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DownloadTemplate returns the full downloadable payload of a template, as sent by the server.
func (c *Client) DownloadTemplate(ctx context.Context, id string) (json.RawMessage, error) {
	var payload json.RawMessage
	err := c.request(ctx, "download template", http.MethodGet,
		fmt.Sprintf("/api/templates/%s/download", url.PathEscape(id)), nil, nil, &payload)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// CreateTemplate creates a new template.
func (c *Client) CreateTemplate(ctx context.Context, in TemplateInput) (*Template, error) {
	var t Template
	if err := c.send(ctx, "create template", http.MethodPost, "/api/templates", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTemplate replaces a template.
func (c *Client) UpdateTemplate(ctx context.Context, id string, in TemplateInput) (*Template, error) {
	var t Template
	path := fmt.Sprintf("/api/templates/%s", url.PathEscape(id))
	if err := c.send(ctx, "update template", http.MethodPut, path, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTemplate deletes a template by ID.
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.send(ctx, "delete template", http.MethodDelete, fmt.Sprintf("/api/templates/%s", url.PathEscape(id)), nil, nil)
}

// GetTemplateStats returns catalog-wide counters.
func (c *Client) GetTemplateStats(ctx context.Context) (*TemplateStats, error) {
	var stats TemplateStats
	if err := c.getObject(ctx, "fetch template stats", "/api/templates/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetTemplateRating returns the rating aggregate for a template.
func (c *Client) GetTemplateRating(ctx context.Context, id string) (*Rating, error) {
	var r Rating
	if err := c.getObject(ctx, "fetch template rating", fmt.Sprintf("/api/templates/%s/rating", url.PathEscape(id)), &r); err != nil {
		return nil, err
	}
	return &r, nil
}
