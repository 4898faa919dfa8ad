// Package apiclient provides a lightweight HTTP client for the dotfiles template API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:8080"

// DefaultSessionCookie is the name of the backend's session cookie.
const DefaultSessionCookie = "session"

// Client is a lightweight HTTP client for the dotfiles template API.
// Session credentials live in the client's cookie jar and are sent with every request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	validate   *validator.Validate
	session    *http.Cookie
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses a copy of hc for all requests. A cookie jar is added if hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.httpClient = &cp
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSessionCookie seeds the cookie jar with a session cookie obtained from the browser sign-in.
func WithSessionCookie(name, value string) Option {
	return func(c *Client) {
		if value == "" {
			return
		}
		if name == "" {
			name = DefaultSessionCookie
		}
		c.session = &http.Cookie{Name: name, Value: value, Path: "/"}
	}
}

// New creates a new API client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:   slog.Default(),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		// cookiejar.New never returns a non-nil error.
		jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		c.httpClient.Jar = jar
	}
	if c.session != nil {
		if u, err := url.Parse(c.baseURL); err == nil {
			c.httpClient.Jar.SetCookies(u, []*http.Cookie{c.session})
		}
	}
	return c
}

// SetSessionCookie replaces the session cookie sent with every request.
func (c *Client) SetSessionCookie(name, value string) {
	if name == "" {
		name = DefaultSessionCookie
	}
	c.session = &http.Cookie{Name: name, Value: value, Path: "/"}
	if u, err := url.Parse(c.baseURL); err == nil {
		c.httpClient.Jar.SetCookies(u, []*http.Cookie{c.session})
	}
}

// ClearSessionCookie drops the session cookie from the jar.
func (c *Client) ClearSessionCookie() {
	if c.session == nil {
		return
	}
	expired := &http.Cookie{Name: c.session.Name, Value: "", Path: "/", MaxAge: -1}
	if u, err := url.Parse(c.baseURL); err == nil {
		c.httpClient.Jar.SetCookies(u, []*http.Cookie{expired})
	}
	c.session = nil
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request performs an HTTP request and decodes the JSON response into result.
// op names the operation in the "failed to <op>" error returned on any non-2xx status.
func (c *Client) request(ctx context.Context, op, method, path string, query url.Values, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request error", "op", op, "method", method, "path", path, "request_id", requestID, "error", err)
		return &OperationError{Op: op, cause: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &OperationError{Op: op, status: resp.StatusCode}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &OperationError{Op: op, cause: err}
	}

	if result == nil {
		return nil
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return &MalformedError{Op: op, Err: fmt.Errorf("empty response body")}
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return &MalformedError{Op: op, Err: err}
	}
	return nil
}

// getObject fetches a bare object and validates it.
func (c *Client) getObject(ctx context.Context, op, path string, result any) error {
	if err := c.request(ctx, op, http.MethodGet, path, nil, nil, result); err != nil {
		return err
	}
	return c.check(op, result)
}

// send performs a mutation with a JSON body. When result is non-nil the
// response is decoded into it and validated.
func (c *Client) send(ctx context.Context, op, method, path string, body, result any) error {
	if err := c.request(ctx, op, method, path, nil, body, result); err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return c.check(op, result)
}

// getList fetches an envelope and returns the array stored under field.
func getList[T any](ctx context.Context, c *Client, op, path string, query url.Values, field string) ([]T, error) {
	var envelope map[string]json.RawMessage
	if err := c.request(ctx, op, http.MethodGet, path, query, nil, &envelope); err != nil {
		return nil, err
	}

	raw, ok := envelope[field]
	if !ok {
		return nil, &MalformedError{Op: op, Err: fmt.Errorf("missing %q field", field)}
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &MalformedError{Op: op, Err: err}
	}
	for i := range items {
		if err := c.check(op, &items[i]); err != nil {
			return nil, err
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
