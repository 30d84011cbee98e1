// Package transport issues JSON requests against the debt-tracking API and
// normalizes responses into typed results or typed failures.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/debtdesk/internal/errs"
)

// APIError is a transport-level failure for any non-success response.
type APIError struct {
	Status     int
	StatusText string
	Message    string // from the error body when parseable, else StatusText
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.StatusText, e.Message)
}

// Unwrap maps well-known statuses onto package sentinels so callers can use
// errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusConflict:
		return errs.ErrAlreadyExists
	}
	return nil
}

// Client is the HTTP client for the API. Credentials travel as cookies held
// in the client's jar; all request and response bodies are JSON.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger

	// invoked on any 401 before the failure is returned to the caller.
	authExpired []func()
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the underlying HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Client for the given base URL (e.g. "http://host:3000/api/v1").
func New(baseURL string, log *zap.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("empty base url")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("bad base url %q: %w", baseURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// OnAuthExpired registers a hook run whenever the server answers 401.
// The transport stays free of navigation concerns; the composing application
// decides what re-authentication looks like.
func (c *Client) OnAuthExpired(fn func()) { c.authExpired = append(c.authExpired, fn) }

// Cookies returns the session cookies currently held for the base URL.
func (c *Client) Cookies() []*http.Cookie {
	u, _ := url.Parse(c.baseURL)
	return c.http.Jar.Cookies(u)
}

// SetCookies seeds the jar with previously persisted session cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	u, _ := url.Parse(c.baseURL)
	c.http.Jar.SetCookies(u, cookies)
}

// do performs one request. out may be nil for callers that discard the body;
// a 204 leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	reqID, _ := uuid.NewV4()
	req.Header.Set("X-Request-Id", reqID.String())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("dur", time.Since(start)),
		zap.String("req_id", reqID.String()),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(resp)
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// fail builds the APIError for a non-success response, running auth-expiry
// hooks first on 401.
func (c *Client) fail(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	var errBody struct {
		Message string `json:"message"`
	}
	// best effort: a malformed error body falls back to the status text
	if b, err := io.ReadAll(resp.Body); err == nil {
		if json.Unmarshal(b, &errBody) == nil && errBody.Message != "" {
			msg = errBody.Message
		}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		for _, fn := range c.authExpired {
			fn()
		}
	}
	return &APIError{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Message:    msg,
	}
}

// Get issues a GET and decodes the response into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Post issues a POST with an optional JSON body and decodes the response into T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.do(ctx, http.MethodPost, path, body, &out)
	return out, err
}

// Patch issues a PATCH with a JSON body and decodes the response into T.
func Patch[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.do(ctx, http.MethodPatch, path, body, &out)
	return out, err
}

// Delete issues a DELETE; the expected success status is 204.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
