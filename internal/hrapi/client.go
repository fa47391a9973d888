// Package hrapi is the client for the remote HR REST API. A Client is built
// once at process start and bound per caller to a credential source with
// With; every call made through a bound client carries the bearer token and
// reacts to 401 responses by clearing the credential.
package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:3001/api"
	// DefaultTimeout bounds every call.
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 64 << 10
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Credentials is the token source a bound client reads at call time.
type Credentials interface {
	Token(ctx context.Context) (string, bool)
	Clear(ctx context.Context) error
}

// UnauthorizedFunc is invoked after a 401 response cleared the credential.
type UnauthorizedFunc func(ctx context.Context)

// Observer receives one observation per backend call.
type Observer interface {
	ObserveBackendCall(operation string, status int, elapsed time.Duration)
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Timeout is kept
// as given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithObserver registers a call observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// Client issues requests to the HR API.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
	observer  Observer

	credentials    Credentials
	onUnauthorized UnauthorizedFunc
}

// New constructs an unbound Client.
func New(cfg Config, opts ...Option) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "kola-dashboard"
	}
	c := &Client{
		baseURL:   base,
		userAgent: ua,
		http:      &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// With returns a copy of c bound to creds. onUnauthorized may be nil.
// The copy shares the transport, logger and observer.
func (c *Client) With(creds Credentials, onUnauthorized UnauthorizedFunc) *Client {
	bound := *c
	bound.credentials = creds
	bound.onUnauthorized = onUnauthorized
	return &bound
}

// BaseURL reports the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Get issues a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, "custom", http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, "custom", http.MethodPost, path, nil, in, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, "custom", http.MethodPut, path, nil, in, out)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, "custom", http.MethodPatch, path, nil, in, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, "custom", http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("hrapi: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("hrapi: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID(ctx))
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.credentials != nil {
		if token, ok := c.credentials.Token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, 0, start)
		c.logger.WarnContext(ctx, "backend call failed", slog.String("op", op), slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.observe(op, resp.StatusCode, start)
	c.logger.DebugContext(ctx, "backend call", slog.String("op", op), slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode), slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized {
		c.unauthorized(ctx)
		return &Error{Status: resp.StatusCode, Method: method, Path: path, Message: readMessage(resp.Body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Method: method, Path: path, Message: readMessage(resp.Body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("hrapi: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) unauthorized(ctx context.Context) {
	if c.credentials != nil {
		// Storage errors are logged by the store; the redirect still happens.
		_ = c.credentials.Clear(ctx)
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

func (c *Client) observe(op string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveBackendCall(op, status, time.Since(start))
	}
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
