// Package apiclient is the storefront's thin HTTP client for the store API.
// It injects the bearer and session tokens of the signed-in user into every
// request and turns error responses into *APIError values.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// SessionTokenHeader carries the store session token next to the bearer token.
	SessionTokenHeader = "X-Session-Token"
	// DeviceIDHeader identifies the installation.
	DeviceIDHeader = "X-Device-ID"
	// IdempotencyKeyHeader makes order creation safe to retry.
	IdempotencyKeyHeader = "Idempotency-Key"

	maxErrorBody    = 64 << 10
	maxResponseBody = 8 << 20
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Tokens are the credentials attached to outgoing requests.
type Tokens struct {
	Access  string
	Session string
}

// TokenSource returns the current user's tokens. Empty tokens mean the
// request goes out anonymously.
type TokenSource interface {
	Tokens(ctx context.Context) (Tokens, error)
}

// Config configures the client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	DeviceID          string
	UserAgent         string
}

// Client talks to the store API.
type Client struct {
	doer      Doer
	baseURL   string
	tokens    TokenSource
	limiter   *rate.Limiter
	deviceID  string
	userAgent string
	log       *logrus.Entry
}

// Option customises a Client.
type Option func(*Client)

// WithDoer replaces the underlying HTTP client.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) { c.log = l.WithField("component", "apiclient") }
}

// New creates a client. tokens may be nil for anonymous use.
func New(cfg Config, tokens TokenSource, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "storefront-client/1"
	}

	c := &Client{
		doer:      &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		tokens:    tokens,
		limiter:   rate.NewLimiter(limit, burst),
		deviceID:  cfg.DeviceID,
		userAgent: userAgent,
		log:       logrus.StandardLogger().WithField("component", "apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes one API call.
type request struct {
	method  string
	path    string
	query   url.Values
	body    interface{}
	headers map[string]string
}

// do executes r and decodes a successful response into out. A response
// wrapped as {"data": ...} is unwrapped first.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var bodyReader io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.deviceID != "" {
		req.Header.Set(DeviceIDHeader, c.deviceID)
	}
	if c.tokens != nil {
		tok, err := c.tokens.Tokens(ctx)
		if err != nil {
			return fmt.Errorf("failed to load session tokens: %w", err)
		}
		if tok.Access != "" {
			req.Header.Set("Authorization", "Bearer "+tok.Access)
		}
		if tok.Session != "" {
			req.Header.Set(SessionTokenHeader, tok.Session)
		}
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: request failed: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	entry := c.log.WithFields(logrus.Fields{
		"method":   r.method,
		"path":     r.path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Method:  r.method,
			Path:    r.path,
			Message: errorMessage(raw, resp.StatusCode),
		}
		entry.WithField("error", apiErr.Message).Warn("store api request failed")
		return apiErr
	}
	entry.Debug("store api request")

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%s %s: failed to read response: %w", r.method, r.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if gjson.ValidBytes(raw) {
		if data := gjson.GetBytes(raw, "data"); data.IsObject() || data.IsArray() {
			raw = []byte(data.Raw)
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", r.method, r.path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query}, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, request{method: http.MethodPost, path: path, body: body}, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, request{method: http.MethodPatch, path: path, body: body}, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: path}, nil)
}

// errorMessage pulls a human readable message out of an error body. The
// store API is not consistent about where it puts it.
func errorMessage(raw []byte, status int) string {
	if gjson.ValidBytes(raw) {
		for _, path := range []string{"message", "error", "errors.0", "error.message"} {
			if res := gjson.GetBytes(raw, path); res.Exists() && res.Type == gjson.String && res.String() != "" {
				return res.String()
			}
		}
	} else if text := strings.TrimSpace(string(raw)); text != "" && len(text) < 200 {
		return text
	}
	return http.StatusText(status)
}
