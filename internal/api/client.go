// Package api is the HTTP client for the Finvix prediction backend.
// It owns bearer-token injection, the fixed request deadline, and the
// single place every response status is classified into the error
// taxonomy. Call sites type-switch on *APIError; they never look at
// raw statuses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout is the fixed deadline applied to every request.
const DefaultTimeout = 30 * time.Second

// Client talks to the backend. Construct with New; the zero value is
// not usable.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	token         func() string
	onAuthExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource supplies the bearer token for each request. An empty
// token means the request goes out unauthenticated.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.token = fn }
}

// WithAuthExpiredHandler registers the single handler invoked on any
// 401 from an authenticated call. Deduplication across overlapping
// requests is the handler's job (session.Auth guarantees it).
func WithAuthExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onAuthExpired = fn }
}

// WithHTTPClient overrides the underlying transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New builds a client for baseURL with the fixed timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		token:      func() string { return "" },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one JSON request and returns a 2xx response, or a
// classified *APIError. A 401 on an authenticated request fires the
// auth-expired handler before returning; there is no retry for any
// status.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshalling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

// send attaches auth headers, executes, and classifies the outcome.
// Used by both JSON and multipart requests.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	token := c.token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()

	apiErr := classifyStatus(resp.StatusCode, body)
	if apiErr.Kind == KindAuthExpired && token != "" && c.onAuthExpired != nil {
		// Unconditional: any background 401 ends the session.
		c.onAuthExpired()
	}
	return nil, apiErr
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// transportError distinguishes a deadline from a connectivity failure
// so the caller can show different remediation text.
func transportError(err error) *APIError {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &APIError{Kind: KindTimeout, cause: err}
	}
	return &APIError{Kind: KindNetwork, cause: err}
}

func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
