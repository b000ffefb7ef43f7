// Package transport is the HTTP client shared by every analytics endpoint
// call. It performs exactly one request per call and never retries.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evmarket/analytics-console/internal/auth"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Observer is notified after every call with the endpoint name, the HTTP
// status (0 on network failure) and the elapsed time.
type Observer interface {
	ObserveRequest(endpoint string, status int, elapsed time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	BasePath  string
	UserAgent string
	Timeout   time.Duration
	Tokens    *auth.TokenSource
	Observer  Observer
}

// Request is a single call against the analytics API.
type Request struct {
	// Endpoint is the route name, used for logging and metrics.
	Endpoint string
	Method   string
	// Path is relative to the base path.
	Path  string
	Query url.Values
	// Body is JSON encoded when non-nil.
	Body any
}

// Response is a successful (2xx) answer with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RequestID  string
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("decoding response: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// ContentType returns the media type of the body.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Client issues requests against the analytics API.
type Client struct {
	doer      Doer
	baseURL   string
	userAgent string
	tokens    *auth.TokenSource
	observer  Observer

	mu           sync.Mutex
	warnedExpiry string
}

// New creates a Client. When doer is nil an *http.Client with the configured
// timeout is used.
func New(opts Options, doer Doer) *Client {
	if doer == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}
	basePath := opts.BasePath
	if basePath == "" {
		basePath = "/analytics/api"
	}
	return &Client{
		doer:      doer,
		baseURL:   strings.TrimRight(opts.BaseURL, "/") + "/" + strings.Trim(basePath, "/"),
		userAgent: opts.UserAgent,
		tokens:    opts.Tokens,
		observer:  opts.Observer,
	}
}

// BaseURL returns the absolute URL requests are rooted at.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs req. Non-2xx answers and network failures are returned as *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s request: %w", req.Endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", req.Endpoint, err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)
	httpReq.Header.Set("Accept", "application/json, */*")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if token := c.tokens.Token(); token != "" {
		c.checkExpiry(token)
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.doer.Do(httpReq)
	if err != nil {
		c.observe(req.Endpoint, 0, time.Since(start))
		slog.Debug("analytics request failed", "endpoint", req.Endpoint, "request_id", requestID, "error", err)
		return nil, &Error{Endpoint: req.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.observe(req.Endpoint, resp.StatusCode, elapsed)
	if err != nil {
		return nil, &Error{Endpoint: req.Endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}

	slog.Debug("analytics request",
		"endpoint", req.Endpoint,
		"method", req.Method,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", elapsed,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Endpoint:   req.Endpoint,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(data),
			Body:       data,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		RequestID:  requestID,
	}, nil
}

func (c *Client) observe(endpoint string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, status, elapsed)
	}
}

// checkExpiry logs once per token when it has already expired. The request
// is still sent; the backend has the final say.
func (c *Client) checkExpiry(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warnedExpiry == token {
		return
	}
	id, err := auth.Inspect(token)
	if err != nil || !id.Expired(time.Now()) {
		return
	}
	c.warnedExpiry = token
	slog.Warn("api token has expired", "subject", id.Subject, "expired_at", id.ExpiresAt)
}

// serverMessage extracts the message field of a JSON error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
