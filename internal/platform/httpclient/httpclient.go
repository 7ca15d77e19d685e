// Package httpclient is the JSON client shared by the hosted-service
// integrations: retries with exponential backoff behind a circuit breaker.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Config holds retry settings.
type Config struct {
	MaxRetries     int
	RetryBaseDelay time.Duration
	Timeout        time.Duration
}

// Client calls one JSON API rooted at BaseURL.
type Client struct {
	Name       string
	BaseURL    string
	HTTPClient *http.Client
	Config     Config
	CB         *gobreaker.CircuitBreaker
	Log        *zap.Logger
	// Authorize decorates every outgoing request, typically with credentials.
	Authorize func(*http.Request)
}

// Option configures the Client.
type Option func(*Client)

func WithCircuitBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(c *Client) { c.CB = cb }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.Log = log }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithBearer sends "Authorization: Bearer <token>".
func WithBearer(token string) Option {
	return func(c *Client) {
		c.Authorize = func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
	}
}

// WithBasicAuth sends HTTP basic credentials.
func WithBasicAuth(user, pass string) Option {
	return func(c *Client) {
		c.Authorize = func(r *http.Request) { r.SetBasicAuth(user, pass) }
	}
}

// WithHeader sets a static header on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		prev := c.Authorize
		c.Authorize = func(r *http.Request) {
			if prev != nil {
				prev(r)
			}
			r.Header.Set(key, value)
		}
	}
}

func New(name, baseURL string, cfg Config, opts ...Option) *Client {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 500 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{
		Name:       name,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Config:     cfg,
		Log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StatusError is a non-2xx response.
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d body=%q", e.Service, e.Status, e.Body)
}

// Temporary reports whether a retry may succeed.
func (e *StatusError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// IsNotFound reports whether err is a 404 from the remote service.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// Do sends body (nil for none) as JSON and decodes the response into T.
func Do[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", c.Name, err)
		}
		payload = b
	}
	if c.CB == nil {
		return doWithRetry[T](ctx, c, method, path, payload)
	}
	result, err := c.CB.Execute(func() (interface{}, error) {
		return doWithRetry[T](ctx, c, method, path, payload)
	})
	if err != nil {
		return nil, err
	}
	return result.(*T), nil
}

func doWithRetry[T any](ctx context.Context, c *Client, method, path string, payload []byte) (*T, error) {
	var lastErr error
	for attempt := 0; attempt <= c.Config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.Config.RetryBaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			c.Log.Debug("retrying request", zap.String("service", c.Name), zap.String("path", path), zap.Int("attempt", attempt), zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		result, err := doJSON[T](ctx, c, method, path, payload)
		if err == nil {
			return result, nil
		}
		lastErr = err
		var se *StatusError
		if errors.As(err, &se) && !se.Temporary() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.Log.Warn("request failed", zap.String("service", c.Name), zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
	}
	return nil, lastErr
}

func doJSON[T any](ctx context.Context, c *Client, method, path string, payload []byte) (*T, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Authorize != nil {
		c.Authorize(req)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Service: c.Name, Status: resp.StatusCode, Body: string(b[:min(len(b), 200)])}
	}

	var out T
	if len(bytes.TrimSpace(b)) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", c.Name, err)
	}
	return &out, nil
}
