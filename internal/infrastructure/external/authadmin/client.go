// Package authadmin implements the client for the identity provider's admin
// API. The only operation used here is credential revocation for removed
// teachers.
package authadmin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/satyalok/attendance-hub/internal/domain/teacher"
	"github.com/satyalok/attendance-hub/pkg/circuitbreaker"
	"github.com/satyalok/attendance-hub/pkg/logger"
	"github.com/satyalok/attendance-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the admin API client.
type Config struct {
	// BaseURL of the admin API, e.g. https://auth.internal/admin.
	BaseURL string

	// Token is sent as a bearer token on every call.
	Token string

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// APIError is a non-2xx answer from the admin API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth admin api: status %d: %s", e.StatusCode, e.Body)
}

// ErrNotConfigured is returned when no base URL is set.
var ErrNotConfigured = errors.New("auth admin api: base url not configured")

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client revokes credentials through the admin API.
type Client struct {
	config     Config
	httpClient *http.Client
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
	log        *logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetrier replaces the default retrier.
func WithRetrier(r *retry.Retrier) Option {
	return func(c *Client) { c.retrier = r }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// NewClient creates a new admin API client.
func NewClient(cfg Config, log *logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.Component("authadmin"))

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retrier:    retry.CollaboratorRetrier(),
		log:        log,
	}
	c.breaker = circuitbreaker.AuthServiceBreaker(func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ teacher.CredentialRevoker = (*Client)(nil)

// RevokeCredentials disables the account and invalidates refresh tokens of uid.
// A 404 is treated as success: there is nothing left to revoke.
func (c *Client) RevokeCredentials(ctx context.Context, uid string) error {
	if c.config.BaseURL == "" {
		return ErrNotConfigured
	}

	path := fmt.Sprintf("/users/%s/revoke", url.PathEscape(uid))
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		return c.breaker.Execute(ctx, func(ctx context.Context) error {
			return c.do(ctx, http.MethodPost, path, map[string]string{"reason": "teacher_removed"})
		})
	})

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("revoke credentials %s: %w", uid, err)
	}

	c.log.Info("credentials revoked", logger.UID(uid))
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return retry.Permanent(fmt.Errorf("marshal request: %w", err))
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.config.BaseURL, "/")+path, bodyReader)
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return retry.Retryable(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return retry.Retryable(apiErr)
	}
	return apiErr
}

// State exposes the breaker state for health reporting.
func (c *Client) State() circuitbreaker.State {
	return c.breaker.State()
}
