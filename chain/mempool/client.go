package mempool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNotFound is returned for a 404 response.
	ErrNotFound = errors.New("resource not found")

	// ErrRateLimited is returned when the server keeps answering 429.
	ErrRateLimited = errors.New("rate limited by server")

	// ErrServer is returned when the server keeps answering 5xx.
	ErrServer = errors.New("server error")

	// ErrUnexpectedStatus is returned for any other non 2xx response.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrInvalidBaseURL is returned when no base URL is configured.
	ErrInvalidBaseURL = errors.New("base URL is required")

	// ErrInvalidRateLimit is returned for a non-positive rate limit.
	ErrInvalidRateLimit = errors.New("rate limit must be positive")
)

// Config holds configuration for the mempool.space client.
type Config struct {
	// BaseURL is the base URL for the mempool.space API.
	// Default: https://mempool.space/api
	BaseURL string

	// RateLimit is the number of requests per second allowed.
	// Default: 10
	RateLimit int

	// Timeout is the HTTP request timeout.
	// Default: 30 seconds
	Timeout time.Duration

	// RetryAttempts is the number of retry attempts for failed requests.
	// Default: 3
	RetryAttempts int

	// RetryDelay is the delay between retry attempts.
	// Default: 1 second
	RetryDelay time.Duration
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://mempool.space/api",
		RateLimit:     10,
		Timeout:       30 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidBaseURL
	}

	if c.RateLimit <= 0 {
		return ErrInvalidRateLimit
	}

	return nil
}

// Client is an HTTP client for the mempool.space fee API with rate limiting.
type Client struct {
	cfg *Config

	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient creates a new mempool.space API client.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// Create rate limiter (requests per second)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: limiter,
	}
}

// doRequest performs a GET request with rate limiting and retries.
func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	url := c.cfg.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(
			ctx, http.MethodGet, url, nil,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		log.Tracef("GET %s (attempt %d)", url, attempt+1)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt < c.cfg.RetryAttempts {
				if err := c.backoff(ctx, attempt, 1); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w",
				err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBody, nil
		}

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			lastErr = ErrRateLimited
			if attempt < c.cfg.RetryAttempts {
				log.Debugf("Rate limited by %s, backing off",
					c.cfg.BaseURL)

				// Back off twice as long when rate limited.
				if err := c.backoff(ctx, attempt, 2); err != nil {
					return nil, err
				}
				continue
			}

		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, respBody)

		case http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:

			lastErr = fmt.Errorf("%w (%d): %s", ErrServer,
				resp.StatusCode, respBody)
			if attempt < c.cfg.RetryAttempts {
				if err := c.backoff(ctx, attempt, 1); err != nil {
					return nil, err
				}
				continue
			}

		default:
			return nil, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus,
				resp.StatusCode, respBody)
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w",
		c.cfg.RetryAttempts+1, lastErr)
}

// requestBudget is the longest a request may take with every retry and
// backoff spent.
func (c *Client) requestBudget() time.Duration {
	attempts := c.cfg.RetryAttempts + 1

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}

	// Rate limited retries back off twice as long.
	backoffs := c.cfg.RetryDelay * time.Duration(
		c.cfg.RetryAttempts*(c.cfg.RetryAttempts+1),
	)

	return timeout*time.Duration(attempts) + backoffs
}

// backoff waits RetryDelay * (attempt+1) * factor or until ctx is done.
func (c *Client) backoff(ctx context.Context, attempt, factor int) error {
	delay := c.cfg.RetryDelay * time.Duration((attempt+1)*factor)

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetFeeEstimates retrieves fee estimates for different confirmation targets.
func (c *Client) GetFeeEstimates(ctx context.Context) (*FeeEstimates, error) {
	respBody, err := c.doRequest(ctx, "/v1/fees/recommended")
	if err != nil {
		return nil, err
	}

	var fees FeeEstimates
	if err := json.Unmarshal(respBody, &fees); err != nil {
		return nil, fmt.Errorf("failed to parse fee estimates: %w", err)
	}

	if err := fees.Validate(); err != nil {
		return nil, err
	}

	return &fees, nil
}
