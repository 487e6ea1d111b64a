package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	gosync "sync"
	"time"

	domsync "github.com/fenestra/backend/internal/domain/sync"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// defaultRetryAfter applies when a 429 response carries no usable Retry-After
const defaultRetryAfter = 60 * time.Second

// APIError is a non-2xx response from the ClickUp API
type APIError struct {
	StatusCode int
	Code       string // ECODE from the response body
	Message    string // err from the response body
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("clickup: HTTP %d %s - %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("clickup: HTTP %d - %s", e.StatusCode, e.Message)
}

// Unwrap maps API errors onto the sync sentinel for errors.Is checks
func (e *APIError) Unwrap() error {
	return domsync.ErrExternalAPI
}

// RateLimitError is a 429 response. RetryAfter tells callers when the
// request may be retried.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("clickup: rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return domsync.ErrRateLimited
}

// RateLimitStatus is a snapshot of the rate-limit headers from the most
// recent response
type RateLimitStatus struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Client talks to the ClickUp API v2
type Client struct {
	config     *Config
	httpClient *http.Client

	mu        gosync.RWMutex
	rateLimit RateLimitStatus
}

// NewClient creates a ClickUp API client from the given configuration
func NewClient(config *Config) (*Client, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// IsEnabled reports whether the integration is configured and turned on
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// CustomerListID returns the configured customer list
func (c *Client) CustomerListID() string { return c.config.CustomerListID }

// ContactListID returns the configured contact list
func (c *Client) ContactListID() string { return c.config.ContactListID }

// LeadListID returns the configured lead list
func (c *Client) LeadListID() string { return c.config.LeadListID }

// RateLimit returns the rate-limit snapshot from the last response
func (c *Client) RateLimit() RateLimitStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rateLimit
}

// request performs one API call and decodes the JSON response into out
// when out is non-nil
func (c *Client) request(ctx context.Context, method, path string, body any, out any) error {
	if !c.config.Enabled {
		return domsync.ErrSyncDisabled
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("clickup: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("clickup: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.config.APIToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domsync.ErrExternalAPI, err)
	}
	defer resp.Body.Close()

	c.snapshotRateLimit(resp)

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("clickup: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: retryAfter(resp)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody struct {
			Err   string `json:"err"`
			ECode string `json:"ECODE"`
		}
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Err != "" {
			apiErr.Message = errBody.Err
			apiErr.Code = errBody.ECode
		}
		return apiErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("clickup: failed to parse response: %w", err)
		}
	}
	return nil
}

// snapshotRateLimit records the x-ratelimit headers when present
func (c *Client) snapshotRateLimit(resp *http.Response) {
	limit := resp.Header.Get("x-ratelimit-limit")
	remaining := resp.Header.Get("x-ratelimit-remaining")
	reset := resp.Header.Get("x-ratelimit-reset")
	if limit == "" && remaining == "" && reset == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if n, err := strconv.Atoi(limit); err == nil {
		c.rateLimit.Limit = n
	}
	if n, err := strconv.Atoi(remaining); err == nil {
		c.rateLimit.Remaining = n
	}
	if ts, err := strconv.ParseInt(reset, 10, 64); err == nil {
		c.rateLimit.ResetAt = time.Unix(ts, 0)
	}
}

// retryAfter extracts the retry delay from a 429 response
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if v := resp.Header.Get("x-ratelimit-reset"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			if d := time.Until(time.Unix(ts, 0)); d > 0 {
				return d
			}
		}
	}
	return defaultRetryAfter
}
