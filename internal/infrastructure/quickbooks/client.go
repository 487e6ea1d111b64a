package quickbooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	domsync "github.com/fenestra/backend/internal/domain/sync"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// Fault is the error envelope QuickBooks wraps failures in
type Fault struct {
	Type   string `json:"type"`
	Errors []struct {
		Message string `json:"Message"`
		Detail  string `json:"Detail"`
		Code    string `json:"code"`
	} `json:"Error"`
}

// APIError is a non-2xx response from the QuickBooks API
type APIError struct {
	StatusCode int
	Fault      *Fault
}

func (e *APIError) Error() string {
	if e.Fault != nil && len(e.Fault.Errors) > 0 {
		f := e.Fault.Errors[0]
		return fmt.Sprintf("quickbooks: HTTP %d %s - %s (%s)", e.StatusCode, f.Code, f.Message, f.Detail)
	}
	return fmt.Sprintf("quickbooks: HTTP %d", e.StatusCode)
}

// Unwrap maps API errors onto the sync sentinel for errors.Is checks
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return domsync.ErrRateLimited
	}
	return domsync.ErrExternalAPI
}

// Client talks to the QuickBooks Online v3 API. Tokens come from the
// TokenManager on every call.
type Client struct {
	config     *Config
	tokens     *TokenManager
	httpClient *http.Client
}

// NewClient creates a QuickBooks API client
func NewClient(config *Config, tokens *TokenManager) (*Client, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// IsEnabled reports whether the integration is configured and turned on
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// request performs one API call against the connected company. A 401 is
// retried once after a forced token refresh.
func (c *Client) request(ctx context.Context, method, path string, body any, out any) error {
	if !c.config.Enabled {
		return domsync.ErrSyncDisabled
	}

	token, realmID, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	status, respBody, err := c.do(ctx, method, path, token, realmID, body)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		token, realmID, err = c.tokens.ForceRefresh(ctx)
		if err != nil {
			return err
		}
		status, respBody, err = c.do(ctx, method, path, token, realmID, body)
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		apiErr := &APIError{StatusCode: status}
		var envelope struct {
			Fault *Fault `json:"Fault"`
		}
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Fault != nil {
			apiErr.Fault = envelope.Fault
		}
		return apiErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("quickbooks: failed to parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token, realmID string, body any) (int, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("quickbooks: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	fullURL := fmt.Sprintf("%s/%s%s", c.config.BaseURL, url.PathEscape(realmID), path)
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("quickbooks: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", domsync.ErrExternalAPI, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("quickbooks: failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// query runs a QuickBooks SQL-like query and decodes the QueryResponse
func (c *Client) query(ctx context.Context, q string, out any) error {
	path := "/query?query=" + url.QueryEscape(q)
	return c.request(ctx, http.MethodGet, path, nil, out)
}
