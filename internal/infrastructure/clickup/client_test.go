package clickup

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domsync "github.com/fenestra/backend/internal/domain/sync"
)

func testConfig(baseURL string) *Config {
	return &Config{
		Enabled:        true,
		APIToken:       "pk_test_token",
		BaseURL:        baseURL,
		CustomerListID: "901",
		ContactListID:  "902",
		LeadListID:     "903",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)
	return client, srv
}

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid enabled config",
			config:  testConfig("http://localhost"),
			wantErr: false,
		},
		{
			name:    "disabled config needs nothing",
			config:  &Config{Enabled: false},
			wantErr: false,
		},
		{
			name: "missing token",
			config: &Config{
				Enabled:        true,
				CustomerListID: "1",
				ContactListID:  "2",
				LeadListID:     "3",
			},
			wantErr: true,
		},
		{
			name: "missing list IDs",
			config: &Config{
				Enabled:  true,
				APIToken: "pk_x",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	config := &Config{}
	config.ApplyDefaults()

	assert.Equal(t, DefaultBaseURL, config.BaseURL)
	assert.Equal(t, 30, config.TimeoutSeconds)
}

// ---------------------------------------------------------------------------
// Client Tests
// ---------------------------------------------------------------------------

func TestClient_GetTask(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/task/abc123", r.URL.Path)
		assert.Equal(t, "pk_test_token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           "abc123",
			"name":         "Acme Windows Ltd",
			"status":       map[string]any{"status": "active"},
			"date_updated": "1735689600000",
			"custom_fields": []map[string]any{
				{"id": "f-1", "name": "Phone", "type": "text", "value": "555-0100"},
			},
		})
	})

	task, err := client.GetTask(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", task.ID)
	assert.Equal(t, "Acme Windows Ltd", task.Name)
	assert.Equal(t, "active", task.Status.Status)
	assert.Equal(t, time.UnixMilli(1735689600000), task.UpdatedAt())

	field := task.Field("Phone")
	require.NotNil(t, field)
	assert.Equal(t, "555-0100", field.Value)
	assert.Nil(t, task.Field("Missing"))
}

func TestClient_CreateTask(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/list/901/task", r.URL.Path)

		var req CreateTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "New Customer", req.Name)

		_ = json.NewEncoder(w).Encode(map[string]any{"id": "t-new", "name": req.Name})
	})

	task, err := client.CreateTask(context.Background(), "901", &CreateTaskRequest{Name: "New Customer"})
	require.NoError(t, err)
	assert.Equal(t, "t-new", task.ID)
}

func TestClient_APIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"err":"Task not found","ECODE":"ITEM_013"}`))
	})

	_, err := client.GetTask(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domsync.ErrExternalAPI)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "ITEM_013", apiErr.Code)
	assert.Equal(t, "Task not found", apiErr.Message)
}

func TestClient_RateLimited(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetTask(context.Background(), "abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, domsync.ErrRateLimited)

	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 15*time.Second, rlErr.RetryAfter)
}

func TestClient_RateLimitedDefaultDelay(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetTask(context.Background(), "abc")
	require.Error(t, err)

	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, defaultRetryAfter, rlErr.RetryAfter)
}

func TestClient_RateLimitSnapshot(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-ratelimit-limit", "100")
		w.Header().Set("x-ratelimit-remaining", "42")
		_, _ = w.Write([]byte(`{"id":"t1","name":"x","status":{"status":"open"},"list":{"id":"901"}}`))
	})

	_, err := client.GetTask(context.Background(), "t1")
	require.NoError(t, err)

	status := client.RateLimit()
	assert.Equal(t, 100, status.Limit)
	assert.Equal(t, 42, status.Remaining)
}

func TestClient_Disabled(t *testing.T) {
	client, err := NewClient(&Config{Enabled: false})
	require.NoError(t, err)

	_, err = client.GetTask(context.Background(), "abc")
	assert.ErrorIs(t, err, domsync.ErrSyncDisabled)
}

func TestClient_SetCustomField(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/task/t1/field/f1", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "555-0100", body["value"])

		_, _ = w.Write([]byte(`{}`))
	})

	err := client.SetCustomField(context.Background(), "t1", "f1", "555-0100")
	assert.NoError(t, err)
}

// ---------------------------------------------------------------------------
// Field Cache Tests
// ---------------------------------------------------------------------------

type stubFieldLister struct {
	calls int
	defs  []FieldDefinition
	err   error
}

func (s *stubFieldLister) GetListCustomFields(_ context.Context, _ string) ([]FieldDefinition, error) {
	s.calls++
	return s.defs, s.err
}

func TestFieldCache_ResolvesAndCaches(t *testing.T) {
	lister := &stubFieldLister{defs: []FieldDefinition{
		{ID: "f-phone", Name: "Phone", Type: "text"},
		{ID: "f-email", Name: "Email", Type: "email"},
	}}
	cache := NewFieldCache(lister)

	id, err := cache.FieldID(context.Background(), "901", "Phone")
	require.NoError(t, err)
	assert.Equal(t, "f-phone", id)

	id, err = cache.FieldID(context.Background(), "901", "Email")
	require.NoError(t, err)
	assert.Equal(t, "f-email", id)

	// One fetch covers both lookups
	assert.Equal(t, 1, lister.calls)
}

func TestFieldCache_UnknownField(t *testing.T) {
	lister := &stubFieldLister{defs: []FieldDefinition{{ID: "f-1", Name: "Phone"}}}
	cache := NewFieldCache(lister)

	_, err := cache.FieldID(context.Background(), "901", "Fax")
	assert.Error(t, err)
}

func TestFieldCache_Invalidate(t *testing.T) {
	lister := &stubFieldLister{defs: []FieldDefinition{{ID: "f-1", Name: "Phone"}}}
	cache := NewFieldCache(lister)

	_, err := cache.FieldID(context.Background(), "901", "Phone")
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)

	cache.Invalidate()

	_, err = cache.FieldID(context.Background(), "901", "Phone")
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
}

// ---------------------------------------------------------------------------
// Webhook Signature Tests
// ---------------------------------------------------------------------------

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"event":"taskUpdated","task_id":"t1"}`)

	assert.True(t, VerifyWebhookSignature(secret, body, signBody(secret, body)))
	assert.False(t, VerifyWebhookSignature(secret, body, signBody("wrong", body)))
	assert.False(t, VerifyWebhookSignature(secret, []byte(`tampered`), signBody(secret, body)))
	assert.False(t, VerifyWebhookSignature("", body, signBody(secret, body)))
	assert.False(t, VerifyWebhookSignature(secret, body, ""))
}

func TestMillis_Time(t *testing.T) {
	assert.True(t, Millis("").Time().IsZero())
	assert.True(t, Millis("not-a-number").Time().IsZero())
	assert.Equal(t, time.UnixMilli(1735689600000), Millis("1735689600000").Time())
	assert.Equal(t, Millis("1735689600000"), NewMillis(time.UnixMilli(1735689600000)))
}
