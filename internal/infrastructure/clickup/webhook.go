package clickup

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// WebhookEvent is the payload ClickUp posts to a registered endpoint
type WebhookEvent struct {
	WebhookID    string        `json:"webhook_id"`
	Event        string        `json:"event"`
	TaskID       string        `json:"task_id"`
	ListID       string        `json:"list_id,omitempty"`
	HistoryItems []HistoryItem `json:"history_items,omitempty"`
}

// HistoryItem describes one change in a webhook event
type HistoryItem struct {
	ID     string          `json:"id"`
	Field  string          `json:"field"`
	Before json.RawMessage `json:"before,omitempty"`
	After  json.RawMessage `json:"after,omitempty"`
	Date   Millis          `json:"date,omitempty"`
}

// Webhook event names used by the sync engine
const (
	EventTaskCreated       = "taskCreated"
	EventTaskUpdated       = "taskUpdated"
	EventTaskDeleted       = "taskDeleted"
	EventTaskStatusUpdated = "taskStatusUpdated"
)

// VerifyWebhookSignature checks the X-Signature header against the raw
// request body using HMAC-SHA256 with the shared secret. The comparison
// is constant time.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
