package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fenestra/backend/internal/application/crmsync"
	"github.com/fenestra/backend/internal/domain/shared"
	"github.com/fenestra/backend/internal/infrastructure/clickup"
	"github.com/fenestra/backend/internal/infrastructure/config"
	"github.com/fenestra/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives ClickUp webhook deliveries. Processing failures
// after signature verification still return 200 so ClickUp does not retry
// indefinitely; failures surface in the sync log instead.
type WebhookHandler struct {
	BaseHandler
	secret   string
	dedupTTL time.Duration
	trigger  *crmsync.Trigger
	dedup    shared.IdempotencyStore
	logger   *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(cfg clickup.Config, syncCfg config.SyncConfig, trigger *crmsync.Trigger, dedup shared.IdempotencyStore, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:   cfg.WebhookSecret,
		dedupTTL: syncCfg.WebhookDedupTTL,
		trigger:  trigger,
		dedup:    dedup,
		logger:   logger,
	}
}

// ClickUp handles POST /webhooks/clickup
func (h *WebhookHandler) ClickUp(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "cannot read request body")
		return
	}

	signature := c.GetHeader("X-Signature")
	if !clickup.VerifyWebhookSignature(h.secret, body, signature) {
		h.logger.Warn("webhook signature verification failed",
			zap.String("remote_addr", c.ClientIP()))
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "invalid webhook signature")
		return
	}

	var event clickup.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.BadRequest(c, "malformed webhook payload")
		return
	}
	if event.TaskID == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	first, err := h.dedup.MarkProcessed(c.Request.Context(), eventKey(event), h.dedupTTL)
	if err != nil {
		// Dedup store failures degrade to at-least-once delivery.
		h.logger.Warn("webhook dedup check failed", zap.Error(err))
	} else if !first {
		h.logger.Debug("duplicate webhook delivery dropped",
			zap.String("event", event.Event),
			zap.String("task_id", event.TaskID))
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	switch event.Event {
	case clickup.EventTaskCreated, clickup.EventTaskUpdated, clickup.EventTaskStatusUpdated:
		h.trigger.RequestTaskPull(event.TaskID)
	case clickup.EventTaskDeleted:
		h.trigger.RequestTaskUnlink(event.TaskID)
	default:
		h.logger.Debug("ignoring webhook event",
			zap.String("event", event.Event),
			zap.String("task_id", event.TaskID))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// eventKey derives a dedup key for one delivery. ClickUp assigns a unique
// ID per history item; deliveries without history fall back to the
// webhook, event and task tuple.
func eventKey(event clickup.WebhookEvent) string {
	if len(event.HistoryItems) > 0 && event.HistoryItems[0].ID != "" {
		return "clickup:" + event.HistoryItems[0].ID
	}
	return "clickup:" + event.WebhookID + ":" + event.Event + ":" + event.TaskID
}

// RegisterRoutes registers webhook routes on the root group
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/clickup", h.ClickUp)
}
