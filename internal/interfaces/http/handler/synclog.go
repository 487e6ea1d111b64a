package handler

import (
	"strconv"
	"time"

	"github.com/fenestra/backend/internal/application/crmsync"
	domsync "github.com/fenestra/backend/internal/domain/sync"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
	defaultLogSince = 24 * time.Hour
)

// SyncLogHandler exposes read-only views over the sync log
type SyncLogHandler struct {
	BaseHandler
	logs *crmsync.LogService
}

// NewSyncLogHandler creates a new SyncLogHandler
func NewSyncLogHandler(logs *crmsync.LogService) *SyncLogHandler {
	return &SyncLogHandler{logs: logs}
}

func logLimit(c *gin.Context) int {
	limit := defaultLogLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}
	return limit
}

func logSince(c *gin.Context) (time.Time, bool) {
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, false
		}
		return since, true
	}
	return time.Now().Add(-defaultLogSince), true
}

// Recent handles GET /sync/logs
func (h *SyncLogHandler) Recent(c *gin.Context) {
	entries, err := h.logs.Recent(c.Request.Context(), logLimit(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Failures handles GET /sync/logs/failed
func (h *SyncLogHandler) Failures(c *gin.Context) {
	since, ok := logSince(c)
	if !ok {
		h.BadRequest(c, "invalid since timestamp, expected RFC 3339")
		return
	}
	entries, err := h.logs.RecentFailures(c.Request.Context(), since, logLimit(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// EntityHistory handles GET /sync/logs/:entity_type/:id
func (h *SyncLogHandler) EntityHistory(c *gin.Context) {
	entityType := domsync.EntityType(c.Param("entity_type"))
	switch entityType {
	case domsync.EntityTypeCustomer, domsync.EntityTypeContact, domsync.EntityTypeProject,
		domsync.EntityTypeInvoice, domsync.EntityTypePurchaseOrder,
		domsync.EntityTypeVendor, domsync.EntityTypeItem, domsync.EntityTypeEstimate:
	default:
		h.BadRequest(c, "unknown entity type")
		return
	}
	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid entity ID")
		return
	}

	entries, err := h.logs.EntityHistory(c.Request.Context(), entityType, entityID, logLimit(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Summary handles GET /sync/logs/summary
func (h *SyncLogHandler) Summary(c *gin.Context) {
	since, ok := logSince(c)
	if !ok {
		h.BadRequest(c, "invalid since timestamp, expected RFC 3339")
		return
	}
	counts, err := h.logs.Summary(c.Request.Context(), since)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := gin.H{
		"since":    since,
		"success":  counts[domsync.OutcomeSuccess],
		"failed":   counts[domsync.OutcomeFailed],
		"conflict": counts[domsync.OutcomeConflict],
		"skipped":  counts[domsync.OutcomeSkipped],
	}
	h.Success(c, out)
}

// RegisterRoutes registers sync log routes on the API group
func (h *SyncLogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	logs := rg.Group("/sync/logs")
	logs.GET("", h.Recent)
	logs.GET("/failed", h.Failures)
	logs.GET("/summary", h.Summary)
	logs.GET("/:entity_type/:id", h.EntityHistory)
}
