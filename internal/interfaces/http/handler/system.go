package handler

import (
	"net/http"
	"time"

	"github.com/fenestra/backend/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
)

// SystemHandler serves health and readiness endpoints
type SystemHandler struct {
	db      *persistence.Database
	version string
	started time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database, version string) *SystemHandler {
	return &SystemHandler{db: db, version: version, started: time.Now()}
}

// Health handles GET /health. It reports degraded rather than failing
// outright when the database is unreachable, so load balancers keep the
// process in rotation while the sync log stays inspectable.
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	dbStatus := "ok"

	if err := h.db.Ping(); err != nil {
		status, dbStatus = "degraded", "unavailable"
	}

	body := gin.H{
		"status":   status,
		"database": dbStatus,
		"version":  h.version,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	}
	if c.Query("verbose") == "1" {
		if stats, err := h.db.Stats(); err == nil {
			body["db_pool"] = stats
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, body)
}

// RegisterRoutes registers system routes on the root group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}
