package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	gosync "sync"
	"time"

	"github.com/fenestra/backend/internal/infrastructure/quickbooks"
	"github.com/fenestra/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// stateTTL bounds how long an OAuth authorization may stay in flight.
const stateTTL = 10 * time.Minute

// QuickBooksHandler drives the OAuth connect flow for the accounting
// integration. Issued states are held in memory; a restart invalidates
// in-flight authorizations, which just means redoing the connect step.
type QuickBooksHandler struct {
	BaseHandler
	tokens *quickbooks.TokenManager
	logger *zap.Logger

	mu     gosync.Mutex
	states map[string]time.Time
}

// NewQuickBooksHandler creates a new QuickBooksHandler
func NewQuickBooksHandler(tokens *quickbooks.TokenManager, logger *zap.Logger) *QuickBooksHandler {
	return &QuickBooksHandler{
		tokens: tokens,
		logger: logger,
		states: make(map[string]time.Time),
	}
}

// Connect handles GET /quickbooks/connect and redirects to the
// authorization page
func (h *QuickBooksHandler) Connect(c *gin.Context) {
	state, err := h.issueState()
	if err != nil {
		h.InternalError(c, "cannot start authorization")
		return
	}
	c.Redirect(http.StatusFound, h.tokens.AuthCodeURL(state))
}

// Callback handles GET /quickbooks/callback
func (h *QuickBooksHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	if !h.consumeState(state) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "unknown or expired authorization state")
		return
	}

	code := c.Query("code")
	realmID := c.Query("realmId")
	if code == "" || realmID == "" {
		h.BadRequest(c, "missing authorization code or realm")
		return
	}

	if err := h.tokens.Exchange(c.Request.Context(), code, realmID); err != nil {
		h.logger.Error("authorization code exchange failed", zap.Error(err))
		h.HandleError(c, err)
		return
	}

	h.logger.Info("accounting integration connected", zap.String("realm_id", realmID))
	h.Success(c, gin.H{"connected": true, "realm_id": realmID})
}

// Disconnect handles POST /quickbooks/disconnect
func (h *QuickBooksHandler) Disconnect(c *gin.Context) {
	if err := h.tokens.Disconnect(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"connected": false})
}

func (h *QuickBooksHandler) issueState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	state := hex.EncodeToString(buf)

	h.mu.Lock()
	defer h.mu.Unlock()
	now := time.Now()
	for s, issued := range h.states {
		if now.Sub(issued) > stateTTL {
			delete(h.states, s)
		}
	}
	h.states[state] = now
	return state, nil
}

func (h *QuickBooksHandler) consumeState(state string) bool {
	if state == "" {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	issued, ok := h.states[state]
	if !ok {
		return false
	}
	delete(h.states, state)
	return time.Since(issued) <= stateTTL
}

// RegisterRoutes registers OAuth routes on the root group
func (h *QuickBooksHandler) RegisterRoutes(rg *gin.RouterGroup) {
	qb := rg.Group("/quickbooks")
	qb.GET("/connect", h.Connect)
	qb.GET("/callback", h.Callback)
	qb.POST("/disconnect", h.Disconnect)
}
