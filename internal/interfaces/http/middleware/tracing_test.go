package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTracing_DisabledIsPassthrough(t *testing.T) {
	cfg := TracingConfig{ServiceName: "test", Enabled: false}
	r := newTestRouter(TracingWithConfig(cfg))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracing_EnabledServesNormally(t *testing.T) {
	// Without a configured tracer provider spans are no-ops; the
	// middleware must still pass requests through untouched.
	r := newTestRouter(Tracing(), SpanErrorMarker())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracedRequestID_PrefersContextValue(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/ping", nil)
	c.Request.Header.Set("X-Request-ID", "header-id")
	c.Set("request_id", "context-id")

	assert.Equal(t, "context-id", tracedRequestID(c))
}

func TestTracedRequestID_TruncatesLongHeader(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/ping", nil)
	c.Request.Header.Set("X-Request-ID", strings.Repeat("a", 300))

	assert.Len(t, tracedRequestID(c), MaxRequestIDLength)
}
