package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, reqID string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var captured string
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		captured = Value(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	if reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}
	r.ServeHTTP(w, req)
	return w, captured
}

func TestMiddlewarePropagatesInboundID(t *testing.T) {
	w, captured := serve(t, "portal-abc-123")
	require.Equal(t, "portal-abc-123", captured)
	require.Equal(t, "portal-abc-123", w.Header().Get("X-Request-ID"))
}

func TestMiddlewareGeneratesIDWhenMissing(t *testing.T) {
	w, captured := serve(t, "")
	require.NotEmpty(t, captured)
	require.Equal(t, captured, w.Header().Get("X-Request-ID"))
}

func TestMiddlewareReplacesOversizedID(t *testing.T) {
	oversized := strings.Repeat("x", maxInboundLen+1)
	w, captured := serve(t, oversized)
	require.NotEqual(t, oversized, captured)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
