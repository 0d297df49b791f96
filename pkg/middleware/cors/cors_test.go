package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, allowedOrigins []string, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(allowedOrigins))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAllowedOriginIsEchoed(t *testing.T) {
	w := serve(t, []string{"https://portal.example.com"}, http.MethodGet, "https://portal.example.com")
	require.Equal(t, "https://portal.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestUnknownOriginGetsNoAllowHeader(t *testing.T) {
	w := serve(t, []string{"https://portal.example.com"}, http.MethodGet, "https://evil.example.com")
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightShortCircuits(t *testing.T) {
	w := serve(t, nil, http.MethodOptions, "https://portal.example.com")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, allowMethods, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestDownloadFilenameHeaderIsExposed(t *testing.T) {
	w := serve(t, nil, http.MethodGet, "https://portal.example.com")
	require.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
