package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/homecare/visit-api/internal/handler/health"
	promhandler "github.com/homecare/visit-api/internal/handler/prometheus"
	"github.com/homecare/visit-api/internal/middleware"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func newTestRouter() *gin.Engine {
	ok := func(context.Context) error { return nil }
	r := NewRouter(
		health.NewHandler(ok, nil),
		promhandler.New("test", prometheus.NewRegistry()),
		RouterConfig{Mode: gin.TestMode, SizeLimit: middleware.DefaultSizeLimitConfig()},
		pingHandler{},
	)
	r.Setup()
	return r.Engine()
}

func TestRoutesMounted(t *testing.T) {
	engine := newTestRouter()

	for path, want := range map[string]int{
		"/health":      http.StatusOK,
		"/health/live": http.StatusOK,
		"/metrics":     http.StatusOK,
		"/api/v1/ping": http.StatusOK,
		"/api/v1/nope": http.StatusNotFound,
		"/ping":        http.StatusNotFound,
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestResponsesCarryRequestIDAndSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
