package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/homecare/visit-api/internal/handler/health"
	promhandler "github.com/homecare/visit-api/internal/handler/prometheus"
	"github.com/homecare/visit-api/internal/middleware"
)

// Handler is a resource group mounted under /api/v1.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	health   *health.Handler
	metrics  *promhandler.Handler
	handlers []Handler
}

type RouterConfig struct {
	Mode          string
	ServiceName   string
	Tracing       bool
	RateLimit     rate.Limit
	RateBurst     int
	CORSConfig    middleware.CORSConfig
	SizeLimit     middleware.SizeLimitConfig
	Timeout       time.Duration
	UploadDir     string
	UploadURLPath string
}

func NewRouter(
	health *health.Handler,
	metrics *promhandler.Handler,
	config RouterConfig,
	handlers ...Handler,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()
	r := &Router{
		engine:   engine,
		health:   health,
		metrics:  metrics,
		handlers: handlers,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		metrics.Middleware(),
	)
	if config.Tracing {
		engine.Use(otelgin.Middleware(config.ServiceName))
	}
	engine.Use(
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	engine.Use(
		middleware.SizeLimit(config.SizeLimit),
		middleware.Timeout(config.Timeout),
	)

	if config.UploadDir != "" && config.UploadURLPath != "" {
		engine.Static(config.UploadURLPath, config.UploadDir)
	}

	return r
}

func (r *Router) Setup() {
	r.health.RegisterRoutes(r.engine)
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group("/api/v1")
	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
