package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

const checkTimeout = 2 * time.Second

// Check probes one dependency.
type Check func(ctx context.Context) error

type Handler struct {
	database Check
	redis    Check
	now      func() time.Time
}

func NewHandler(database, redis Check) *Handler {
	return &Handler{database: database, redis: redis, now: time.Now}
}

// NewHandlerFor probes db and rdb; rdb may be nil when Redis is disabled.
func NewHandlerFor(db *sqlx.DB, rdb *redis.Client) *Handler {
	var redisCheck Check
	if rdb != nil {
		redisCheck = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return NewHandler(db.PingContext, redisCheck)
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.HealthCheck)
	r.GET("/health/live", h.LivenessCheck)
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	database := probe(ctx, h.database)
	cache := probe(ctx, h.redis)

	status, code := "healthy", http.StatusOK
	if database == "disconnected" || cache == "disconnected" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"database":  database,
		"redis":     cache,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func probe(ctx context.Context, check Check) string {
	if check == nil {
		return "disabled"
	}
	if err := check(ctx); err != nil {
		return "disconnected"
	}
	return "connected"
}
