package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nyaya-backend/internal/reviews"
	"nyaya-backend/internal/services/health"
	"nyaya-backend/internal/shared/config"
	"nyaya-backend/internal/shared/metrics"
	"nyaya-backend/internal/shared/server/middleware"
	"nyaya-backend/internal/shared/server/respond"
)

// RouterDeps holds the handlers wired into the router.
type RouterDeps struct {
	Config  config.Config
	Reviews *reviews.Handler
	Health  *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	cfg := deps.Config

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/", func(c *gin.Context) {
		respond.OK(c, gin.H{"name": cfg.AppName, "status": "running"})
	})
	r.GET("/health", func(c *gin.Context) {
		status := deps.Health.Check(c.Request.Context())
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	r.GET("/metrics", metrics.Handler())

	open := r.Group("")
	model := r.Group("")
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		limit := middleware.Limit{Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst}
		model.Use(middleware.RateLimit(middleware.NewLimiter(limit, nil)))
	}
	if deps.Reviews != nil {
		deps.Reviews.RegisterRoutes(open, model)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
