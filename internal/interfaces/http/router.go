// Package http assembles the gin router and HTTP server.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/partscout/partscout/internal/config"
	"github.com/partscout/partscout/internal/infrastructure/monitoring/logging"
	"github.com/partscout/partscout/internal/interfaces/http/handlers"
	"github.com/partscout/partscout/internal/interfaces/http/middleware"
)

// RouterDeps carries everything the router wires together.  Metrics and
// MetricsHandler may be nil; the routes and middleware degrade
// accordingly.  RateLimiter may be supplied by callers that retune it at
// runtime; when nil one is built from the config.
type RouterDeps struct {
	Config         *config.Config
	Logger         logging.Logger
	ScoreHandler   *handlers.ScoreHandler
	HealthHandler  *handlers.HealthHandler
	Metrics        middleware.HTTPObserver
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
}

// NewRouter builds the full middleware chain and route table.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(deps.Config.Server.Mode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORS())
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	router.GET("/health", deps.HealthHandler.Live)
	router.GET("/ready", deps.HealthHandler.Ready)
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(
			deps.Config.Server.RateLimitRPS, deps.Config.Server.RateLimitBurst)
	}

	v1 := router.Group("/api/v1", limiter.Middleware())
	{
		v1.POST("/listings/score", deps.ScoreHandler.Score)
		v1.POST("/listings/analyze", deps.ScoreHandler.Analyze)
		v1.GET("/scores", deps.ScoreHandler.List)
		v1.GET("/scores/:id", deps.ScoreHandler.Get)
	}

	return router
}
