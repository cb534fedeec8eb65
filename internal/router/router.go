package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/simonw/screenshot-worker/internal/config"
	"github.com/simonw/screenshot-worker/internal/handlers"
	"github.com/simonw/screenshot-worker/internal/middleware"
)

// New builds the gin engine with the middleware chain and routes.
// Recovery is first so a panic anywhere below maps to a bare 500 with
// the detail logged, never returned.
func New(cfg *config.Config, screenshot *handlers.ScreenshotHandler, stats *handlers.Stats, logger *slog.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.WithLogging(logger))

	metricsMiddleware := middleware.NewMetricsMiddleware()
	engine.Use(metricsMiddleware.WithMetrics())

	engine.GET("/health", handlers.HealthCheck)
	engine.GET("/metrics", metricsMiddleware.Handle)
	engine.GET("/stats", stats.Handle)
	engine.GET("/", middleware.WithRateLimit(cfg.RateLimit), screenshot.Handle)

	return engine
}
