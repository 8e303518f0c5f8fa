package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autovolt/lakehouse/internal/handlers"
	"github.com/autovolt/lakehouse/internal/middleware"
)

// Routes builds the HTTP router
func (a *App) Routes(limiter *middleware.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestMetrics(a.Metrics))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	runHandler := handlers.NewRunHandler(a.Runner, a.ParseRequest)
	trigger := router.Group("/")
	trigger.Use(middleware.RateLimit(limiter))
	{
		trigger.GET("/", runHandler.Trigger)
		trigger.POST("/", runHandler.Trigger)
		trigger.GET("/run", runHandler.Trigger)
		trigger.POST("/run", runHandler.Trigger)
	}

	api := router.Group("/api/v1")
	{
		historyHandler := handlers.NewHistoryHandler(a.Notifier)
		api.GET("/runs", historyHandler.List)
	}

	return router
}
