package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"social-analytics/utils"
)

// NewRouter builds the gin engine with all API routes.
func NewRouter(h *Handler, logger *utils.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	SetupRoutes(router, h)
	return router
}

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, h *Handler) {
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v := router.Group("/api")
	v.POST("/accounts", h.AddAccount)
	v.GET("/accounts", h.ListAccounts)
	v.GET("/accounts/:id/history", h.History)
	v.GET("/analytics", h.Analytics)
	v.GET("/analytics/export", h.ExportAnalytics)
	v.POST("/post_update", h.PostUpdate)
	v.GET("/jobs", h.ListJobs)
	v.GET("/jobs/:id", h.GetJob)

	// Paths used by the dashboard scripts
	v.POST("/add_account", h.AddAccount)
	v.GET("/get_analytics", h.Analytics)
}

func requestLogger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.With("status", c.Writer.Status()).
			Debug("[api] %s %s (%v)", c.Request.Method, c.Request.URL.Path, time.Since(start))
	}
}
