package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/labelscan/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *slog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if cfg.RateLimit.PerIP > 0 {
		router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	}

	router.GET("/", handler.ServiceInfo)
	router.GET("/health", handler.HealthCheck)
	router.GET("/ping", handler.Ping)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		labels := v1.Group("/labels")
		{
			labels.POST("/parse", BodyLimitMiddleware(parseBodyLimit(cfg)), handler.ParseLabel)
			labels.POST("/parse/batch", BodyLimitMiddleware(batchBodyLimit(cfg)), handler.ParseLabelBatch)
			labels.GET("/fields", handler.ListFields)
		}
	}

	return router
}

// bodyOverhead covers JSON framing around the texts
const bodyOverhead = 64 << 10

// parseBodyLimit caps a single-text body. JSON escaping can double the text.
func parseBodyLimit(cfg *config.Config) int64 {
	return int64(cfg.Parser.MaxTextBytes)*2 + bodyOverhead
}

// batchBodyLimit caps a batch body holding MaxBatchSize maximum-size texts
func batchBodyLimit(cfg *config.Config) int64 {
	batch := int64(cfg.Parser.MaxBatchSize)
	if batch < 1 {
		batch = 1
	}
	return int64(cfg.Parser.MaxTextBytes)*2*batch + bodyOverhead
}
