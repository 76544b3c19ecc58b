package main

import (
	"fmt"
	"log"
	"os"

	"github.com/labelscan/backend/config"
	httpDelivery "github.com/labelscan/backend/internal/delivery/http"
	"github.com/labelscan/backend/internal/domain"
	"github.com/labelscan/backend/internal/infrastructure/cache"
	"github.com/labelscan/backend/internal/infrastructure/logging"
	"github.com/labelscan/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, closeLog, err := logging.Setup(logging.Config{
		Level:      cfg.Logging.Level,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	logger.Info("starting LabelScan backend",
		"version", "1.0.0",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port)

	// Initialize infrastructure dependencies
	var recordCache domain.RecordCache
	if cfg.Cache.Type == "memory" {
		recordCache = cache.NewMemoryCache(cfg.Cache.Size, cfg.Cache.TTL)
		logger.Info("record cache enabled", "size", cfg.Cache.Size, "ttl", cfg.Cache.TTL)
	} else {
		logger.Info("record cache disabled")
	}

	// Initialize usecase layer
	extractor := usecase.NewLabelExtractor(logger)
	labelService := usecase.NewLabelService(
		extractor,
		recordCache,
		logger,
		usecase.LabelServiceConfig{
			MaxTextBytes:     cfg.Parser.MaxTextBytes,
			MaxBatchSize:     cfg.Parser.MaxBatchSize,
			BatchConcurrency: cfg.Parser.BatchConcurrency,
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(labelService, logger)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", "addr", addr, "rate_limit_per_ip", cfg.RateLimit.PerIP)

	if err := router.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		closeLog()
		os.Exit(1)
	}
}
