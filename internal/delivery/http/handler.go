package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/labelscan/backend/internal/domain"
	"github.com/labelscan/backend/internal/usecase"
)

const (
	serviceName    = "labelscan-backend"
	serviceVersion = "1.0.0"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	labelService *usecase.LabelService
	logger       *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(labelService *usecase.LabelService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		labelService: labelService,
		logger:       logger,
	}
}

// ParseRequest is the body of a single parse request
type ParseRequest struct {
	Text string `json:"text"`
}

// BatchParseRequest is the body of a batch parse request
type BatchParseRequest struct {
	Texts []string `json:"texts"`
}

// ServiceInfo describes the service and its endpoints
func (h *Handler) ServiceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     serviceName,
		"version":     serviceVersion,
		"description": "Parse nutrition label fields out of OCR text",
		"endpoints": gin.H{
			"health":      "/health",
			"ping":        "/ping",
			"parse":       "/api/v1/labels/parse",
			"parse_batch": "/api/v1/labels/parse/batch",
			"fields":      "/api/v1/labels/fields",
		},
		"status": "running",
	})
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// Ping answers connectivity checks
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "pong",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
	})
}

// ParseLabel handles single-text parse requests
func (h *Handler) ParseLabel(c *gin.Context) {
	if h.labelService == nil {
		h.notConfigured(c)
		return
	}

	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	result, err := h.labelService.Parse(c.Request.Context(), req.Text)
	if err != nil {
		h.parseError(c, err)
		return
	}

	message := "Text parsed successfully"
	if result.Record.Error != "" {
		message = "Text received but label parsing failed"
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         message,
		"rawText":         result.RawText,
		"textLength":      result.TextLength,
		"nutritionalData": result.Record,
		"cached":          result.Cached,
	})
}

// ParseLabelBatch handles multi-text parse requests
func (h *Handler) ParseLabelBatch(c *gin.Context) {
	if h.labelService == nil {
		h.notConfigured(c)
		return
	}

	var req BatchParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	items, err := h.labelService.ParseBatch(c.Request.Context(), req.Texts)
	if err != nil {
		h.parseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(items),
		"results": items,
	})
}

// ListFields returns the field table in priority order
func (h *Handler) ListFields(c *gin.Context) {
	if h.labelService == nil {
		h.notConfigured(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fields": h.labelService.Fields(),
	})
}

func (h *Handler) notConfigured(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"success": false,
		"error":   "label service not configured",
	})
}

func (h *Handler) bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"success": false,
			"error":   "Request too large",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid request",
		"message": err.Error(),
	})
}

// parseError maps service errors to HTTP responses
func (h *Handler) parseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNoTextDetected):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "No text found",
			"message": "No readable text was found in the request",
		})
	case errors.Is(err, domain.ErrTextTooLarge), errors.Is(err, domain.ErrBatchTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"success": false,
			"error":   "Request too large",
			"message": err.Error(),
		})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request",
			"message": err.Error(),
		})
	default:
		h.logger.Error("label parsing failed",
			"error", err,
			"request_id", c.GetString(requestIDKey))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Text parsing failed",
			"message": err.Error(),
		})
	}
}
