package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"background-remover/internal/config"
	"background-remover/internal/models"
	"background-remover/internal/services/processor"
	"background-remover/internal/services/queue"
	"background-remover/internal/services/ratelimit"
	"background-remover/internal/services/rembg"
	"background-remover/internal/services/storage"
	"background-remover/internal/services/validator"
)

const (
	apiVersion  = "1.0.0"
	serviceName = "background-remover"
)

// Handler orchestrates the request pipeline: validator, background removal,
// optimizer, artifact store. The rate-limit gate runs as middleware before
// any of this is reached.
type Handler struct {
	validator *validator.Validator
	rembg     *rembg.Client
	optimizer *processor.Optimizer
	store     *storage.ArtifactStore
	queue     *queue.Service // nil when RabbitMQ is unavailable
	limiter   *ratelimit.Limiter
	logger    *zap.Logger
	config    *config.Config
}

func New(
	validator *validator.Validator,
	rembgClient *rembg.Client,
	optimizer *processor.Optimizer,
	store *storage.ArtifactStore,
	queueService *queue.Service,
	limiter *ratelimit.Limiter,
	logger *zap.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		validator: validator,
		rembg:     rembgClient,
		optimizer: optimizer,
		store:     store,
		queue:     queueService,
		limiter:   limiter,
		logger:    logger,
		config:    cfg,
	}
}

// HealthCheck reports overall service health plus per-dependency checks.
func (h *Handler) HealthCheck(c *gin.Context) {
	checks := make(map[string]string)

	if err := h.rembg.Health(c.Request.Context()); err != nil {
		checks["rembg"] = "unhealthy: " + err.Error()
	} else {
		checks["rembg"] = "healthy"
	}

	if pinger, ok := h.limiter.StorePinger(); ok {
		if err := pinger.Ping(c.Request.Context()); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
		} else {
			checks["redis"] = "healthy"
		}
	}

	if h.queue != nil {
		checks["queue"] = "healthy"
	} else {
		checks["queue"] = "not configured"
	}

	overall := "healthy"
	statusCode := http.StatusOK
	for _, status := range checks {
		if status != "healthy" && status != "not configured" {
			overall = "unhealthy"
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(statusCode, models.HealthCheck{
		Status:    overall,
		Service:   serviceName,
		Timestamp: time.Now(),
		Checks:    checks,
	})
}

// Info serves the API index with the current rate-limit configuration.
func (h *Handler) Info(c *gin.Context) {
	rateLimits := make(map[string]string, len(h.limiter.Routes()))
	for route, limit := range h.limiter.Routes() {
		rateLimits[route] = limit.String()
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Background Remover API",
		"version":     apiVersion,
		"rate_limits": rateLimits,
		"endpoints": gin.H{
			"remove_background":         "/remove-background (POST) - Download result as file",
			"remove_background_preview": "/remove-background-preview (POST) - Preview result in browser",
			"remove_background_base64":  "/remove-background-base64 (POST) - Base64 in/out",
			"read_file":                 "/read-file (POST) - Read a stored .txt payload",
			"queue_remove_background":   "/queue/remove-background (POST) - Async processing",
			"queue_job":                 "/queue/job/:id (GET) - Job status",
			"queue_status":              "/queue/status (GET) - Queue occupancy",
			"health":                    "/health (GET)",
		},
	})
}
