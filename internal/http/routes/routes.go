package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"background-remover/internal/config"
	"background-remover/internal/http/handlers"
	"background-remover/internal/http/middleware"
	"background-remover/internal/services/ratelimit"
)

type Router struct {
	handler *handlers.Handler
	limiter *ratelimit.Limiter
	config  *config.Config
	logger  *zap.Logger
}

func NewRouter(
	handler *handlers.Handler,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		handler: handler,
		limiter: limiter,
		config:  cfg,
		logger:  logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if !r.config.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = r.config.Storage.MaxContentLength

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS(r.config.Server.CORSOrigins))
	router.Use(middleware.SecurityHeaders())

	limit := func(route string) gin.HandlerFunc {
		return middleware.RateLimit(r.limiter, route)
	}

	router.GET("/", limit(config.RouteInfo), r.handler.Info)
	router.GET("/health", limit(config.RouteHealth), r.handler.HealthCheck)

	router.POST("/remove-background", limit(config.RouteRemoveBackground), r.handler.RemoveBackground)
	router.POST("/remove-background-preview", limit(config.RoutePreview), r.handler.RemoveBackgroundPreview)
	router.POST("/remove-background-base64", limit(config.RouteBase64), r.handler.RemoveBackgroundBase64)
	router.POST("/read-file", limit(config.RouteReadFile), r.handler.ReadFile)

	q := router.Group("/queue")
	{
		q.POST("/remove-background", limit(config.RouteQueueSubmit), r.handler.QueueSubmit)
		q.GET("/status", limit(config.RouteQueueStatus), r.handler.QueueStatus)
		q.GET("/job/:id", limit(config.RouteQueueStatus), r.handler.QueueJob)
		q.GET("/job/:id/result", limit(config.RouteQueueStatus), r.handler.QueueJobResult)
	}

	return router
}
