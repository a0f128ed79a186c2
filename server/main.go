package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"background-remover/internal/config"
	"background-remover/internal/http/handlers"
	"background-remover/internal/http/routes"
	"background-remover/internal/services/processor"
	"background-remover/internal/services/queue"
	"background-remover/internal/services/ratelimit"
	"background-remover/internal/services/rembg"
	"background-remover/internal/services/storage"
	"background-remover/internal/services/validator"
)

func main() {
	// Load configuration first; the logger mode depends on it
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := newLogger(cfg.Server.Debug)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Background context for the janitor and queue workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	imageValidator := validator.New(cfg.Storage.MaxContentLength)
	rembgClient := rembg.New(cfg.Rembg, logger)
	optimizer := processor.NewOptimizer()

	store, err := storage.New(cfg.Storage, cfg.Supabase, logger)
	if err != nil {
		logger.Fatal("Failed to initialize artifact store", zap.Error(err))
	}
	store.StartJanitor(ctx, cfg.Storage.CleanupInterval, cfg.Storage.FileMaxAge)

	limiter, err := newLimiter(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize rate limiter", zap.Error(err))
	}
	defer limiter.Close()

	queueService, err := queue.NewService(cfg.Queue, rembgClient, optimizer, store, logger)
	if err != nil {
		logger.Warn("Failed to initialize queue service, async endpoints disabled", zap.Error(err))
		queueService = nil
	} else {
		defer queueService.Close()
		if err := queueService.StartWorkers(ctx); err != nil {
			logger.Fatal("Failed to start queue workers", zap.Error(err))
		}
		queueService.StartPruner(ctx, cfg.Storage.CleanupInterval, cfg.Storage.FileMaxAge)
	}

	// Initialize handlers and router
	handler := handlers.New(imageValidator, rembgClient, optimizer, store, queueService, limiter, logger, cfg)
	router := routes.NewRouter(handler, limiter, cfg, logger)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newLimiter wires the limiter to the configured backing store. Redis makes
// budgets hold across multiple server processes; memory is single-process.
func newLimiter(cfg *config.Config, logger *zap.Logger) (*ratelimit.Limiter, error) {
	var store ratelimit.Store
	if cfg.RateLimit.Storage == config.RateLimitRedis {
		redisStore, err := ratelimit.NewRedisStore(cfg.RateLimit.Redis)
		if err != nil {
			return nil, err
		}
		store = redisStore
		logger.Info("Rate limiting backed by redis", zap.String("addr", cfg.RateLimit.Redis.Addr))
	} else {
		store = ratelimit.NewMemoryStore()
		logger.Info("Rate limiting backed by in-process memory")
	}

	return ratelimit.New(store, cfg.RateLimit.Routes, logger), nil
}
