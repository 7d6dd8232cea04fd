// Package main provides the workshop sample app, a small HTTP service used to
// demonstrate deploying an application with a managed PostgreSQL database.
//
// This service exposes REST APIs for:
//   - Liveness and database health checks
//   - Listing and creating items
//   - Reporting environment facts
//   - Exporting item snapshots to object storage
//
// The service runs on port 3000 and supports:
//   - Prometheus metrics
//   - Structured logging
//   - Optional Redis list cache and RabbitMQ item events
//
// Usage:
//
//	./sample-app
//
// Environment:
//
//	PORT: Server port (default: 3000)
//	ENVIRONMENT: Environment name (default: development)
//	DATABASE_CONNECTION_STRING or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sample-app/config"
	"sample-app/handlers"
	"sample-app/logger"
	"sample-app/middleware"
	"sample-app/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.EnvironmentName() == config.DefaultEnvironment)
	defer logger.Sync()

	for _, w := range cfg.Warnings {
		logger.Logger.Warn("Invalid configuration value, using default", zap.String("setting", w))
	}

	store := services.NewStore(cfg.Database)
	if err := store.Err(); err != nil {
		logger.Logger.Warn("Database configuration invalid, store operations will fail", zap.Error(err))
	}

	opts, closers := optionalServices(cfg)

	router := setupRouter(cfg, handlers.New(cfg, store, opts...))

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server running",
			zap.String("addr", cfg.Addr()),
			zap.String("environment", cfg.EnvironmentName()),
			zap.String("health_check", "http://localhost"+cfg.Addr()+"/"),
			zap.String("database_health", "http://localhost"+cfg.Addr()+"/health/db"),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	GracefulShutdown(server, cfg)

	for _, closeFn := range closers {
		closeFn()
	}
	store.Close()
	logger.Logger.Info("Server exited")
}

// setupRouter configures and returns the Gin router with all routes and middleware
func setupRouter(cfg config.Config, h *handlers.Handler) *gin.Engine {
	if cfg.EnvironmentName() != config.DefaultEnvironment {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Middleware
	router.Use(middleware.LoggingMiddleware(), middleware.RecoveryMiddleware())

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.Register(router)
	return router
}

// optionalServices connects the collaborators that are configured. A
// configured service that cannot be reached is logged and left out so the
// core API keeps working.
func optionalServices(cfg config.Config) ([]handlers.Option, []func()) {
	var (
		opts    []handlers.Option
		closers []func()
	)

	if cfg.Cache.Addr != "" {
		cache, err := services.NewItemCache(cfg.Cache)
		if err != nil {
			logger.Logger.Warn("Item cache disabled", zap.Error(err))
		} else {
			logger.Logger.Info("Item cache enabled", zap.String("addr", cfg.Cache.Addr), zap.Duration("ttl", cfg.Cache.TTL))
			opts = append(opts, handlers.WithCache(cache))
			closers = append(closers, func() { _ = cache.Close() })
		}
	}

	if cfg.Events.URL != "" {
		events, err := services.NewEventPublisher(cfg.Events)
		if err != nil {
			logger.Logger.Warn("Item events disabled", zap.Error(err))
		} else {
			logger.Logger.Info("Item events enabled", zap.String("queue", cfg.Events.Queue))
			opts = append(opts, handlers.WithEvents(events))
			closers = append(closers, func() { _ = events.Close() })
		}
	}

	if cfg.ObjectStore.Endpoint != "" {
		exporter, err := services.NewExporter(cfg.ObjectStore)
		if err != nil {
			logger.Logger.Warn("Item export disabled", zap.Error(err))
		} else {
			logger.Logger.Info("Item export enabled",
				zap.String("endpoint", cfg.ObjectStore.Endpoint),
				zap.String("bucket", cfg.ObjectStore.Bucket),
			)
			opts = append(opts, handlers.WithExporter(exporter))
		}
	}

	return opts, closers
}

// GracefulShutdown blocks until SIGINT or SIGTERM, then drains in-flight
// requests for at most cfg.ShutdownTimeout
func GracefulShutdown(server *http.Server, cfg config.Config) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Logger.Info("Shutdown signal received: closing HTTP server", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}
}
