// Command server runs the campus thread store API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus/internal/cache"
	"campus/internal/config"
	"campus/internal/database"
	"campus/internal/middleware"
	"campus/internal/observability"
	"campus/internal/reconcile"
	"campus/internal/repository"
	"campus/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// @title Campus API
// @version 1.0
// @description Threaded posts, comments, replies and likes for the campus network

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  cfg.ServiceName,
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		SamplerRatio: cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	redisCache := cache.Connect(cfg.RedisURL)

	reconciler := reconcile.New(repository.NewCounterRepository(db, redisCache))
	scheduler, err := reconciler.Schedule(cfg.ReconcileSchedule)
	if err != nil {
		log.Fatalf("Failed to schedule counter reconciliation: %v", err)
	}

	app := server.NewServer(cfg, db, redisCache).App()

	res := &resources{
		app:             app,
		scheduler:       scheduler,
		cache:           redisCache,
		db:              db,
		shutdownTracing: shutdownTracing,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := res.shutdown(ctx); err != nil {
			middleware.Logger.Error("shutdown finished with errors", slog.String("error", err.Error()))
		}
	}()

	middleware.Logger.Info("server starting", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	<-done
	middleware.Logger.Info("server stopped")
}

// resources are released in dependency order: stop taking requests and jobs,
// then drop the cache and pool, then flush spans.
type resources struct {
	app             *fiber.App
	scheduler       *cron.Cron
	cache           *cache.Cache
	db              *gorm.DB
	shutdownTracing func(context.Context) error
}

func (r *resources) shutdown(ctx context.Context) error {
	var errs []error
	if r.app != nil {
		if err := r.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http: %w", err))
		}
	}
	if r.scheduler != nil {
		select {
		case <-r.scheduler.Stop().Done():
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("reconcile: %w", ctx.Err()))
		}
	}
	if err := r.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("redis: %w", err))
	}
	if r.db != nil {
		if err := database.Close(r.db); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	if r.shutdownTracing != nil {
		if err := r.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing: %w", err))
		}
	}
	return errors.Join(errs...)
}
