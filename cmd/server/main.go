// Command server runs the Sustaina shipping risk HTTP service.
//
//	@title			Sustaina Shipping Risk Brain API
//	@version		1.0
//	@description	Modeled transition-risk scoring and certificates for declared vessel profiles.
//	@BasePath		/
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sustaina/shipping-risk-brain/internal/config"
	"github.com/sustaina/shipping-risk-brain/internal/errors"
	"github.com/sustaina/shipping-risk-brain/internal/monitoring"
	"github.com/sustaina/shipping-risk-brain/internal/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logging setup
	appLogger := monitoring.NewLoggerWithWriter(os.Stdout, monitoring.ParseLevel(cfg.LogLevel))
	slog.SetDefault(appLogger.Logger)

	if cfg.UsesDefaultSecret() {
		slog.Warn("JWT_SECRET is not set, using the development secret")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	redisClient, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("Continuing without Redis", "error", err)
	}
	defer errors.SafeClose(redisClient, "redis")

	a, err := newApp(cfg, appLogger, redisClient)
	if err != nil {
		slog.Error("Failed to initialize service", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	// Purge old issuance and session rows daily
	go a.issuances.ScheduleCleanup(ctx, 24*time.Hour, cfg.Certificate.Retention)

	r, err := setupRouter(a)
	if err != nil {
		slog.Error("Failed to build router", "error", err)
		os.Exit(1)
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "version", cfg.Version, "rate_limit_backend", backendName(redisClient))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func backendName(r *ratelimit.RedisClient) string {
	if r.IsEnabled() {
		return "redis"
	}
	return "memory"
}
