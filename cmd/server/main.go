// Command main is the entry point for the inkpost API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkpost/internal/bootstrap"
	"inkpost/internal/config"
	"inkpost/internal/middleware"
	"inkpost/internal/observability"
	"inkpost/internal/server"
)

// @title inkpost API
// @version 1.0
// @description Blog API with posts, comments, likes and user profiles

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8375
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	middleware.SetLogger(middleware.NewLogger(cfg.Env))

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "inkpost-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   1.0,
	})
	if err != nil {
		middleware.Logger.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		middleware.Logger.Error("failed to initialize runtime", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.NewServerWithDeps(cfg, db, redisClient)
	if err != nil {
		middleware.Logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		middleware.Logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
