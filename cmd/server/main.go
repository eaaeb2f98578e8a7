// Package main is the entry point for the Contalink portal server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"contalink/internal/config"
	v1 "contalink/internal/infrastructure/http/v1"
	"contalink/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
		Service:     "contalink-portal",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting contalink portal",
		"env", cfg.AppEnv,
		"backend_enabled", cfg.BackendEnabled,
		"directory", cfg.DirectoryDriver,
		"cache", cfg.CacheDriver,
		"records", cfg.RecordsDriver,
	)

	app, err := buildApp(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize portal", "error", err)
	}
	defer app.Close()

	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		Resolver:       app.resolver,
		ContextFactory: app.contextFactory,
		Registry:       app.registry,
		Records:        app.records,
		HealthChecks:   app.checks,
		BackendPools:   app.backendPools,
		DevOverrides:   cfg.DevOverrides,
		Metrics:        app.metrics,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      gzhttp.GzipHandler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.APITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
