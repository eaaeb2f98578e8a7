// Package main is the entry point for the Contalink cache warmer.
// It copies active companies from the meta database into the shared Redis
// cache so portal instances resolve cold hosts without a lookup.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"contalink/internal/config"
	"contalink/internal/core/tenant"
	"contalink/internal/infrastructure/storage/postgres"
	"contalink/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
		Service:     "contalink-worker",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.SetDefault(log)

	if cfg.MetaDSN == "" || cfg.CacheDriver != config.CacheRedis {
		log.Fatalw("worker needs META_DATABASE_URL and TENANT_CACHE=redis",
			"meta_dsn_set", cfg.MetaDSN != "",
			"cache", cfg.CacheDriver,
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting contalink cache warmer")

	// Connect to meta-database
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.MetaDSN))
	if err != nil {
		log.Fatalw("failed to connect to meta database", "error", err)
	}
	defer pool.Close()

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalw("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
	}

	cache := tenant.NewRedisCache(client, cfg.RedisPrefix, cfg.CacheTTL, log)
	warmer := tenant.NewWarmer(postgres.NewCompanyDirectory(pool), cache, cfg.CacheTTL/2, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		warmer.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}
