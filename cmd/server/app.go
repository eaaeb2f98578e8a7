package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"contalink/internal/config"
	"contalink/internal/core/tenant"
	"contalink/internal/infrastructure/http/v1/handlers"
	"contalink/internal/infrastructure/storage/postgres"
	"contalink/internal/metadata"
	"contalink/internal/metrics"
	"contalink/internal/records"
	"contalink/pkg/logger"
)

// app holds the wired portal components and what must be closed on exit.
type app struct {
	registry       *metadata.Registry
	resolver       *tenant.Resolver
	contextFactory tenant.ContextFactory
	records        *records.Service
	backendPools   *postgres.BackendPools
	checks         map[string]handlers.Pinger
	metrics        prometheus.Gatherer

	closers []func()
}

// Close releases resources in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (_ *app, err error) {
	a := &app{checks: make(map[string]handlers.Pinger)}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// --- Metrics ---
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		if err := metrics.Register(reg); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		a.metrics = reg
	}

	// --- Table catalogue ---
	if cfg.CatalogPath != "" {
		a.registry, err = metadata.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalogue %s: %w", cfg.CatalogPath, err)
		}
	} else {
		a.registry = metadata.MustLoadDefault()
	}
	log.Infow("table catalogue loaded",
		"views", len(a.registry.List()),
		"modules", len(a.registry.Modules()),
	)

	// --- Company directory ---
	directory, err := a.directory(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	// --- Company cache ---
	cache, err := a.cache(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a.resolver = tenant.NewResolver(tenant.ResolverConfig{
		BackendEnabled: cfg.BackendEnabled,
		LookupTimeout:  cfg.APITimeout,
	}, directory, cache, log)
	a.contextFactory = tenant.NewContextFactory(cfg.DevOverrides, cfg.OverrideCookie)

	// --- Records ---
	executor, name := a.executor(cfg, log)
	a.records = records.NewService(a.registry, executor, name, log)

	return a, nil
}

func (a *app) directory(ctx context.Context, cfg *config.Config, log *logger.Logger) (tenant.Directory, error) {
	if !cfg.BackendEnabled {
		return nil, nil
	}

	switch cfg.DirectoryDriver {
	case config.DirectoryPostgres:
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.MetaDSN))
		if err != nil {
			return nil, fmt.Errorf("connect meta database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.checks["meta_database"] = pool
		postgres.LogPoolStats(ctx, "meta", pool)
		return postgres.NewCompanyDirectory(pool), nil
	default:
		return tenant.NewHTTPDirectory(tenant.HTTPDirectoryConfig{
			BaseURL:       cfg.APIURL,
			APIKey:        cfg.APIKey,
			Timeout:       cfg.APITimeout,
			RatePerSecond: cfg.LookupRate,
			Burst:         cfg.LookupBurst,
		}, log), nil
	}
}

func (a *app) cache(ctx context.Context, cfg *config.Config, log *logger.Logger) (tenant.Cache, error) {
	local := tenant.NewMemoryCache(cfg.CacheTTL)
	if cfg.CacheDriver != config.CacheRedis {
		return local, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	a.checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})

	shared := tenant.NewRedisCache(client, cfg.RedisPrefix, cfg.CacheTTL, log)
	return tenant.NewTieredCache(local, shared), nil
}

func (a *app) executor(cfg *config.Config, log *logger.Logger) (records.Executor, string) {
	if cfg.RecordsDriver == config.RecordsPostgres {
		poolsCfg := postgres.DefaultBackendPoolsConfig(cfg.RecordsDSN)
		if cfg.RecordsMaxPools > 0 {
			poolsCfg.MaxTotalPools = cfg.RecordsMaxPools
		}
		if cfg.RecordsPoolIdle > 0 {
			poolsCfg.PoolIdleTimeout = cfg.RecordsPoolIdle
		}
		a.backendPools = postgres.NewBackendPools(poolsCfg, log)
		a.closers = append(a.closers, a.backendPools.Close)

		txOpts := postgres.DefaultTxOptions()
		if cfg.StatementTimeout > 0 {
			txOpts.StatementTimeout = cfg.StatementTimeout
		}
		return postgres.NewRecordsExecutor(a.backendPools, txOpts, log), config.RecordsPostgres
	}

	return records.NewHTTPExecutor(records.HTTPExecutorConfig{
		BaseURL: cfg.APIURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.APITimeout,
	}, log), config.RecordsHTTP
}

var _ handlers.Pinger = (*pgxpool.Pool)(nil)
