package tenant

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"contalink/internal/core/apperror"
	"contalink/internal/core/host"
	"contalink/internal/metrics"
	"contalink/pkg/logger"
)

// ResolverConfig configures Resolver behavior.
type ResolverConfig struct {
	// BackendEnabled turns directory lookups on. When off every key is
	// served from the fallback table.
	BackendEnabled bool

	// LookupTimeout bounds one shared lookup. It is independent of the
	// caller that started the lookup (DefaultLookupTimeout if <= 0).
	LookupTimeout time.Duration
}

// DefaultLookupTimeout bounds a shared directory lookup.
const DefaultLookupTimeout = 15 * time.Second

// Resolver turns request contexts into tenant keys and keys into companies.
// Thread-safe for concurrent access.
type Resolver struct {
	config    ResolverConfig
	directory Directory
	cache     Cache

	group singleflight.Group
	log   *logger.Logger
}

// NewResolver creates a resolver. A nil cache gets a MemoryCache; directory
// may be nil only when the backend is disabled.
func NewResolver(cfg ResolverConfig, directory Directory, cache Cache, log *logger.Logger) *Resolver {
	if cache == nil {
		cache = NewMemoryCache(DefaultCacheTTL)
	}
	if directory == nil {
		cfg.BackendEnabled = false
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = DefaultLookupTimeout
	}

	r := &Resolver{
		config:    cfg,
		directory: directory,
		cache:     cache,
		log:       log.WithComponent("tenant-resolver"),
	}

	r.log.Infow("tenant resolver started", "backend_enabled", cfg.BackendEnabled)
	return r
}

// BackendEnabled reports whether directory lookups are on.
func (r *Resolver) BackendEnabled() bool {
	return r.config.BackendEnabled
}

// ResolveKey derives the tenant key for rc. The first rule that yields a
// value wins: explicit key, host subdomain, ?subdomain= query override
// (persisted to the override store), stored override, registrable domain.
func (r *Resolver) ResolveKey(rc RequestContext, explicit string) Key {
	parsed := host.Parse(rc.Host())
	key := Key{Domain: parsed.Domain}

	if sub := normalizeKey(explicit); sub != "" {
		key.Subdomain, key.Source = sub, SourceExplicit
		return key
	}

	if parsed.HasSubdomain() {
		key.Subdomain, key.Source = parsed.Subdomain, SourceHost
		return key
	}

	store := rc.Overrides()
	if sub := normalizeKey(rc.Query(QueryOverrideParam)); sub != "" {
		if store != nil {
			store.Set(sub)
		}
		key.Subdomain, key.Source = sub, SourceQuery
		return key
	}

	if store != nil {
		if sub := normalizeKey(store.Get()); sub != "" {
			key.Subdomain, key.Source = sub, SourceStored
			return key
		}
	}

	if key.Domain != "" {
		key.Source = SourceDomain
	}
	return key
}

// Load returns the company for key.
//
// Unless force is set a cached record is returned without a lookup.
// Concurrent loads of the same key share one lookup; a caller whose ctx is
// done stops waiting and gets ctx.Err() while the lookup carries on for
// the others. When every lookup fails a subdomain key degrades to a
// synthesized fallback and a domain-only key yields nil. With the backend
// disabled the fallback table answers and a zero key gets ErrNoTenantKey.
func (r *Resolver) Load(ctx context.Context, key Key, force bool) (*CompanyInfo, error) {
	if key.IsZero() {
		if !r.config.BackendEnabled {
			return nil, ErrNoTenantKey
		}
		return nil, nil
	}

	cacheKey := key.String()

	if !r.config.BackendEnabled {
		metrics.TenantFallbacks.WithLabelValues("disabled").Inc()
		return Fallback(cacheKey), nil
	}

	if !force {
		if c, ok := r.cache.Get(ctx, cacheKey); ok {
			metrics.TenantCache.WithLabelValues("hit").Inc()
			return c, nil
		}
		metrics.TenantCache.WithLabelValues("miss").Inc()
	}

	// The flight outlives the caller that started it: waiters sharing it
	// must not see that caller's cancellation.
	ch := r.group.DoChan(cacheKey, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.LookupTimeout)
		defer cancel()

		// A flight that finished between our cache miss and DoChan has
		// already stored its record.
		if !force {
			if c, ok := r.cache.Get(fctx, cacheKey); ok {
				return c, nil
			}
		}
		return r.lookup(fctx, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.TenantSharedLoads.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		c, _ := res.Val.(*CompanyInfo)
		return c, nil
	}
}

// Invalidate drops the cached record for key.
func (r *Resolver) Invalidate(ctx context.Context, key Key) {
	if key.IsZero() {
		return
	}
	r.cache.Delete(ctx, key.String())
}

// lookup tries the subdomain then the domain strategy. Directory failures
// are logged, not returned. A cancelled ctx is returned as is: cancellation
// says nothing about the directory and must not produce a fallback.
func (r *Resolver) lookup(ctx context.Context, key Key) (*CompanyInfo, error) {
	if key.Subdomain != "" {
		if c := r.try(ctx, "subdomain", key.Subdomain, r.directory.BySubdomain); c != nil {
			r.cache.Set(ctx, key.String(), c)
			return c, nil
		}
	}

	if key.Domain != "" {
		if c := r.try(ctx, "domain", key.Domain, r.directory.ByDomain); c != nil {
			r.cache.Set(ctx, key.String(), c)
			return c, nil
		}
	}

	if err := ctx.Err(); errors.Is(err, context.Canceled) {
		return nil, err
	}

	if key.Subdomain == "" {
		return nil, nil
	}

	r.log.WithContext(ctx).Warnw("company lookups failed, using fallback", "tenant_key", key.String())
	metrics.TenantFallbacks.WithLabelValues("lookup_failed").Inc()
	return Fallback(key.Subdomain), nil
}

type lookupFunc func(ctx context.Context, key string) (*CompanyInfo, error)

func (r *Resolver) try(ctx context.Context, strategy, key string, fn lookupFunc) *CompanyInfo {
	c, err := fn(ctx, key)
	switch {
	case err == nil && c.Valid():
		metrics.TenantLookups.WithLabelValues(strategy, "found").Inc()
		return c
	case err == nil, errors.Is(err, ErrCompanyNotFound), errors.Is(err, ErrInvalidCompany):
		metrics.TenantLookups.WithLabelValues(strategy, "not_found").Inc()
		r.log.WithContext(ctx).Debugw("company not found", "strategy", strategy, "key", key)
	default:
		metrics.TenantLookups.WithLabelValues(strategy, "error").Inc()
		r.log.WithContext(ctx).Warnw("company lookup failed",
			"strategy", strategy,
			"error", apperror.NewLookupFailure(key, err),
		)
	}
	return nil
}
