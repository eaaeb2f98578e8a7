package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"contalink/pkg/logger"
)

// DefaultCacheTTL bounds how long a directory record is served without a lookup.
const DefaultCacheTTL = 10 * time.Minute

// Cache stores authoritative company records by tenant key.
// Synthesized fallbacks are never stored.
type Cache interface {
	Get(ctx context.Context, key string) (*CompanyInfo, bool)
	Set(ctx context.Context, key string, c *CompanyInfo)
	Delete(ctx context.Context, key string)
}

// --- Memory ---

// MemoryCache is a process-local cache. Get returns the stored pointer.
type MemoryCache struct {
	c *gocache.Cache
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates a memory cache with the given TTL (DefaultCacheTTL if <= 0).
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{c: gocache.New(ttl, time.Minute)}
}

// Get returns the shared record; callers must not modify it.
func (m *MemoryCache) Get(_ context.Context, key string) (*CompanyInfo, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	c, ok := v.(*CompanyInfo)
	return c, ok && c != nil
}

func (m *MemoryCache) Set(_ context.Context, key string, c *CompanyInfo) {
	m.c.SetDefault(key, c)
}

func (m *MemoryCache) Delete(_ context.Context, key string) {
	m.c.Delete(key)
}

// --- Redis ---

// DefaultRedisPrefix namespaces company entries in Redis.
const DefaultRedisPrefix = "contalink:company:"

// RedisCache shares company records between portal instances as JSON.
// Redis failures degrade to cache misses.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration, log *logger.Logger) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		log:    log.WithComponent("tenant-redis-cache"),
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*CompanyInfo, bool) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WithContext(ctx).Warnw("redis get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var c CompanyInfo
	if err := json.Unmarshal(b, &c); err != nil {
		r.log.WithContext(ctx).Warnw("corrupt cached company", "key", key, "error", err)
		return nil, false
	}
	if !c.Valid() {
		return nil, false
	}
	return &c, true
}

func (r *RedisCache) Set(ctx context.Context, key string, c *CompanyInfo) {
	b, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, b, r.ttl).Err(); err != nil {
		r.log.WithContext(ctx).Warnw("redis set failed", "key", key, "error", err)
	}
}

func (r *RedisCache) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.log.WithContext(ctx).Warnw("redis delete failed", "key", key, "error", err)
	}
}

// --- Tiered ---

// TieredCache reads the local tier first and fills it from the shared tier.
type TieredCache struct {
	local  Cache
	shared Cache
}

var _ Cache = (*TieredCache)(nil)

// NewTieredCache combines a local and a shared cache.
func NewTieredCache(local, shared Cache) *TieredCache {
	return &TieredCache{local: local, shared: shared}
}

func (t *TieredCache) Get(ctx context.Context, key string) (*CompanyInfo, bool) {
	if c, ok := t.local.Get(ctx, key); ok {
		return c, true
	}
	c, ok := t.shared.Get(ctx, key)
	if !ok {
		return nil, false
	}
	t.local.Set(ctx, key, c)
	return c, true
}

func (t *TieredCache) Set(ctx context.Context, key string, c *CompanyInfo) {
	t.local.Set(ctx, key, c)
	t.shared.Set(ctx, key, c)
}

func (t *TieredCache) Delete(ctx context.Context, key string) {
	t.local.Delete(ctx, key)
	t.shared.Delete(ctx, key)
}
