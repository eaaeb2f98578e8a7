package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"contalink/pkg/logger"
)

// BackendIDPlaceholder is replaced by the backend id in DSN templates.
const BackendIDPlaceholder = "{backend_id}"

var (
	// ErrMaxPoolLimit is returned when the pool limit is reached.
	ErrMaxPoolLimit = errors.New("max backend pool limit reached")

	// ErrInvalidBackend is returned for backend ids <= 0.
	ErrInvalidBackend = errors.New("invalid backend id")
)

// BackendPoolsConfig configures BackendPools behavior.
type BackendPoolsConfig struct {
	// DSNTemplate is a connection string containing BackendIDPlaceholder,
	// e.g. postgres://u:p@db:5432/tns_{backend_id}?sslmode=disable.
	DSNTemplate string

	// Pool settings (per backend)
	MaxConnsPerBackend int32
	MinConnsPerBackend int32
	ConnectTimeout     time.Duration

	// Lifecycle settings
	MaxTotalPools   int           // Max simultaneous pools (0 = unlimited)
	PoolIdleTimeout time.Duration // Close pool after inactivity (0 = never)
}

// DefaultBackendPoolsConfig returns production-safe defaults.
func DefaultBackendPoolsConfig(dsnTemplate string) BackendPoolsConfig {
	return BackendPoolsConfig{
		DSNTemplate:        dsnTemplate,
		MaxConnsPerBackend: 5,
		MinConnsPerBackend: 0,
		ConnectTimeout:     10 * time.Second,
		MaxTotalPools:      50,
		PoolIdleTimeout:    15 * time.Minute,
	}
}

// DSN builds the connection string for backendID.
func (c BackendPoolsConfig) DSN(backendID int64) (string, error) {
	if backendID <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidBackend, backendID)
	}
	if !strings.Contains(c.DSNTemplate, BackendIDPlaceholder) {
		return "", fmt.Errorf("dsn template has no %s placeholder", BackendIDPlaceholder)
	}
	return strings.ReplaceAll(c.DSNTemplate, BackendIDPlaceholder, strconv.FormatInt(backendID, 10)), nil
}

// backendPool wraps pgxpool.Pool with lifecycle tracking.
type backendPool struct {
	pool     *pgxpool.Pool
	lastUsed atomic.Int64 // Unix timestamp
}

func (bp *backendPool) touch() {
	bp.lastUsed.Store(time.Now().Unix())
}

// BackendPools lazily opens one pool per records backend (empresa servidor).
// Thread-safe for concurrent access.
type BackendPools struct {
	config BackendPoolsConfig

	mu        sync.Mutex // serializes pool creation
	pools     sync.Map   // map[int64]*backendPool
	poolCount atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *logger.Logger
}

// NewBackendPools creates the pool set and starts idle eviction.
func NewBackendPools(cfg BackendPoolsConfig, log *logger.Logger) *BackendPools {
	ctx, cancel := context.WithCancel(context.Background())

	p := &BackendPools{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
		log:    log.WithComponent("backend-pools"),
	}

	if cfg.PoolIdleTimeout > 0 {
		p.wg.Add(1)
		go p.evictionLoop()
	}

	p.log.Infow("backend pools started",
		"max_pools", cfg.MaxTotalPools,
		"idle_timeout", cfg.PoolIdleTimeout,
	)
	return p
}

// Get returns the pool for backendID, creating it if needed.
func (p *BackendPools) Get(ctx context.Context, backendID int64) (*pgxpool.Pool, error) {
	// Fast path: pool exists
	if val, ok := p.pools.Load(backendID); ok {
		bp := val.(*backendPool)
		bp.touch()
		return bp.pool, nil
	}

	// Slow path: create new pool
	return p.create(ctx, backendID)
}

func (p *BackendPools) create(ctx context.Context, backendID int64) (*pgxpool.Pool, error) {
	dsn, err := p.config.DSN(backendID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another goroutine may have created it while we waited.
	if val, ok := p.pools.Load(backendID); ok {
		bp := val.(*backendPool)
		bp.touch()
		return bp.pool, nil
	}

	if p.config.MaxTotalPools > 0 && int(p.poolCount.Load()) >= p.config.MaxTotalPools {
		return nil, fmt.Errorf("%w (%d)", ErrMaxPoolLimit, p.config.MaxTotalPools)
	}

	cfg := DefaultPoolConfig(dsn)
	cfg.MaxConns = p.config.MaxConnsPerBackend
	cfg.MinConns = p.config.MinConnsPerBackend
	cfg.ConnectTimeout = p.config.ConnectTimeout

	createCtx := ctx
	if p.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		createCtx, cancel = context.WithTimeout(ctx, p.config.ConnectTimeout)
		defer cancel()
	}

	pool, err := NewPool(createCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool for backend %d: %w", backendID, err)
	}

	bp := &backendPool{pool: pool}
	bp.touch()
	p.pools.Store(backendID, bp)
	p.poolCount.Add(1)

	p.log.Infow("created pool for backend",
		"backend_id", backendID,
		"total_pools", p.poolCount.Load(),
	)
	return pool, nil
}

// evictionLoop closes idle pools periodically.
func (p *BackendPools) evictionLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PoolIdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.evictIdle(time.Now())
		}
	}
}

// evictIdle closes pools unused since now minus the idle timeout. Pools
// with acquired connections are left alone.
func (p *BackendPools) evictIdle(now time.Time) {
	threshold := now.Add(-p.config.PoolIdleTimeout).Unix()

	p.pools.Range(func(key, value any) bool {
		bp := value.(*backendPool)
		if bp.pool.Stat().AcquiredConns() > 0 {
			return true
		}
		if bp.lastUsed.Load() < threshold {
			p.closePool(key.(int64), bp, "idle timeout")
		}
		return true
	})
}

func (p *BackendPools) closePool(backendID int64, bp *backendPool, reason string) {
	p.pools.Delete(backendID)
	bp.pool.Close()
	p.poolCount.Add(-1)

	p.log.Infow("closed pool",
		"backend_id", backendID,
		"reason", reason,
		"total_pools", p.poolCount.Load(),
	)
}

// Close stops eviction and closes all pools.
func (p *BackendPools) Close() {
	p.cancel()
	p.wg.Wait()

	var closed int
	p.pools.Range(func(key, value any) bool {
		value.(*backendPool).pool.Close()
		p.pools.Delete(key)
		closed++
		return true
	})
	p.poolCount.Store(0)

	p.log.Infow("backend pools closed", "pools_closed", closed)
}

// BackendPoolStats contains per-backend pool statistics.
type BackendPoolStats struct {
	BackendID     int64     `json:"backendId"`
	TotalConns    int       `json:"totalConns"`
	IdleConns     int       `json:"idleConns"`
	AcquiredConns int       `json:"acquiredConns"`
	LastUsed      time.Time `json:"lastUsed"`
}

// Stats returns a snapshot of open pools.
func (p *BackendPools) Stats() []BackendPoolStats {
	var out []BackendPoolStats
	p.pools.Range(func(key, value any) bool {
		bp := value.(*backendPool)
		s := bp.pool.Stat()
		out = append(out, BackendPoolStats{
			BackendID:     key.(int64),
			TotalConns:    int(s.TotalConns()),
			IdleConns:     int(s.IdleConns()),
			AcquiredConns: int(s.AcquiredConns()),
			LastUsed:      time.Unix(bp.lastUsed.Load(), 0),
		})
		return true
	})
	return out
}
