package tenant

import (
	"context"
	"time"

	"contalink/pkg/logger"
)

// Lister enumerates the active companies of a directory.
type Lister interface {
	List(ctx context.Context) ([]*CompanyInfo, error)
}

// Warmer copies every active company into a cache on a fixed interval so
// cold hosts resolve without a directory lookup. Companies are stored under
// their subdomain and, when set, their custom domain, matching Key.String.
type Warmer struct {
	lister   Lister
	cache    Cache
	interval time.Duration
	log      *logger.Logger
}

// NewWarmer creates a warmer. interval defaults to half the cache TTL.
func NewWarmer(lister Lister, cache Cache, interval time.Duration, log *logger.Logger) *Warmer {
	if interval <= 0 {
		interval = DefaultCacheTTL / 2
	}
	return &Warmer{
		lister:   lister,
		cache:    cache,
		interval: interval,
		log:      log.WithComponent("tenant-warmer"),
	}
}

// WarmOnce loads the directory into the cache and returns how many entries
// were written.
func (w *Warmer) WarmOnce(ctx context.Context) (int, error) {
	companies, err := w.lister.List(ctx)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, c := range companies {
		if !c.Valid() || !c.IsActive {
			continue
		}
		for _, key := range []string{normalizeKey(c.Subdomain), normalizeKey(c.CustomDomain)} {
			if key == "" {
				continue
			}
			w.cache.Set(ctx, key, c)
			written++
		}
	}
	return written, nil
}

// Run warms immediately and then on every tick until ctx is done.
func (w *Warmer) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		n, err := w.WarmOnce(ctx)
		if err != nil {
			w.log.WithContext(ctx).Errorw("cache warm failed", "error", err)
		} else {
			w.log.WithContext(ctx).Infow("cache warmed",
				"entries", n,
				"duration", time.Since(start),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
