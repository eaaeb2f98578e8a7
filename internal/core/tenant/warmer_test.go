package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contalink/pkg/logger"
)

type staticLister struct {
	companies []*CompanyInfo
	err       error
}

func (l staticLister) List(context.Context) ([]*CompanyInfo, error) {
	return l.companies, l.err
}

func TestWarmOnce(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	w := NewWarmer(staticLister{companies: []*CompanyInfo{
		{ID: 1, Subdomain: "Acme", CustomDomain: "acme.com.co", IsActive: true},
		{ID: 2, Subdomain: "beta", IsActive: true},
		{ID: 3, Subdomain: "gone", IsActive: false},
		{ID: 0, Subdomain: "broken", IsActive: true},
	}}, cache, 0, logger.Nop())

	n, err := w.WarmOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ctx := context.Background()
	c, ok := cache.Get(ctx, "acme")
	require.True(t, ok)
	assert.Equal(t, int64(1), c.ID)

	c, ok = cache.Get(ctx, "acme.com.co")
	require.True(t, ok)
	assert.Equal(t, int64(1), c.ID)

	_, ok = cache.Get(ctx, "gone")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "broken")
	assert.False(t, ok)
}

func TestWarmOnceError(t *testing.T) {
	w := NewWarmer(staticLister{err: errors.New("db down")}, NewMemoryCache(time.Minute), 0, logger.Nop())
	_, err := w.WarmOnce(context.Background())
	assert.Error(t, err)
}

func TestWarmedCacheSkipsDirectory(t *testing.T) {
	dir := &fakeDirectory{}
	cache := NewMemoryCache(time.Minute)
	w := NewWarmer(staticLister{companies: []*CompanyInfo{
		{ID: 9, Subdomain: "acme", IsActive: true},
	}}, cache, 0, logger.Nop())
	_, err := w.WarmOnce(context.Background())
	require.NoError(t, err)

	r := NewResolver(ResolverConfig{BackendEnabled: true}, dir, cache, logger.Nop())
	c, err := r.Load(context.Background(), Key{Subdomain: "acme", Domain: "contalink.com"}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(9), c.ID)
	assert.Zero(t, dir.calls.Load())
}

func TestWarmerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWarmer(staticLister{}, NewMemoryCache(time.Minute), time.Hour, logger.Nop())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("warmer did not stop")
	}
}
