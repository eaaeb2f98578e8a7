package tenant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLoadTenantIsIdempotent(t *testing.T) {
	dir := &fakeDirectory{bySub: map[string]*CompanyInfo{"shop": {ID: 7, Name: "Shop"}}}
	s := NewSession(newTestResolver(dir, true), StaticContext{HostName: "shop.acme.com"}, "")

	first, err := s.LoadTenant(context.Background(), false)
	require.NoError(t, err)
	second, err := s.LoadTenant(context.Background(), false)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, s.Company())
	assert.EqualValues(t, 1, dir.calls.Load())
}

func TestSessionFallbackIsIdempotent(t *testing.T) {
	s := NewSession(newTestResolver(nil, false), StaticContext{HostName: "acme.localhost"}, "")

	first, err := s.LoadTenant(context.Background(), false)
	require.NoError(t, err)
	second, err := s.LoadTenant(context.Background(), false)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "Demo acme", first.Name)
}

func TestSessionForceRefresh(t *testing.T) {
	dir := &fakeDirectory{bySub: map[string]*CompanyInfo{"shop": {ID: 7}}}
	s := NewSession(newTestResolver(dir, true), StaticContext{HostName: "shop.acme.com"}, "")

	_, err := s.LoadTenant(context.Background(), false)
	require.NoError(t, err)
	_, err = s.LoadTenant(context.Background(), true)
	require.NoError(t, err)

	assert.EqualValues(t, 2, dir.calls.Load())
}

func TestSessionConcurrentColdLoads(t *testing.T) {
	dir := gated(&fakeDirectory{bySub: map[string]*CompanyInfo{"shop": {ID: 7}}})
	s := NewSession(newTestResolver(dir, true), StaticContext{HostName: "shop.acme.com"}, "")

	const n = 8
	var wg sync.WaitGroup
	results := make([]*CompanyInfo, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := s.LoadTenant(context.Background(), false)
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}

	<-dir.entered
	close(dir.gate)
	wg.Wait()

	assert.EqualValues(t, 1, dir.calls.Load())
	for _, c := range results {
		assert.Same(t, s.Company(), c)
	}
}

func TestSessionLoadingFlag(t *testing.T) {
	dir := gated(&fakeDirectory{bySub: map[string]*CompanyInfo{"shop": {ID: 7}}})
	s := NewSession(newTestResolver(dir, true), StaticContext{HostName: "shop.acme.com"}, "")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.LoadTenant(context.Background(), false)
	}()

	<-dir.entered
	assert.True(t, s.Loading())
	close(dir.gate)
	<-done
	assert.False(t, s.Loading())
}

func TestSessionLoadingClearedOnError(t *testing.T) {
	s := NewSession(newTestResolver(nil, false), StaticContext{}, "")

	c, err := s.LoadTenant(context.Background(), false)
	assert.ErrorIs(t, err, ErrNoTenantKey)
	assert.Nil(t, c)
	assert.False(t, s.Loading())
}

func TestSessionDiscardsStaleResult(t *testing.T) {
	dir := gated(&fakeDirectory{bySub: map[string]*CompanyInfo{
		"alpha": {ID: 1, Name: "Alpha"},
		"beta":  {ID: 2, Name: "Beta"},
	}})
	s := NewSession(newTestResolver(dir, true), StaticContext{HostName: "localhost"}, "alpha")

	type result struct {
		c   *CompanyInfo
		err error
	}
	out := make(chan result, 1)
	go func() {
		c, err := s.LoadTenant(context.Background(), false)
		out <- result{c, err}
	}()

	<-dir.entered
	key := s.SetOverride("beta")
	assert.Equal(t, "beta", key.String())
	close(dir.gate)

	select {
	case res := <-out:
		require.NoError(t, res.err)
		assert.Nil(t, res.c)
	case <-time.After(5 * time.Second):
		t.Fatal("load did not finish")
	}
	assert.Nil(t, s.Company())

	c, err := s.LoadTenant(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "Beta", c.Name)
}

func TestSessionSetOverridePersists(t *testing.T) {
	store := &MemoryOverrideStore{}
	s := NewSession(newTestResolver(nil, false), StaticContext{HostName: "localhost", Store: store}, "")

	c, err := s.LoadTenant(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "Demo localhost", c.Name)

	key := s.SetOverride("Restaurant")
	assert.Equal(t, Key{Subdomain: "restaurant", Domain: "localhost", Source: SourceExplicit}, key)
	assert.Equal(t, "restaurant", store.Get())
	assert.Nil(t, s.Company())

	c, err = s.LoadTenant(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "POS Restaurante Demo", c.Name)
}
