package routing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]quote.Route
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]quote.Route)}
}

func (c *memoryCache) Get(_ context.Context, key string) (quote.Route, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return quote.Route{}, false, errors.New("cache down")
	}
	r, ok := c.entries[key]
	return r, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, route quote.Route, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = route
	return nil
}

type countingProvider struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (p *countingProvider) Route(ctx context.Context, _, _ quote.Location) (quote.Route, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return quote.Route{}, p.err
	}
	return quote.Route{DistanceKm: 12, DurationMinutes: 30}, nil
}

func TestCachedProvider_HitsCacheOnSecondCall(t *testing.T) {
	upstream := &countingProvider{}
	p := NewCachedProvider(upstream, newMemoryCache(), time.Hour, zap.NewNop())

	first, err := p.Route(context.Background(), office, destination)
	require.NoError(t, err)
	second, err := p.Route(context.Background(), office, destination)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), upstream.calls.Load())
}

func TestCachedProvider_SharesConcurrentMisses(t *testing.T) {
	upstream := &countingProvider{delay: 50 * time.Millisecond}
	p := NewCachedProvider(upstream, newMemoryCache(), time.Hour, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Route(context.Background(), office, destination)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, upstream.calls.Load(), int32(2))
}

type blockingProvider struct {
	entered chan struct{}
	delay   time.Duration
}

func (p *blockingProvider) Route(ctx context.Context, _, _ quote.Location) (quote.Route, error) {
	close(p.entered)
	select {
	case <-time.After(p.delay):
		return quote.Route{DistanceKm: 7, DurationMinutes: 14}, nil
	case <-ctx.Done():
		return quote.Route{}, ctx.Err()
	}
}

func TestCachedProvider_CancelledCallerDoesNotFailWaiters(t *testing.T) {
	upstream := &blockingProvider{entered: make(chan struct{}), delay: 100 * time.Millisecond}
	cache := newMemoryCache()
	p := NewCachedProvider(upstream, cache, time.Hour, zap.NewNop())

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := p.Route(firstCtx, office, destination)
		firstErr <- err
	}()
	<-upstream.entered

	type result struct {
		route quote.Route
		err   error
	}
	second := make(chan result, 1)
	go func() {
		r, err := p.Route(context.Background(), office, destination)
		second <- result{r, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, 7.0, got.route.DistanceKm)

	cached, ok, err := cache.Get(context.Background(), CacheKey(office, destination))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, got.route, cached)
}

func TestCachedProvider_DoesNotCacheErrors(t *testing.T) {
	upstream := &countingProvider{err: errors.New("boom")}
	cache := newMemoryCache()
	p := NewCachedProvider(upstream, cache, time.Hour, zap.NewNop())

	_, err := p.Route(context.Background(), office, destination)
	require.Error(t, err)
	assert.Empty(t, cache.entries)
}

func TestCachedProvider_CacheFailureFallsThrough(t *testing.T) {
	upstream := &countingProvider{}
	cache := newMemoryCache()
	cache.failGet = true
	p := NewCachedProvider(upstream, cache, time.Hour, zap.NewNop())

	route, err := p.Route(context.Background(), office, destination)
	require.NoError(t, err)
	assert.Equal(t, 12.0, route.DistanceKm)
}

func TestCacheKey_RoundsCoordinates(t *testing.T) {
	a := CacheKey(office, quote.Location{Lat: 4.650001, Lng: -74.050001})
	b := CacheKey(office, quote.Location{Lat: 4.650002, Lng: -74.050002})
	assert.Equal(t, a, b)
	assert.Contains(t, a, "route:v1:")
}
