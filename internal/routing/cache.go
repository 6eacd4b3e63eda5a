package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const routeCacheKeyPrefix = "route:v1:"

// Cache stores fetched routes by key.
type Cache interface {
	// Get returns the cached route and whether it was found.
	Get(ctx context.Context, key string) (quote.Route, bool, error)

	// Set stores a route with expiration.
	Set(ctx context.Context, key string, route quote.Route, ttl time.Duration) error
}

// RedisCache implements Cache on Redis with JSON values.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed route cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a route from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) (quote.Route, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return quote.Route{}, false, nil
	}
	if err != nil {
		return quote.Route{}, false, fmt.Errorf("failed to get route from cache: %w", err)
	}

	var route quote.Route
	if err := json.Unmarshal(raw, &route); err != nil {
		return quote.Route{}, false, fmt.Errorf("failed to decode cached route: %w", err)
	}
	return route, true, nil
}

// Set stores a route in Redis.
func (c *RedisCache) Set(ctx context.Context, key string, route quote.Route, ttl time.Duration) error {
	payload, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("failed to encode route: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set route in cache: %w", err)
	}
	return nil
}

// CachedProvider is a cache-aside decorator around a Provider. Concurrent
// misses for the same key share one upstream request.
type CachedProvider struct {
	next         Provider
	cache        Cache
	ttl          time.Duration
	fetchTimeout time.Duration
	group        singleflight.Group
	logger       *zap.Logger
}

// NewCachedProvider wraps next with cache.
func NewCachedProvider(next Provider, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, ttl: ttl, fetchTimeout: defaultHTTPTimeout, logger: logger}
}

// Route serves from cache when possible. Cache failures never fail the fetch.
func (p *CachedProvider) Route(ctx context.Context, origin, destination quote.Location) (quote.Route, error) {
	key := CacheKey(origin, destination)

	if route, ok, err := p.cache.Get(ctx, key); err != nil {
		p.logger.Warn("route cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return route, nil
	}

	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own ctx ends.
	ch := p.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.fetchTimeout)
		defer cancel()

		route, err := p.next.Route(fetchCtx, origin, destination)
		if err != nil {
			return quote.Route{}, err
		}
		if err := p.cache.Set(fetchCtx, key, route, p.ttl); err != nil {
			p.logger.Warn("route cache write failed", zap.String("key", key), zap.Error(err))
		}
		return route, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return quote.Route{}, res.Err
		}
		if res.Shared {
			p.logger.Debug("route fetch shared", zap.String("key", key))
		}
		return res.Val.(quote.Route), nil
	case <-ctx.Done():
		return quote.Route{}, ctx.Err()
	}
}

// CacheKey rounds both ends to 5 decimals (about a metre).
func CacheKey(origin, destination quote.Location) string {
	return fmt.Sprintf("%s%.5f,%.5f;%.5f,%.5f", routeCacheKeyPrefix,
		origin.Lat, origin.Lng, destination.Lat, destination.Lng)
}
