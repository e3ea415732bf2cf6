package postgres

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/quanghuy1242/content-api/pkg/observability"
)

const urlCachePrefix = "signedurl:"

// URLCache caches pre-signed download URLs: an in-process LRU in front of
// an optional shared Redis tier. The TTL must stay below the signed URL's
// own expiry so a cached link always outlives its consumers.
//
// Both tiers are best-effort. A Redis failure is treated as a miss and the
// URL is simply presigned again.
type URLCache struct {
	local   *expirable.LRU[string, string]
	redis   *redis.Client
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewURLCache creates a signed-URL cache. The Redis client is optional;
// pass nil for a purely in-process cache.
func NewURLCache(size int, ttl time.Duration, client *redis.Client) *URLCache {
	c := &URLCache{
		redis: client,
		ttl:   ttl,
	}
	c.local = expirable.NewLRU[string, string](size, func(string, string) {
		if c.metrics != nil {
			c.metrics.CacheEvictionsTotal.WithLabelValues("signedurl", "lru").Inc()
		}
	}, ttl)
	return c
}

// WithMetrics attaches hit/miss/eviction counters. Nil disables them.
func (c *URLCache) WithMetrics(m *observability.Metrics) *URLCache {
	c.metrics = m
	return c
}

func (c *URLCache) hit(tier string) {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues("signedurl", tier).Inc()
	}
}

func (c *URLCache) miss(tier string) {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues("signedurl", tier).Inc()
	}
}

func (c *URLCache) Get(ctx context.Context, key string) (string, bool) {
	if url, ok := c.local.Get(key); ok {
		c.hit("local")
		return url, true
	}
	c.miss("local")
	if c.redis == nil {
		return "", false
	}

	url, err := c.redis.Get(ctx, urlCachePrefix+key).Result()
	if err != nil {
		c.miss("redis")
		return "", false
	}
	c.hit("redis")
	// Promote to the local tier. The remaining remote TTL is unknown, so
	// the local entry may modestly outlive the remote one; both stay below
	// the signed URL's validity.
	c.local.Add(key, url)
	return url, true
}

func (c *URLCache) Set(ctx context.Context, key, url string) {
	c.local.Add(key, url)
	if c.redis != nil {
		c.redis.Set(ctx, urlCachePrefix+key, url, c.ttl)
	}
}

// Invalidate drops a key from both tiers.
func (c *URLCache) Invalidate(ctx context.Context, key string) {
	c.local.Remove(key)
	if c.redis != nil {
		c.redis.Del(ctx, urlCachePrefix+key)
	}
}
