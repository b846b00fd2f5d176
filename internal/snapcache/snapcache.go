// Package snapcache is a short-lived Redis cache sitting at the presentation
// boundary: processed snapshots and tables are memoized here so parallel
// dashboard panels do not each re-run the reshape pipeline. It is purely an
// optimization layer: every failure degrades to a miss and a nil *Cache is
// a no-op, so the dashboard works without Redis.
package snapcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/web3-frozen/protocol-dashboard/internal/metrics"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a Cache backed by Redis. The TTL applies to every entry.
func New(redisURL, password string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if password != "" {
		opts.Password = password
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Cache{rdb: rdb, ttl: ttl}, nil
}

// Close shuts down the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// Get unmarshals the entry under key into dest and reports whether it was
// present. Read and decode failures count as misses.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		metrics.SnapshotCacheTotal.WithLabelValues(key, "miss").Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.SnapshotCacheTotal.WithLabelValues(key, "decode_error").Inc()
		return false
	}
	metrics.SnapshotCacheTotal.WithLabelValues(key, "hit").Inc()
	return true
}

// Set stores val under key with the cache TTL. Failures are swallowed.
func (c *Cache) Set(ctx context.Context, key string, val any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, raw, c.ttl) //nolint:errcheck
}

// Invalidate removes a key so the next read recomputes.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if c == nil {
		return
	}
	c.rdb.Del(ctx, key) //nolint:errcheck
}
