// Package cache is a read-through cache for catalogue lists. A query names a
// key, a fetcher and a stale time; concurrent misses on one key share a single
// fetch.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"munlink-backend/internal/logger"
	"munlink-backend/internal/metrics"

	"golang.org/x/sync/singleflight"
)

// Store holds serialized entries with a time to live.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Query describes one cached read.
type Query[T any] struct {
	Key       string
	Fetcher   func(ctx context.Context) (T, error)
	StaleTime time.Duration
}

type Cache struct {
	store   Store
	group   singleflight.Group
	metrics *metrics.Metrics
}

func New(store Store, m *metrics.Metrics) *Cache {
	return &Cache{store: store, metrics: m}
}

// Fetch returns the cached value for q.Key, calling q.Fetcher on a miss. Store
// failures degrade to a direct fetch. Fetch errors are never cached. A
// non-positive StaleTime bypasses storage.
func Fetch[T any](ctx context.Context, c *Cache, q Query[T]) (T, error) {
	var zero T
	if q.Fetcher == nil {
		return zero, fmt.Errorf("cache query %q has no fetcher", q.Key)
	}
	prefix := keyPrefix(q.Key)

	if q.StaleTime > 0 {
		raw, ok, err := c.store.Get(ctx, q.Key)
		switch {
		case err != nil:
			logger.WarnContext(ctx, "Cache read failed", "key", q.Key, "error", err)
			c.metrics.IncrementCacheLookup(prefix, "error")
		case ok:
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				c.metrics.IncrementCacheLookup(prefix, "hit")
				return v, nil
			}
			logger.WarnContext(ctx, "Discarding undecodable cache entry", "key", q.Key)
		}
	}
	c.metrics.IncrementCacheLookup(prefix, "miss")

	v, err, _ := c.group.Do(q.Key, func() (any, error) {
		val, err := q.Fetcher(ctx)
		if err != nil {
			return nil, err
		}
		if q.StaleTime > 0 {
			if raw, err := json.Marshal(val); err == nil {
				if err := c.store.Set(ctx, q.Key, raw, q.StaleTime); err != nil {
					logger.WarnContext(ctx, "Cache write failed", "key", q.Key, "error", err)
				}
			}
		}
		return val, nil
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache key %q shared by incompatible types", q.Key)
	}
	return out, nil
}

// Invalidate drops every entry whose key starts with prefix.
func (c *Cache) Invalidate(ctx context.Context, prefix string) error {
	if err := c.store.DeletePrefix(ctx, prefix); err != nil {
		return fmt.Errorf("failed to invalidate %q: %w", prefix, err)
	}
	return nil
}

// Key joins parts with ':' and renders nil optional ids as "all".
func Key(parts ...any) string {
	ss := make([]string, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case *int32:
			if v == nil {
				ss = append(ss, "all")
			} else {
				ss = append(ss, fmt.Sprint(*v))
			}
		default:
			ss = append(ss, fmt.Sprint(v))
		}
	}
	return strings.Join(ss, ":")
}

func keyPrefix(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
