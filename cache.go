package chainz

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/zoobzio/chainz/store"
)

var (
	// sharedStores holds one process-wide store per result type.
	sharedStores = make(map[reflect.Type]any)
	// sharedMu protects concurrent access to sharedStores.
	sharedMu sync.RWMutex
)

// SharedStore returns the process-wide store used by Cache decorators on
// chains producing T that were not given a cache with WithCache.
func SharedStore[T any]() *store.Store[T] {
	typ := reflect.TypeOf((*T)(nil)).Elem()

	sharedMu.RLock()
	if s, ok := sharedStores[typ]; ok {
		sharedMu.RUnlock()
		return s.(*store.Store[T])
	}
	sharedMu.RUnlock()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	// Double-check after acquiring write lock
	if s, ok := sharedStores[typ]; ok {
		return s.(*store.Store[T])
	}

	s := store.New[T](store.DefaultTTL)
	sharedStores[typ] = s
	return s
}

// Cache serves the value stored under key while it is valid, without running
// the rest of the chain. On a miss the chain runs and a successful result is
// stored for Settings.CacheTTL. Errors are never cached.
func (c *Chain[T]) Cache(key string) *Chain[T] {
	return c.CacheFor(key, 0)
}

// CacheFor is Cache with an explicit time to live.
//
// Concurrent misses on the same key each run the chain and the last write
// wins; the lookup and the store are not one atomic step.
func (c *Chain[T]) CacheFor(key string, ttl time.Duration) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			cache := c.getCache()
			if v, ok := cache.Lookup(key); ok {
				c.metrics.Counter(CacheHitsTotal).Inc()
				c.emit(ctx, EventCacheHit, Event{Key: key})
				return v, nil
			}

			c.metrics.Counter(CacheMissesTotal).Inc()
			c.emit(ctx, EventCacheMiss, Event{Key: key})

			v, err := next(ctx)
			if err != nil {
				return v, err
			}

			expiry := ttl
			if expiry <= 0 {
				expiry = c.getSettings().CacheTTL
			}
			cache.Set(key, v, expiry)
			return v, nil
		}
	})
}
