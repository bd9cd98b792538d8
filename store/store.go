// Package store provides a typed, thread-safe key/value store whose entries
// expire at an absolute instant.
//
// A Store never deletes entries on its own accord during reads: an expired
// entry is simply ignored by Lookup. Purge, or a janitor started with
// StartJanitor, reclaims the memory.
//
//	users := store.New[User](time.Minute)
//	users.Set("user:42", u, 0) // default ttl
//	if u, ok := users.Lookup("user:42"); ok {
//	    ...
//	}
package store

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/metricz"
)

// DefaultTTL is used when a store is created or written with a non-positive ttl.
const DefaultTTL = 60 * time.Second

// Metric keys for Store observability.
const (
	HitsTotal      = metricz.Key("store.hits.total")
	MissesTotal    = metricz.Key("store.misses.total")
	SetsTotal      = metricz.Key("store.sets.total")
	EvictionsTotal = metricz.Key("store.evictions.total")
	EntriesCount   = metricz.Key("store.entries")
)

// Store maps string keys to expiring values of type V.
type Store[V any] struct {
	entries map[string]Entry[V]
	clock   clockz.Clock
	metrics *metricz.Registry
	done    chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
	once    sync.Once
}

// New creates a Store with the given default time to live.
func New[V any](ttl time.Duration) *Store[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	registry := metricz.New()
	registry.Counter(HitsTotal)
	registry.Counter(MissesTotal)
	registry.Counter(SetsTotal)
	registry.Counter(EvictionsTotal)
	registry.Gauge(EntriesCount)

	return &Store[V]{
		entries: make(map[string]Entry[V]),
		ttl:     ttl,
		metrics: registry,
		done:    make(chan struct{}),
	}
}

// WithClock sets a custom clock for testing.
func (s *Store[V]) WithClock(clock clockz.Clock) *Store[V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
	return s
}

func (s *Store[V]) getClock() clockz.Clock {
	if s.clock == nil {
		return clockz.RealClock
	}
	return s.clock
}

// TTL returns the default time to live.
func (s *Store[V]) TTL() time.Duration {
	return s.ttl
}

// Get returns the entry stored under key, expired or not.
func (s *Store[V]) Get(key string) (Entry[V], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

// Lookup returns the value stored under key when its entry is still valid.
func (s *Store[V]) Lookup(key string) (V, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	now := s.getClock().Now()
	s.mu.RUnlock()

	if !ok || !e.Valid(now) {
		s.metrics.Counter(MissesTotal).Inc()
		var zero V
		return zero, false
	}
	s.metrics.Counter(HitsTotal).Inc()
	return e.Value, true
}

// Set stores value under key until now+ttl, replacing any previous entry.
// A non-positive ttl uses the store default.
func (s *Store[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.ttl
	}

	s.mu.Lock()
	s.entries[key] = Entry[V]{
		Value:     value,
		ExpiresAt: s.getClock().Now().Add(ttl),
	}
	size := len(s.entries)
	s.mu.Unlock()

	s.metrics.Counter(SetsTotal).Inc()
	s.metrics.Gauge(EntriesCount).Set(float64(size))
}

// SetDefault stores value under key with the default ttl.
func (s *Store[V]) SetDefault(key string, value V) {
	s.Set(key, value, 0)
}

// Delete removes key.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	size := len(s.entries)
	s.mu.Unlock()

	s.metrics.Gauge(EntriesCount).Set(float64(size))
}

// Len returns the number of stored entries, including expired ones not yet purged.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Purge removes every entry that is no longer valid and returns how many were removed.
func (s *Store[V]) Purge() int {
	s.mu.Lock()
	now := s.getClock().Now()
	removed := 0
	for k, e := range s.entries {
		if !e.Valid(now) {
			delete(s.entries, k)
			removed++
		}
	}
	size := len(s.entries)
	s.mu.Unlock()

	for i := 0; i < removed; i++ {
		s.metrics.Counter(EvictionsTotal).Inc()
	}
	s.metrics.Gauge(EntriesCount).Set(float64(size))
	return removed
}

// StartJanitor purges expired entries every interval until Close is called.
func (s *Store[V]) StartJanitor(interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl
	}

	s.mu.RLock()
	clock := s.getClock()
	s.mu.RUnlock()

	go func() {
		for {
			select {
			case <-s.done:
				return
			case <-clock.After(interval):
				s.Purge()
			}
		}
	}()
}

// Metrics returns the metrics registry for this store.
func (s *Store[V]) Metrics() *metricz.Registry {
	return s.metrics
}

// Close stops the janitor, if any. Close is idempotent.
func (s *Store[V]) Close() error {
	s.once.Do(func() {
		close(s.done)
	})
	return nil
}
