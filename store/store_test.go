package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

func TestStore_SetLookup(t *testing.T) {
	clock := clockz.NewFakeClock()
	s := New[string](time.Minute).WithClock(clock)

	_, ok := s.Lookup("k")
	assert.False(t, ok, "empty store must miss")

	s.Set("k", "v1", 0)
	v, ok := s.Lookup("k")
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	s.Set("k", "v2", 0)
	v, ok = s.Lookup("k")
	require.True(t, ok)
	assert.Equal(t, "v2", v, "set overwrites")

	assert.Equal(t, float64(2), s.Metrics().Counter(HitsTotal).Value())
	assert.Equal(t, float64(1), s.Metrics().Counter(MissesTotal).Value())
	assert.Equal(t, float64(2), s.Metrics().Counter(SetsTotal).Value())
}

func TestStore_Expiration(t *testing.T) {
	clock := clockz.NewFakeClock()
	s := New[int](0).WithClock(clock)
	assert.Equal(t, DefaultTTL, s.TTL())

	s.Set("short", 1, time.Second)
	s.SetDefault("long", 2)

	clock.Advance(999 * time.Millisecond)
	_, ok := s.Lookup("short")
	assert.True(t, ok)

	clock.Advance(time.Millisecond)
	_, ok = s.Lookup("short")
	assert.False(t, ok, "entry expiring exactly now is invalid")

	e, ok := s.Get("short")
	require.True(t, ok, "expired entries stay until purged")
	assert.Equal(t, 1, e.Value)
	assert.False(t, e.Valid(clock.Now()))

	v, ok := s.Lookup("long")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	assert.Equal(t, 1, s.Purge())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, float64(1), s.Metrics().Counter(EvictionsTotal).Value())
}

func TestStore_NilValueIsNotValid(t *testing.T) {
	s := New[*int](time.Minute)
	s.Set("nil", nil, 0)

	_, ok := s.Lookup("nil")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Delete(t *testing.T) {
	s := New[string](time.Minute)
	s.SetDefault("a", "x")
	s.Delete("a")

	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, float64(0), s.Metrics().Gauge(EntriesCount).Value())
}

func TestStore_Janitor(t *testing.T) {
	clock := clockz.NewFakeClock()
	s := New[string](time.Second).WithClock(clock)
	defer s.Close()

	s.SetDefault("a", "x")
	s.StartJanitor(time.Second)

	require.Eventually(t, func() bool {
		clock.Advance(time.Second)
		return s.Len() == 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")
}

func TestStore_Concurrent(t *testing.T) {
	s := New[int](time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			s.SetDefault(key, i)
			s.Lookup(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, s.Len())
}
