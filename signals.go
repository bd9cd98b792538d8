package chainz

import (
	"time"

	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Metric keys for chain observability.
const (
	DoTotal              = metricz.Key("chain.do.total")
	DoFailuresTotal      = metricz.Key("chain.do.failures.total")
	DoDurationMs         = metricz.Key("chain.do.duration.ms")
	RetryAttemptsTotal   = metricz.Key("retry.attempts.total")
	RetryFailuresTotal   = metricz.Key("retry.failures.total")
	RetryExhaustedTotal  = metricz.Key("retry.exhausted.total")
	GateRejectedTotal    = metricz.Key("gate.rejected.total")
	TrapCaughtTotal      = metricz.Key("trap.caught.total")
	CacheHitsTotal       = metricz.Key("cache.hits.total")
	CacheMissesTotal     = metricz.Key("cache.misses.total")
	AsyncDispatchedTotal = metricz.Key("async.dispatched.total")
	AsyncFailuresTotal   = metricz.Key("async.failures.total")
	TimeoutTotal         = metricz.Key("timeout.expired.total")
	BreakerRejectedTotal = metricz.Key("breaker.rejected.total")
	FallbackUsedTotal    = metricz.Key("fallback.used.total")
)

// Span names.
const (
	DoSpan    = tracez.Key("chain.do")
	AsyncSpan = tracez.Key("chain.async")
)

// Span tags.
const (
	TagChainID   = tracez.Tag("chain.id")
	TagDecorated = tracez.Tag("chain.decorators")
	TagSuccess   = tracez.Tag("chain.success")
	TagError     = tracez.Tag("chain.error")
)

// Hook event keys.
const (
	EventRetry         = hookz.Key("retry.attempt-failed")
	EventExhausted     = hookz.Key("retry.exhausted")
	EventTrapped       = hookz.Key("trap.caught")
	EventCacheHit      = hookz.Key("cache.hit")
	EventCacheMiss     = hookz.Key("cache.miss")
	EventAsyncComplete = hookz.Key("async.complete")
)

// Event describes something a decorator did. Fields irrelevant to the
// event kind are left zero.
type Event struct {
	Timestamp time.Time     // When the event occurred
	Error     error         // Failure being reported, if any
	ChainID   string        // Chain that emitted the event
	Key       string        // Cache key for cache events
	Attempt   int           // 1-based attempt number for retry events
	Attempts  int           // Total attempts allowed for retry events
	Duration  time.Duration // Background run time for async events
}
