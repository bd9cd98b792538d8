package chainz

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Chain wraps a Work producing T in an ordered stack of decorators.
//
// Decorators are attached with the fluent methods (Retry, Log, Cache, ...)
// or with Attach, and run only when Do is called. The first decorator
// attached is the outermost: attaching d1 then d2 runs as d1(d2(work)).
//
// A Chain may be run any number of times; each Do re-runs the full stack.
// Attaching and running are safe for concurrent use, but the usual pattern
// is to build a chain once and then call Do.
type Chain[T any] struct {
	work       Work[T]
	clock      clockz.Clock
	cache      Cache[T]
	metrics    *metricz.Registry
	tracer     *tracez.Tracer
	hooks      *hookz.Hooks[Event]
	id         string
	decorators []Decorator[T]
	settings   Settings
	inflight   sync.WaitGroup
	mu         sync.RWMutex
	closeOnce  sync.Once
}

// New creates a Chain around work. Work is not run until Do is called.
func New[T any](work Work[T]) *Chain[T] {
	registry := metricz.New()
	registry.Counter(DoTotal)
	registry.Counter(DoFailuresTotal)
	registry.Counter(RetryAttemptsTotal)
	registry.Counter(RetryFailuresTotal)
	registry.Counter(RetryExhaustedTotal)
	registry.Counter(GateRejectedTotal)
	registry.Counter(TrapCaughtTotal)
	registry.Counter(CacheHitsTotal)
	registry.Counter(CacheMissesTotal)
	registry.Counter(AsyncDispatchedTotal)
	registry.Counter(AsyncFailuresTotal)
	registry.Counter(TimeoutTotal)
	registry.Counter(BreakerRejectedTotal)
	registry.Counter(FallbackUsedTotal)
	registry.Gauge(DoDurationMs)

	return &Chain[T]{
		id:       uuid.NewString(),
		work:     work,
		settings: DefaultSettings(),
		metrics:  registry,
		tracer:   tracez.New(),
	}
}

// Attach composes d into the chain as the new innermost decorator.
func (c *Chain[T]) Attach(d Decorator[T]) *Chain[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decorators = append(c.decorators, d)
	return c
}

// Do runs the composed chain once and returns its result.
// With no decorators attached it is a direct call to the work.
func (c *Chain[T]) Do(ctx context.Context) (result T, err error) {
	c.mu.RLock()
	work := c.work
	decorators := c.decorators
	clock := c.getClock()
	c.mu.RUnlock()

	c.metrics.Counter(DoTotal).Inc()

	ctx, span := c.tracer.StartSpan(ctx, DoSpan)
	span.SetTag(TagChainID, c.id)
	span.SetTag(TagDecorated, strconv.Itoa(len(decorators)))
	start := clock.Now()
	defer func() {
		c.metrics.Gauge(DoDurationMs).Set(float64(clock.Since(start).Milliseconds()))
		if err != nil {
			c.metrics.Counter(DoFailuresTotal).Inc()
			span.SetTag(TagSuccess, "false")
			span.SetTag(TagError, err.Error())
		} else {
			span.SetTag(TagSuccess, "true")
		}
		span.Finish()
	}()

	return compose(work, decorators)(ctx)
}

// compose folds decorators around work so that decorators[0] is outermost.
func compose[T any](work Work[T], decorators []Decorator[T]) Work[T] {
	next := work
	for i := len(decorators) - 1; i >= 0; i-- {
		next = decorators[i](next)
	}
	return next
}

// WithClock sets a custom clock for testing.
func (c *Chain[T]) WithClock(clock clockz.Clock) *Chain[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock = clock
	return c
}

// WithSettings replaces the defaults used by decorators attached without
// explicit values. Settings are read each time a decorator runs.
func (c *Chain[T]) WithSettings(s Settings) *Chain[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s.normalize()
	return c
}

// WithCache makes Cache decorators on this chain use cache instead of the
// shared store. A nil cache restores the shared store.
func (c *Chain[T]) WithCache(cache Cache[T]) *Chain[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = cache
	return c
}

func (c *Chain[T]) getClock() clockz.Clock {
	if c.clock == nil {
		return clockz.RealClock
	}
	return c.clock
}

func (c *Chain[T]) currentClock() clockz.Clock {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.getClock()
}

func (c *Chain[T]) getSettings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

func (c *Chain[T]) getCache() Cache[T] {
	c.mu.RLock()
	cache := c.cache
	c.mu.RUnlock()
	if cache == nil {
		return SharedStore[T]()
	}
	return cache
}

// ID returns the unique identifier of this chain, used in spans and events.
func (c *Chain[T]) ID() string {
	return c.id
}

// Metrics returns the metrics registry for this chain.
func (c *Chain[T]) Metrics() *metricz.Registry {
	return c.metrics
}

// Tracer returns the tracer for this chain.
func (c *Chain[T]) Tracer() *tracez.Tracer {
	return c.tracer
}

// Wait blocks until every background run started by RunAsync has finished
// and its completion callback has returned.
func (c *Chain[T]) Wait() {
	c.inflight.Wait()
}

// Close waits for background work, then shuts down observability components.
// Close is idempotent.
func (c *Chain[T]) Close() error {
	c.closeOnce.Do(func() {
		c.inflight.Wait()
		c.tracer.Close()
		c.mu.RLock()
		hooks := c.hooks
		c.mu.RUnlock()
		if hooks != nil {
			hooks.Close()
		}
	})
	return nil
}

// OnRetry registers a handler called after each failed retry attempt.
// Handlers are called asynchronously.
func (c *Chain[T]) OnRetry(handler func(context.Context, Event) error) error {
	return c.hook(EventRetry, handler)
}

// OnExhausted registers a handler called when a retry runs out of attempts.
func (c *Chain[T]) OnExhausted(handler func(context.Context, Event) error) error {
	return c.hook(EventExhausted, handler)
}

// OnTrapped registers a handler called when a trapping decorator swallows an error.
func (c *Chain[T]) OnTrapped(handler func(context.Context, Event) error) error {
	return c.hook(EventTrapped, handler)
}

// OnCacheHit registers a handler called when Cache serves a stored value.
func (c *Chain[T]) OnCacheHit(handler func(context.Context, Event) error) error {
	return c.hook(EventCacheHit, handler)
}

// OnCacheMiss registers a handler called when Cache has to run the work.
func (c *Chain[T]) OnCacheMiss(handler func(context.Context, Event) error) error {
	return c.hook(EventCacheMiss, handler)
}

// OnAsyncComplete registers a handler called when background work started
// by RunAsync finishes, successfully or not.
func (c *Chain[T]) OnAsyncComplete(handler func(context.Context, Event) error) error {
	return c.hook(EventAsyncComplete, handler)
}

func (c *Chain[T]) hook(key hookz.Key, handler func(context.Context, Event) error) error {
	c.mu.Lock()
	if c.hooks == nil {
		c.hooks = hookz.New[Event]()
	}
	hooks := c.hooks
	c.mu.Unlock()

	_, err := hooks.Hook(key, handler)
	return err
}

// emit sends an event when at least one handler has been registered.
func (c *Chain[T]) emit(ctx context.Context, key hookz.Key, event Event) {
	c.mu.RLock()
	hooks := c.hooks
	clock := c.getClock()
	c.mu.RUnlock()
	if hooks == nil {
		return
	}

	event.ChainID = c.id
	if event.Timestamp.IsZero() {
		event.Timestamp = clock.Now()
	}
	_ = hooks.Emit(ctx, key, event) //nolint:errcheck
}
