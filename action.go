package chainz

import (
	"context"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
	"golang.org/x/time/rate"
)

// unit is the result type of the chain underneath an ActionChain.
type unit = struct{}

// ActionChain wraps an Action, work with no result, in an ordered stack of
// decorators. It behaves exactly like Chain with every value dropped from
// the callbacks; it is a Chain[struct{}] underneath.
type ActionChain struct {
	chain *Chain[unit]
}

// ActionRetryConfig configures ActionChain.RetryWith. See RetryConfig.
type ActionRetryConfig struct {
	OnError       ErrorHandler
	OnExhausted   func()
	RetryIf       func(error) bool
	Delay         time.Duration
	MaxDelay      time.Duration
	Exponential   bool
	ExtraAttempts int
}

// NewAction creates an ActionChain around work. Work is not run until Do is called.
func NewAction(work Action) *ActionChain {
	return &ActionChain{chain: New(lift(work))}
}

func lift(a Action) Work[unit] {
	return func(ctx context.Context) (unit, error) {
		return unit{}, a(ctx)
	}
}

func lower(w Work[unit]) Action {
	return func(ctx context.Context) error {
		_, err := w(ctx)
		return err
	}
}

// Attach composes d into the chain as the new innermost decorator.
func (a *ActionChain) Attach(d ActionDecorator) *ActionChain {
	a.chain.Attach(func(next Work[unit]) Work[unit] {
		return lift(d(lower(next)))
	})
	return a
}

// Do runs the composed chain once.
func (a *ActionChain) Do(ctx context.Context) error {
	_, err := a.chain.Do(ctx)
	return err
}

// AsChain returns the Chain[struct{}] the action chain is built on.
func (a *ActionChain) AsChain() *Chain[struct{}] {
	return a.chain
}

// ID returns the unique identifier of this chain.
func (a *ActionChain) ID() string { return a.chain.ID() }

// Metrics returns the metrics registry for this chain.
func (a *ActionChain) Metrics() *metricz.Registry { return a.chain.Metrics() }

// Tracer returns the tracer for this chain.
func (a *ActionChain) Tracer() *tracez.Tracer { return a.chain.Tracer() }

// WithClock sets a custom clock for testing.
func (a *ActionChain) WithClock(clock clockz.Clock) *ActionChain {
	a.chain.WithClock(clock)
	return a
}

// WithSettings replaces the defaults used by decorators attached without
// explicit values.
func (a *ActionChain) WithSettings(s Settings) *ActionChain {
	a.chain.WithSettings(s)
	return a
}

// Wait blocks until background runs started by RunAsync are done.
func (a *ActionChain) Wait() { a.chain.Wait() }

// Close waits for background work and shuts down observability components.
func (a *ActionChain) Close() error { return a.chain.Close() }

// OnRetry registers a handler called after each failed retry attempt.
func (a *ActionChain) OnRetry(handler func(context.Context, Event) error) error {
	return a.chain.OnRetry(handler)
}

// OnExhausted registers a handler called when a retry runs out of attempts.
func (a *ActionChain) OnExhausted(handler func(context.Context, Event) error) error {
	return a.chain.OnExhausted(handler)
}

// OnTrapped registers a handler called when a trapping decorator swallows an error.
func (a *ActionChain) OnTrapped(handler func(context.Context, Event) error) error {
	return a.chain.OnTrapped(handler)
}

// OnAsyncComplete registers a handler called when a background run finishes.
func (a *ActionChain) OnAsyncComplete(handler func(context.Context, Event) error) error {
	return a.chain.OnAsyncComplete(handler)
}

// Retry re-runs the rest of the chain once, a second after a failure,
// using the chain settings. A second failure is swallowed.
func (a *ActionChain) Retry() *ActionChain {
	a.chain.Retry()
	return a
}

// RetryEvery allows extraAttempts more attempts after the first, waiting
// delay after each failure.
func (a *ActionChain) RetryEvery(delay time.Duration, extraAttempts int) *ActionChain {
	a.chain.RetryEvery(delay, extraAttempts)
	return a
}

// RetryWith retries the rest of the chain as described by cfg. When every
// attempt fails cfg.OnExhausted is called and Do reports no error.
func (a *ActionChain) RetryWith(cfg ActionRetryConfig) *ActionChain {
	var exhausted func() unit
	if cfg.OnExhausted != nil {
		exhausted = func() unit {
			cfg.OnExhausted()
			return unit{}
		}
	}
	a.chain.RetryWith(RetryConfig[unit]{
		OnError:       cfg.OnError,
		OnExhausted:   exhausted,
		RetryIf:       cfg.RetryIf,
		Delay:         cfg.Delay,
		MaxDelay:      cfg.MaxDelay,
		Exponential:   cfg.Exponential,
		ExtraAttempts: cfg.ExtraAttempts,
	})
	return a
}

// Until waits for cond to become true, then runs the rest of the chain once.
func (a *ActionChain) Until(cond Condition) *ActionChain {
	a.chain.Until(cond)
	return a
}

// While runs the rest of the chain for as long as cond holds.
func (a *ActionChain) While(cond Condition) *ActionChain {
	a.chain.While(cond)
	return a
}

// WhileEach is While with onEach called after every completed run.
func (a *ActionChain) WhileEach(cond Condition, onEach func()) *ActionChain {
	var each func(unit)
	if onEach != nil {
		each = func(unit) { onEach() }
	}
	a.chain.WhileEach(cond, each)
	return a
}

// WhenTrue runs the rest of the chain only when every condition holds.
func (a *ActionChain) WhenTrue(conds ...Condition) *ActionChain {
	a.chain.WhenTrue(conds...)
	return a
}

// Delay waits d, then runs the rest of the chain once.
func (a *ActionChain) Delay(d time.Duration) *ActionChain {
	a.chain.Delay(d)
	return a
}

// Log sends before and after to sink around the rest of the chain.
func (a *ActionChain) Log(sink Sink, before, after string) *ActionChain {
	a.chain.Log(sink, before, after)
	return a
}

// HowLong reports the time the rest of the chain took through endTemplate.
func (a *ActionChain) HowLong(sink Sink, start, endTemplate string) *ActionChain {
	a.chain.HowLong(sink, start, endTemplate)
	return a
}

// TrapAndLog passes any error to handler and swallows it.
func (a *ActionChain) TrapAndLog(handler ErrorHandler) *ActionChain {
	a.chain.TrapAndLog(handler)
	return a
}

// TrapWhen swallows the errors match accepts after passing them to handler.
func (a *ActionChain) TrapWhen(match func(error) bool, handler ErrorHandler) *ActionChain {
	a.chain.TrapWhen(match, handler, unit{})
	return a
}

// TrapLogThrow passes any error to handler and then returns it unchanged.
func (a *ActionChain) TrapLogThrow(handler ErrorHandler) *ActionChain {
	a.chain.TrapLogThrow(handler)
	return a
}

// ExpectedError swallows errors matching target with errors.Is.
func (a *ActionChain) ExpectedError(target error) *ActionChain {
	a.chain.ExpectedError(target, unit{})
	return a
}

// ExpectedAction swallows errors that errors.As can convert to E.
func ExpectedAction[E error](a *ActionChain) *ActionChain {
	Expected[E](a.chain, unit{})
	return a
}

// MustBeNonNull fails with an *ArgumentError for the first nil value.
func (a *ActionChain) MustBeNonNull(values ...any) *ActionChain {
	a.chain.MustBeNonNull(values...)
	return a
}

// MustBeNonDefault fails with an *ArgumentError for the first nil or zero value.
func (a *ActionChain) MustBeNonDefault(values ...any) *ActionChain {
	a.chain.MustBeNonDefault(values...)
	return a
}

// RunAsync returns at once and runs the rest of the chain on a new goroutine,
// reporting its error, or a *PanicError, to onComplete.
func (a *ActionChain) RunAsync(onComplete func(error)) *ActionChain {
	var done func(unit, error)
	if onComplete != nil {
		done = func(_ unit, err error) { onComplete(err) }
	}
	a.chain.RunAsync(done)
	return a
}

// Timeout bounds every run of the rest of the chain to d.
func (a *ActionChain) Timeout(d time.Duration) *ActionChain {
	a.chain.Timeout(d)
	return a
}

// RetryBackoff retries with a wait that doubles after each failure.
func (a *ActionChain) RetryBackoff(baseDelay, maxDelay time.Duration, extraAttempts int) *ActionChain {
	a.chain.RetryBackoff(baseDelay, maxDelay, extraAttempts)
	return a
}

// CircuitBreaker runs the rest of the chain through b.
func (a *ActionChain) CircuitBreaker(b *Breaker) *ActionChain {
	a.chain.CircuitBreaker(b)
	return a
}

// Fallback runs alternatives in order when the rest of the chain fails.
func (a *ActionChain) Fallback(alternatives ...Action) *ActionChain {
	works := make([]Work[unit], len(alternatives))
	for i, alt := range alternatives {
		works[i] = lift(alt)
	}
	a.chain.Fallback(works...)
	return a
}

// Pooled holds a slot in p for every run of the rest of the chain.
func (a *ActionChain) Pooled(p *Pool) *ActionChain {
	a.chain.Pooled(p)
	return a
}

// RateLimit waits for a token from limiter before every run.
func (a *ActionChain) RateLimit(limiter *rate.Limiter) *ActionChain {
	a.chain.RateLimit(limiter)
	return a
}
