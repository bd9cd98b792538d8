// Package chainz wraps a single unit of work in an ordered stack of
// cross-cutting decorators and runs the whole stack only when asked to.
//
// # Overview
//
// A Chain holds a terminal Work and the decorators attached to it. Each
// decorator method returns the same chain so calls can be strung together,
// and nothing runs until Do is called:
//
//	id, err := chainz.New(createContact).
//	    Retry().
//	    Log(sink, "creating contact", "contact created").
//	    Do(ctx)
//
// There are two flavors: Chain[T] wraps work that produces a value and
// ActionChain wraps work that only has side effects. They carry the same
// decorator set except for the ones that inspect a result (Cache and
// ReturnMustBeNonNullOrDefault).
//
// # Composition Order
//
// The first decorator attached is the outermost wrapper and the last one
// attached sits directly around the work. Attaching d1 then d2 runs as
// d1(d2(work)). An outer decorator that calls its continuation more than
// once re-runs everything inside it:
//
//	chainz.New(work).
//	    RetryEvery(time.Second, 2).     // outer: up to 3 attempts
//	    Log(sink, "before", "after").   // inner: logged on every attempt
//	    Do(ctx)
//
// # Decorators
//
//   - Retry, RetryEvery, RetryWith: re-run on failure with a fixed delay, then fall back
//   - Until: wait for a condition, then run once
//   - While, WhileEach: run repeatedly while a condition holds
//   - WhenTrue: refuse to run unless every condition holds
//   - Delay: wait, then run
//   - Log, HowLong: report around the run
//   - TrapAndLog, TrapAndLogWith, TrapWhen, TrapLogThrow, ExpectedError, Expected: error trapping
//   - MustBeNonNull, MustBeNonDefault, ReturnMustBeNonNullOrDefault: argument and result checks
//   - Cache, CacheFor: serve a stored result until it expires
//   - RunAsync, RunAsyncWith: return immediately and finish in the background
//   - RateLimit: wait for a token before each run
//   - RetryBackoff: retry with a doubling delay
//   - Timeout: bound each run
//   - CircuitBreaker: stop calling a failing dependency, via a shared Breaker
//   - Fallback: try alternative work when the run fails
//   - Pooled: cap concurrent runs across chains sharing a Pool
//
// Custom behavior can be attached with Attach:
//
//	chain.Attach(func(next chainz.Work[int]) chainz.Work[int] {
//	    return func(ctx context.Context) (int, error) {
//	        n, err := next(ctx)
//	        return n * 2, err
//	    }
//	})
//
// # Errors
//
// Decorators never wrap errors they did not create, so errors.Is and
// errors.As keep working on whatever the work returned. The errors the
// package does create are ErrArgument (via *ArgumentError), ErrInvalidResult,
// ErrOutOfRange, ErrConditionsNotMet, ErrCircuitOpen and *PanicError.
//
// # Caching
//
// Cache stores results in a process-wide store shared by every chain with
// the same result type. Use WithCache to give a chain its own store, which is
// also how tests avoid sharing state.
//
// # Observability
//
// Every chain owns a metricz registry, a tracez tracer and, once a handler
// is registered, a hookz event hub. See the Metric, Span and Event keys in
// signals.go.
package chainz
