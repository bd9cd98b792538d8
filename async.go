package chainz

import (
	"context"
	"strconv"
)

// RunAsync returns the zero value immediately and runs the rest of the chain
// on a new goroutine. See RunAsyncWith.
func (c *Chain[T]) RunAsync(onComplete func(T, error)) *Chain[T] {
	var zero T
	return c.RunAsyncWith(onComplete, zero)
}

// RunAsyncWith returns fakeReturn immediately and runs the rest of the chain
// on a new goroutine. When the run finishes onComplete receives its result
// and error on that goroutine. A panic in the background run is recovered
// and reported to onComplete as a *PanicError.
//
// The background run keeps the values of ctx but not its cancellation, since
// the caller has usually moved on by the time it matters. Decorators that
// should act inside the background run, such as TrapAndLog, go after
// RunAsync. Use Wait or Close to block until background runs are done.
func (c *Chain[T]) RunAsyncWith(onComplete func(T, error), fakeReturn T) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			c.metrics.Counter(AsyncDispatchedTotal).Inc()

			bg := context.WithoutCancel(ctx)
			clock := c.currentClock()

			c.inflight.Add(1)
			go func() {
				defer c.inflight.Done()

				spanCtx, span := c.tracer.StartSpan(bg, AsyncSpan)
				span.SetTag(TagChainID, c.id)
				start := clock.Now()

				v, err := runRecovered(spanCtx, next)

				if err != nil {
					c.metrics.Counter(AsyncFailuresTotal).Inc()
					span.SetTag(TagError, err.Error())
				}
				span.SetTag(TagSuccess, strconv.FormatBool(err == nil))
				span.Finish()

				c.emit(bg, EventAsyncComplete, Event{
					Error:    err,
					Duration: clock.Since(start),
				})
				if onComplete != nil {
					onComplete(v, err)
				}
			}()

			return fakeReturn, nil
		}
	})
}

func runRecovered[T any](ctx context.Context, next Work[T]) (result T, err error) {
	defer recoverFromPanic(&err)
	return next(ctx)
}
