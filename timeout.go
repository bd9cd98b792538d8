package chainz

import (
	"context"
	"time"
)

// Timeout bounds every run of the rest of the chain to d.
//
// The rest of the chain runs on its own goroutine with a context that is
// cancelled when d elapses on the chain clock; Timeout then returns
// context.DeadlineExceeded without waiting for it. Work that ignores its
// context keeps running in the background after the timeout.
//
// Timeout is usually attached inside a Retry so that each attempt gets the
// full budget:
//
//	chain.RetryEvery(time.Second, 3).Timeout(5 * time.Second)
func (c *Chain[T]) Timeout(d time.Duration) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			ctx, cancel := c.currentClock().WithTimeout(ctx, d)
			defer cancel()

			type outcome struct {
				value T
				err   error
			}
			done := make(chan outcome, 1)
			go func() {
				var o outcome
				o.value, o.err = runRecovered(ctx, next)
				done <- o
			}()

			select {
			case o := <-done:
				return o.value, o.err
			case <-ctx.Done():
				c.metrics.Counter(TimeoutTotal).Inc()
				var zero T
				return zero, ctx.Err()
			}
		}
	})
}
