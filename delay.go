package chainz

import (
	"context"
	"time"
)

// Delay waits d, then runs the rest of the chain once.
// Cancelling ctx during the wait returns ctx.Err().
func (c *Chain[T]) Delay(d time.Duration) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			if d > 0 {
				select {
				case <-ctx.Done():
					var zero T
					return zero, ctx.Err()
				case <-c.currentClock().After(d):
				}
			}
			return next(ctx)
		}
	})
}
