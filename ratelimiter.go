package chainz

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimit waits for a token from limiter before every run of the rest of
// the chain. An error from the wait, such as a cancelled ctx, is returned
// without running it. A nil limiter does not throttle.
//
// The limiter holds the bucket state, so share one limiter across the chains
// it should throttle together:
//
//	var crmLimiter = rate.NewLimiter(rate.Limit(50), 10)
//
//	chainz.New(create).RateLimit(crmLimiter).Retry().Do(ctx)
func (c *Chain[T]) RateLimit(limiter *rate.Limiter) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		if limiter == nil {
			return next
		}
		return func(ctx context.Context) (T, error) {
			if err := limiter.Wait(ctx); err != nil {
				var zero T
				return zero, err
			}
			return next(ctx)
		}
	})
}
