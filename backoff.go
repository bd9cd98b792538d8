package chainz

import "time"

// RetryBackoff is RetryEvery with a wait that doubles after each failure,
// starting at baseDelay and never exceeding maxDelay. A maxDelay of zero
// leaves the growth unbounded.
func (c *Chain[T]) RetryBackoff(baseDelay, maxDelay time.Duration, extraAttempts int) *Chain[T] {
	return c.RetryWith(RetryConfig[T]{
		Delay:         baseDelay,
		MaxDelay:      maxDelay,
		Exponential:   true,
		ExtraAttempts: extraAttempts,
	})
}
