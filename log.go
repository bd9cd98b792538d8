package chainz

import (
	"context"
	"fmt"
)

// Log sends before to sink, runs the rest of the chain, then sends after.
// When the run fails after is not sent and the error is returned as is.
func (c *Chain[T]) Log(sink Sink, before, after string) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			sink(before)
			v, err := next(ctx)
			if err != nil {
				return v, err
			}
			sink(after)
			return v, nil
		}
	})
}

// HowLong sends start to sink, runs the rest of the chain and reports the
// elapsed time through endTemplate, which must hold one fmt verb for a
// time.Duration:
//
//	chain.HowLong(sink, "starting timer", "it took %s")
//
// Like Log, nothing is reported after a failed run.
func (c *Chain[T]) HowLong(sink Sink, start, endTemplate string) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			clock := c.currentClock()
			sink(start)
			began := clock.Now()
			v, err := next(ctx)
			if err != nil {
				return v, err
			}
			sink(fmt.Sprintf(endTemplate, clock.Since(began)))
			return v, nil
		}
	})
}
