package chainz

import (
	"context"

	"github.com/zoobzio/clockz"
)

// Until waits for cond to become true, then runs the rest of the chain
// exactly once.
//
// cond is checked immediately and then after a wait that starts at
// Settings.PollInterval and doubles up to Settings.MaxPollInterval, so a
// condition that takes a while to flip does not pin a core. Cancelling ctx
// ends the wait with ctx.Err().
func (c *Chain[T]) Until(cond Condition) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			s := c.getSettings()
			if err := poll(ctx, c.currentClock(), s, cond); err != nil {
				var zero T
				return zero, err
			}
			return next(ctx)
		}
	})
}

func poll(ctx context.Context, clock clockz.Clock, s Settings, cond Condition) error {
	wait := s.PollInterval
	for !cond() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(wait):
		}
		wait *= 2
		if wait > s.MaxPollInterval {
			wait = s.MaxPollInterval
		}
	}
	return nil
}

// While runs the rest of the chain for as long as cond holds, checking cond
// before every run including the first. It returns the last result, or the
// zero value when cond was false from the start.
func (c *Chain[T]) While(cond Condition) *Chain[T] {
	return c.WhileEach(cond, nil)
}

// WhileEach is While with onEach called with every result as it is produced.
// A failed run stops the loop and returns its error.
func (c *Chain[T]) WhileEach(cond Condition, onEach func(T)) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			var last T
			for cond() {
				v, err := next(ctx)
				if err != nil {
					return v, err
				}
				last = v
				if onEach != nil {
					onEach(v)
				}
			}
			return last, nil
		}
	})
}
