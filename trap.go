package chainz

import (
	"context"
	"errors"
)

// TrapAndLog passes any error from the rest of the chain to handler and
// returns the zero value instead.
func (c *Chain[T]) TrapAndLog(handler ErrorHandler) *Chain[T] {
	var zero T
	return c.TrapWhen(nil, handler, zero)
}

// TrapAndLogWith passes any error to handler and returns fallback instead.
func (c *Chain[T]) TrapAndLogWith(handler ErrorHandler, fallback T) *Chain[T] {
	return c.TrapWhen(nil, handler, fallback)
}

// TrapWhen traps only the errors match accepts: they go to handler and
// fallback is returned. Other errors propagate unchanged. A nil match traps
// every error and a nil handler traps silently.
func (c *Chain[T]) TrapWhen(match func(error) bool, handler ErrorHandler, fallback T) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			v, err := next(ctx)
			if err == nil {
				return v, nil
			}
			if match != nil && !match(err) {
				return v, err
			}

			c.metrics.Counter(TrapCaughtTotal).Inc()
			c.emit(ctx, EventTrapped, Event{Error: err})
			if handler != nil {
				handler(err)
			}
			return fallback, nil
		}
	})
}

// TrapLogThrow passes any error to handler and then returns it unchanged.
// A nil handler makes it a no-op.
func (c *Chain[T]) TrapLogThrow(handler ErrorHandler) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			v, err := next(ctx)
			if err != nil && handler != nil {
				handler(err)
			}
			return v, err
		}
	})
}

// ExpectedError returns fallback for errors matching target with errors.Is.
// Any other error propagates unchanged.
func (c *Chain[T]) ExpectedError(target error, fallback T) *Chain[T] {
	return c.TrapWhen(func(err error) bool {
		return errors.Is(err, target)
	}, nil, fallback)
}

// Expected returns fallback for errors that errors.As can convert to E.
// Any other error propagates unchanged.
//
//	chainz.Expected[*NotFoundError](chain, Contact{})
func Expected[E error, T any](c *Chain[T], fallback T) *Chain[T] {
	return c.TrapWhen(isKind[E], nil, fallback)
}

func isKind[E error](err error) bool {
	var target E
	return errors.As(err, &target)
}
