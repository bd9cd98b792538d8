package chainz

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// RetryConfig configures RetryWith.
type RetryConfig[T any] struct {
	// OnError is called with the error of every failed attempt.
	OnError ErrorHandler
	// OnExhausted supplies the result once every attempt has failed.
	// When nil the zero value of T is returned.
	OnExhausted func() T
	// RetryIf decides whether an error is worth another attempt.
	// When nil every error is retried. An error it rejects propagates
	// unchanged without consulting OnExhausted.
	RetryIf func(error) bool
	// Delay is the wait between attempts, or the first wait when
	// Exponential is set.
	Delay time.Duration
	// MaxDelay caps the wait when Exponential is set. Zero means no cap.
	MaxDelay time.Duration
	// Exponential doubles the wait after each failed attempt.
	Exponential bool
	// ExtraAttempts is the number of attempts after the first.
	ExtraAttempts int
}

// Retry re-runs the rest of the chain once, a second after a failure,
// using the chain settings. If both attempts fail the zero value is
// returned with no error.
func (c *Chain[T]) Retry() *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			s := c.getSettings()
			return c.retry(ctx, next, RetryConfig[T]{
				Delay:         s.RetryDelay,
				ExtraAttempts: s.RetryExtraAttempts,
			})
		}
	})
}

// RetryEvery allows extraAttempts more attempts after the first, waiting
// delay after each failure.
func (c *Chain[T]) RetryEvery(delay time.Duration, extraAttempts int) *Chain[T] {
	return c.RetryWith(RetryConfig[T]{
		Delay:         delay,
		ExtraAttempts: extraAttempts,
	})
}

// RetryWith retries the rest of the chain as described by cfg.
//
// Total attempts are cfg.ExtraAttempts+1. On success the result is returned
// at once. When every attempt fails, the result of cfg.OnExhausted is
// returned in place of the error. Cancelling ctx during a wait stops the
// retry and returns ctx.Err().
func (c *Chain[T]) RetryWith(cfg RetryConfig[T]) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			return c.retry(ctx, next, cfg)
		}
	})
}

func (c *Chain[T]) retry(ctx context.Context, next Work[T], cfg RetryConfig[T]) (T, error) {
	var zero T

	extra := cfg.ExtraAttempts
	if extra < 0 {
		extra = 0
	}
	attempts := extra + 1

	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = func(error) bool { return true }
	}

	delayType := retry.FixedDelay
	if cfg.Exponential {
		delayType = retry.BackOffDelay
	}

	var lastErr error
	result, err := retry.DoWithData(
		func() (T, error) {
			c.metrics.Counter(RetryAttemptsTotal).Inc()
			v, err := next(ctx)
			if err != nil {
				lastErr = err
				c.metrics.Counter(RetryFailuresTotal).Inc()
				if cfg.OnError != nil {
					cfg.OnError(err)
				}
			}
			return v, err
		},
		retry.Attempts(uint(attempts)),
		retry.Delay(cfg.Delay),
		retry.DelayType(delayType),
		retry.MaxDelay(cfg.MaxDelay),
		retry.RetryIf(retryIf),
		retry.OnRetry(func(n uint, err error) {
			c.emit(ctx, EventRetry, Event{
				Attempt:  int(n) + 1,
				Attempts: attempts,
				Error:    err,
			})
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.WithTimer(c.currentClock()),
	)
	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, ctxErr
	}
	if lastErr != nil && !retryIf(lastErr) {
		return zero, lastErr
	}

	c.metrics.Counter(RetryExhaustedTotal).Inc()
	c.emit(ctx, EventExhausted, Event{
		Attempt:  attempts,
		Attempts: attempts,
		Error:    lastErr,
	})

	if cfg.OnExhausted != nil {
		return cfg.OnExhausted(), nil
	}
	return zero, nil
}
