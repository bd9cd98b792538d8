package chainz

import (
	"context"
	"fmt"

	"github.com/zoobzio/chainz/internal/zero"
)

// MustBeNonNull fails with an *ArgumentError for the first nil value,
// checked in order each time the chain runs, before the rest of the chain.
func (c *Chain[T]) MustBeNonNull(values ...any) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			if err := checkArguments(values, false); err != nil {
				var empty T
				return empty, err
			}
			return next(ctx)
		}
	})
}

// MustBeNonDefault is MustBeNonNull that also rejects zero values.
func (c *Chain[T]) MustBeNonDefault(values ...any) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			if err := checkArguments(values, true); err != nil {
				var empty T
				return empty, err
			}
			return next(ctx)
		}
	})
}

func checkArguments(values []any, rejectZero bool) error {
	for i, v := range values {
		if zero.IsNil(v) || (rejectZero && zero.IsZero(v)) {
			return &ArgumentError{
				Type:    fmt.Sprintf("%T", v),
				Index:   i,
				Default: rejectZero,
			}
		}
	}
	return nil
}

// ReturnMustBeNonNullOrDefault fails with ErrInvalidResult when the rest of
// the chain produces nil or the zero value.
func (c *Chain[T]) ReturnMustBeNonNullOrDefault() *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			v, err := next(ctx)
			if err != nil {
				return v, err
			}
			if zero.IsNil(any(v)) || zero.Of(v) {
				return v, ErrInvalidResult
			}
			return v, nil
		}
	})
}
