package chainz

import "context"

// WhenTrue runs the rest of the chain only when every condition holds.
// Otherwise it fails with ErrConditionsNotMet without running it.
func (c *Chain[T]) WhenTrue(conds ...Condition) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			for _, cond := range conds {
				if !cond() {
					c.metrics.Counter(GateRejectedTotal).Inc()
					var zero T
					return zero, ErrConditionsNotMet
				}
			}
			return next(ctx)
		}
	})
}
