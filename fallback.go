package chainz

import "context"

// Fallback runs alternatives in order when the rest of the chain fails,
// returning the first success. When every alternative fails too, the last
// error is returned. Alternatives are plain work and are not decorated by
// the decorators attached after Fallback.
//
//	fluent.Retrieve("contact", id, cols).
//		Fallback(readReplica, fromSnapshot)
func (c *Chain[T]) Fallback(alternatives ...Work[T]) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			v, err := next(ctx)
			if err == nil {
				return v, nil
			}
			for _, alt := range alternatives {
				if ctx.Err() != nil {
					return v, err
				}
				c.metrics.Counter(FallbackUsedTotal).Inc()
				v, err = alt(ctx)
				if err == nil {
					return v, nil
				}
			}
			return v, err
		}
	})
}
