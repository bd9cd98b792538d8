package chainz

import "context"

// First returns a chain producing the first element of the slice c produces.
// It fails with ErrOutOfRange when the slice is empty.
func First[E any](c *Chain[[]E]) *Chain[E] {
	return FirstOf(c, func(items []E) []E { return items })
}

// FirstOrDefault is First returning the zero E for an empty slice.
func FirstOrDefault[E any](c *Chain[[]E]) *Chain[E] {
	return FirstOrDefaultOf(c, func(items []E) []E { return items })
}

// FirstOf projects the first element of the collection c produces, using
// items to reach the elements. Errors from c propagate unchanged.
func FirstOf[C, E any](c *Chain[C], items func(C) []E) *Chain[E] {
	return derive(c, func(ctx context.Context) (E, error) {
		var zero E
		collection, err := c.Do(ctx)
		if err != nil {
			return zero, err
		}
		elems := items(collection)
		if len(elems) == 0 {
			return zero, ErrOutOfRange
		}
		return elems[0], nil
	})
}

// FirstOrDefaultOf is FirstOf returning the zero E for an empty collection.
func FirstOrDefaultOf[C, E any](c *Chain[C], items func(C) []E) *Chain[E] {
	return derive(c, func(ctx context.Context) (E, error) {
		var zero E
		collection, err := c.Do(ctx)
		if err != nil {
			return zero, err
		}
		if elems := items(collection); len(elems) > 0 {
			return elems[0], nil
		}
		return zero, nil
	})
}

// derive creates a chain around work that shares the clock and settings of src.
func derive[S, T any](src *Chain[S], work Work[T]) *Chain[T] {
	src.mu.RLock()
	clock := src.clock
	settings := src.settings
	src.mu.RUnlock()

	out := New(work)
	out.clock = clock
	out.settings = settings
	return out
}
