package chainz

import (
	"context"
	"time"
)

// Work is a deferred unit of work that produces a T or fails.
// A decorator receives the rest of the chain as a Work of the same shape.
type Work[T any] func(ctx context.Context) (T, error)

// Decorator wraps a continuation in one cross-cutting behavior.
// Decorators must not run next until the returned Work is invoked.
type Decorator[T any] func(next Work[T]) Work[T]

// Action is a deferred unit of work with no result.
type Action func(ctx context.Context) error

// ActionDecorator wraps an Action continuation.
type ActionDecorator func(next Action) Action

// Sink receives a formatted log line.
type Sink func(message string)

// ErrorHandler observes an error.
type ErrorHandler func(err error)

// Condition is a zero-argument predicate used by gates and loops.
type Condition func() bool

// Cache is the store the Cache decorator reads and writes.
// Lookup must only report entries that are still valid.
type Cache[T any] interface {
	Lookup(key string) (T, bool)
	Set(key string, value T, ttl time.Duration)
}
