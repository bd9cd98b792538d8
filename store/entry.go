package store

import (
	"time"

	"github.com/zoobzio/chainz/internal/zero"
)

// Entry is a cached value and the instant it stops being served.
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// Valid reports whether the entry holds a value and expires strictly after now.
func (e Entry[V]) Valid(now time.Time) bool {
	return !zero.IsNil(any(e.Value)) && e.ExpiresAt.After(now)
}
