// Package testing provides test utilities for chainz-based code.
//
// It includes a call-counting mock work with scripted failures and
// recorders for log sinks and error handlers, so decorator behavior can be
// asserted without a real service behind the chain.
//
// Example usage:
//
//	func TestCreateRetries(t *testing.T) {
//		work := chainztest.NewMockWork[string](t, "create").
//			FailTimes(2, errors.New("unavailable")).
//			WithReturn("ok", nil)
//
//		got, err := chainz.New(work.Work()).RetryEvery(time.Millisecond, 2).Do(ctx)
//
//		require.NoError(t, err)
//		assert.Equal(t, "ok", got)
//		chainztest.AssertCalled(t, work, 3)
//	}
package testing

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// MockWork is a configurable unit of work that records its calls.
type MockWork[T any] struct { //nolint:govet // fieldalignment: Test helper struct optimized for functionality over memory efficiency
	t         *testing.T
	name      string
	callCount int64
	returnVal T
	returnErr error
	sequence  []T
	failErr   error
	failTimes int
	delay     time.Duration
	panicMsg  string
	mu        sync.RWMutex
}

// NewMockWork creates a new mock work for testing.
func NewMockWork[T any](t *testing.T, name string) *MockWork[T] {
	return &MockWork[T]{
		t:    t,
		name: name,
	}
}

// WithReturn configures the value and error returned by every call that is
// not scripted to fail.
func (m *MockWork[T]) WithReturn(val T, err error) *MockWork[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnVal = val
	m.returnErr = err
	return m
}

// WithSequence makes successful calls return values in order. Once the
// sequence is used up the WithReturn value is returned.
func (m *MockWork[T]) WithSequence(values ...T) *MockWork[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = append([]T(nil), values...)
	return m
}

// FailTimes makes the first n calls fail with err.
func (m *MockWork[T]) FailTimes(n int, err error) *MockWork[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failTimes = n
	m.failErr = err
	return m
}

// WithDelay configures the mock to delay execution.
func (m *MockWork[T]) WithDelay(d time.Duration) *MockWork[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// WithPanic configures the mock to panic with a specific message.
func (m *MockWork[T]) WithPanic(msg string) *MockWork[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicMsg = msg
	return m
}

// Name returns the name of the mock.
func (m *MockWork[T]) Name() string {
	return m.name
}

// Work returns the function to hand to chainz.New.
func (m *MockWork[T]) Work() func(context.Context) (T, error) {
	return m.call
}

// Action returns the function to hand to chainz.NewAction.
func (m *MockWork[T]) Action() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := m.call(ctx)
		return err
	}
}

func (m *MockWork[T]) call(ctx context.Context) (T, error) {
	n := int(atomic.AddInt64(&m.callCount, 1))

	m.mu.Lock()
	delay := m.delay
	panicMsg := m.panicMsg
	failing := n <= m.failTimes
	failErr := m.failErr
	val, err := m.returnVal, m.returnErr
	if !failing && len(m.sequence) > 0 {
		val = m.sequence[0]
		m.sequence = m.sequence[1:]
	}
	m.mu.Unlock()

	if panicMsg != "" {
		panic(panicMsg)
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}

	if failing {
		var zero T
		return zero, failErr
	}
	return val, err
}

// CallCount returns the number of times the work has been called.
func (m *MockWork[T]) CallCount() int {
	return int(atomic.LoadInt64(&m.callCount))
}

// Reset clears call tracking.
func (m *MockWork[T]) Reset() {
	atomic.StoreInt64(&m.callCount, 0)
}

// AssertCalled verifies that the mock work was called exactly n times.
func AssertCalled[T any](t *testing.T, mock *MockWork[T], expectedCalls int) {
	t.Helper()
	actualCalls := mock.CallCount()
	if actualCalls != expectedCalls {
		t.Errorf("expected mock work %s to be called %d times, but was called %d times",
			mock.name, expectedCalls, actualCalls)
	}
}

// AssertNotCalled verifies that the mock work was never called.
func AssertNotCalled[T any](t *testing.T, mock *MockWork[T]) {
	t.Helper()
	AssertCalled(t, mock, 0)
}

// SinkRecorder collects the messages sent to a log sink.
type SinkRecorder struct {
	lines []string
	mu    sync.Mutex
}

// Sink returns the function to hand to Log or HowLong.
func (r *SinkRecorder) Sink() func(string) {
	return func(msg string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.lines = append(r.lines, msg)
	}
}

// Lines returns a copy of the recorded messages in order.
func (r *SinkRecorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// ErrorRecorder collects the errors passed to an error handler.
type ErrorRecorder struct {
	errs []error
	mu   sync.Mutex
}

// Handler returns the function to hand to trapping and retry decorators.
func (r *ErrorRecorder) Handler() func(error) {
	return func(err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.errs = append(r.errs, err)
	}
}

// Errors returns a copy of the recorded errors in order.
func (r *ErrorRecorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// Count returns the number of recorded errors.
func (r *ErrorRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}
