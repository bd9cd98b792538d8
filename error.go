package chainz

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds created by decorators. Errors returned by the work itself are
// never wrapped, so callers match them directly.
var (
	// ErrArgument is matched by every *ArgumentError.
	ErrArgument = errors.New("invalid argument")

	// ErrInvalidResult is returned by ReturnMustBeNonNullOrDefault.
	ErrInvalidResult = errors.New("action result is null or default")

	// ErrOutOfRange is returned by First when the collection is empty.
	ErrOutOfRange = errors.New("index out of range: collection is empty")

	// ErrCircuitOpen is returned by CircuitBreaker while its breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrConditionsNotMet is returned by WhenTrue. It also matches context.Canceled.
	ErrConditionsNotMet error = &canceledError{msg: "conditions not met"}
)

type canceledError struct {
	msg string
}

func (e *canceledError) Error() string { return e.msg }

func (e *canceledError) Is(target error) bool {
	return target == context.Canceled
}

// ArgumentError reports the first argument rejected by MustBeNonNull or
// MustBeNonDefault.
type ArgumentError struct {
	// Type is the dynamic type of the rejected value, "<nil>" for untyped nil.
	Type string
	// Index is the position of the value in the argument list.
	Index int
	// Default is true when the value was rejected for being a zero value
	// rather than nil.
	Default bool
}

func (e *ArgumentError) Error() string {
	if e.Default {
		return fmt.Sprintf("parameter of type %s at index %d is null or default", e.Type, e.Index)
	}
	return fmt.Sprintf("parameter of type %s at index %d is null", e.Type, e.Index)
}

// Is makes errors.Is(err, ErrArgument) true.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrArgument
}

// PanicError carries a value recovered from a panic in background work
// started by RunAsync.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in background work: %v", e.Value)
}

// Unwrap returns the panic value when it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// recoverFromPanic converts a panic into a *PanicError stored in err.
func recoverFromPanic(err *error) {
	if r := recover(); r != nil {
		*err = &PanicError{Value: r}
	}
}
