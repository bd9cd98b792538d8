package chainz

import (
	"context"
	"errors"
	"testing"
)

func TestMustBeNonNull(t *testing.T) {
	t.Run("Valid Arguments Run Work", func(t *testing.T) {
		name := "alice"
		chain := New(func(_ context.Context) (int, error) {
			return 1, nil
		}).MustBeNonNull(&name, "x", 0)
		defer chain.Close()

		if _, err := chain.Do(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Nil Argument Fails Before Work", func(t *testing.T) {
		var missing *string
		calls := 0
		chain := New(func(_ context.Context) (int, error) {
			calls++
			return 1, nil
		}).MustBeNonNull("present", missing)
		defer chain.Close()

		_, err := chain.Do(context.Background())
		if !errors.Is(err, ErrArgument) {
			t.Fatalf("expected ErrArgument, got %v", err)
		}
		var argErr *ArgumentError
		if !errors.As(err, &argErr) {
			t.Fatalf("expected *ArgumentError, got %T", err)
		}
		if argErr.Index != 1 {
			t.Errorf("expected index 1, got %d", argErr.Index)
		}
		if argErr.Type != "*string" {
			t.Errorf("expected type *string, got %q", argErr.Type)
		}
		if got := err.Error(); got != "parameter of type *string at index 1 is null" {
			t.Errorf("unexpected message %q", got)
		}
		if calls != 0 {
			t.Errorf("expected work not to run, got %d calls", calls)
		}
	})

	t.Run("Untyped Nil Argument", func(t *testing.T) {
		chain := New(func(_ context.Context) (int, error) {
			return 1, nil
		}).MustBeNonNull(nil)
		defer chain.Close()

		if _, err := chain.Do(context.Background()); !errors.Is(err, ErrArgument) {
			t.Errorf("expected ErrArgument, got %v", err)
		}
	})
}

func TestMustBeNonDefault(t *testing.T) {
	t.Run("Zero Value Fails", func(t *testing.T) {
		chain := New(func(_ context.Context) (int, error) {
			return 1, nil
		}).MustBeNonDefault("id", 0)
		defer chain.Close()

		_, err := chain.Do(context.Background())
		var argErr *ArgumentError
		if !errors.As(err, &argErr) {
			t.Fatalf("expected *ArgumentError, got %v", err)
		}
		if argErr.Index != 1 || !argErr.Default {
			t.Errorf("expected default failure at index 1, got %+v", argErr)
		}
		if got := err.Error(); got != "parameter of type int at index 1 is null or default" {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("Non Zero Values Pass", func(t *testing.T) {
		chain := New(func(_ context.Context) (int, error) {
			return 1, nil
		}).MustBeNonDefault("id", 5, true)
		defer chain.Close()

		if _, err := chain.Do(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestReturnMustBeNonNullOrDefault(t *testing.T) {
	t.Run("Zero Result Is Invalid", func(t *testing.T) {
		chain := New(func(_ context.Context) (string, error) {
			return "", nil
		}).ReturnMustBeNonNullOrDefault()
		defer chain.Close()

		if _, err := chain.Do(context.Background()); !errors.Is(err, ErrInvalidResult) {
			t.Errorf("expected ErrInvalidResult, got %v", err)
		}
	})

	t.Run("Nil Pointer Result Is Invalid", func(t *testing.T) {
		chain := New(func(_ context.Context) (*int, error) {
			return nil, nil
		}).ReturnMustBeNonNullOrDefault()
		defer chain.Close()

		if _, err := chain.Do(context.Background()); !errors.Is(err, ErrInvalidResult) {
			t.Errorf("expected ErrInvalidResult, got %v", err)
		}
	})

	t.Run("Valid Result Passes", func(t *testing.T) {
		chain := New(func(_ context.Context) (string, error) {
			return "value", nil
		}).ReturnMustBeNonNullOrDefault()
		defer chain.Close()

		if result, err := chain.Do(context.Background()); err != nil || result != "value" {
			t.Errorf("expected value, got %q (%v)", result, err)
		}
	})

	t.Run("Work Errors Pass Through", func(t *testing.T) {
		errBoom := errors.New("boom")
		chain := New(func(_ context.Context) (string, error) {
			return "", errBoom
		}).ReturnMustBeNonNullOrDefault()
		defer chain.Close()

		if _, err := chain.Do(context.Background()); !errors.Is(err, errBoom) {
			t.Errorf("expected boom, got %v", err)
		}
	})
}
