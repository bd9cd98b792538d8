package chainz

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type notFoundError struct{ id string }

func (e *notFoundError) Error() string { return "not found: " + e.id }

func TestTrapAndLog(t *testing.T) {
	t.Run("Swallows Error And Returns Zero", func(t *testing.T) {
		var handled []error
		chain := New(func(_ context.Context) (int, error) {
			return 7, errors.New("failed")
		}).TrapAndLog(func(err error) { handled = append(handled, err) })
		defer chain.Close()

		result, err := chain.Do(context.Background())
		if err != nil {
			t.Fatalf("expected error to be trapped, got %v", err)
		}
		if result != 0 {
			t.Errorf("expected zero result, got %d", result)
		}
		if len(handled) != 1 {
			t.Errorf("expected handler called once, got %d", len(handled))
		}
		if caught := chain.Metrics().Counter(TrapCaughtTotal).Value(); caught != 1 {
			t.Errorf("expected 1 trapped error, got %f", caught)
		}
	})

	t.Run("Success Passes Through", func(t *testing.T) {
		called := false
		chain := New(func(_ context.Context) (string, error) {
			return "ok", nil
		}).TrapAndLog(func(error) { called = true })
		defer chain.Close()

		result, err := chain.Do(context.Background())
		if err != nil || result != "ok" {
			t.Errorf("expected ok, got %q (%v)", result, err)
		}
		if called {
			t.Error("handler should not be called on success")
		}
	})

	t.Run("Fallback Value", func(t *testing.T) {
		chain := New(func(_ context.Context) (string, error) {
			return "", errors.New("failed")
		}).TrapAndLogWith(nil, "fallback")
		defer chain.Close()

		result, err := chain.Do(context.Background())
		if err != nil || result != "fallback" {
			t.Errorf("expected fallback, got %q (%v)", result, err)
		}
	})

	t.Run("Trapped Hook Fires", func(t *testing.T) {
		chain := New(func(_ context.Context) (int, error) {
			return 0, errors.New("failed")
		}).TrapAndLog(nil)
		defer chain.Close()

		events := make(chan Event, 1)
		if err := chain.OnTrapped(func(_ context.Context, e Event) error {
			events <- e
			return nil
		}); err != nil {
			t.Fatalf("failed to register hook: %v", err)
		}

		if _, err := chain.Do(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		select {
		case e := <-events:
			if e.Error == nil || e.Error.Error() != "failed" {
				t.Errorf("expected trapped error, got %v", e.Error)
			}
		case <-time.After(time.Second):
			t.Fatal("trapped hook not called")
		}
	})
}

func TestTrapWhen(t *testing.T) {
	errMissing := errors.New("missing")

	t.Run("Traps Matching Errors Only", func(t *testing.T) {
		fail := errMissing
		chain := New(func(_ context.Context) (int, error) {
			return 0, fail
		}).TrapWhen(func(err error) bool { return errors.Is(err, errMissing) }, nil, -1)
		defer chain.Close()

		result, err := chain.Do(context.Background())
		if err != nil || result != -1 {
			t.Errorf("expected -1, got %d (%v)", result, err)
		}

		other := errors.New("other")
		fail = other
		_, err = chain.Do(context.Background())
		if !errors.Is(err, other) {
			t.Errorf("expected unmatched error to propagate, got %v", err)
		}
	})
}

func TestTrapLogThrow(t *testing.T) {
	errBoom := errors.New("boom")
	var handled error
	chain := New(func(_ context.Context) (int, error) {
		return 0, errBoom
	}).TrapLogThrow(func(err error) { handled = err })
	defer chain.Close()

	_, err := chain.Do(context.Background())
	if !errors.Is(err, errBoom) {
		t.Errorf("expected error to be rethrown, got %v", err)
	}
	if handled != errBoom {
		t.Errorf("expected handler to see the error, got %v", handled)
	}
}

func TestTrapLogThrowNilHandler(t *testing.T) {
	errBoom := errors.New("boom")
	chain := New(func(_ context.Context) (int, error) {
		return 0, errBoom
	}).TrapLogThrow(nil)
	defer chain.Close()

	if _, err := chain.Do(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("expected error to be rethrown, got %v", err)
	}
}

func TestExpectedError(t *testing.T) {
	t.Run("Sentinel Match Returns Fallback", func(t *testing.T) {
		errGone := errors.New("gone")
		chain := New(func(_ context.Context) (string, error) {
			return "", fmt.Errorf("lookup: %w", errGone)
		}).ExpectedError(errGone, "default")
		defer chain.Close()

		result, err := chain.Do(context.Background())
		if err != nil || result != "default" {
			t.Errorf("expected default, got %q (%v)", result, err)
		}
	})

	t.Run("Typed Match Returns Fallback", func(t *testing.T) {
		chain := New(func(_ context.Context) (string, error) {
			return "", fmt.Errorf("lookup: %w", &notFoundError{id: "42"})
		})
		chain = Expected[*notFoundError](chain, "none")
		defer chain.Close()

		result, err := chain.Do(context.Background())
		if err != nil || result != "none" {
			t.Errorf("expected none, got %q (%v)", result, err)
		}
	})

	t.Run("Other Errors Propagate", func(t *testing.T) {
		errOther := errors.New("other")
		chain := New(func(_ context.Context) (string, error) {
			return "", errOther
		})
		chain = Expected[*notFoundError](chain, "none")
		defer chain.Close()

		_, err := chain.Do(context.Background())
		if !errors.Is(err, errOther) {
			t.Errorf("expected other error, got %v", err)
		}
	})
}
