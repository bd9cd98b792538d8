package chainz

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestActionChain(t *testing.T) {
	t.Run("Undecorated Action Is A Direct Call", func(t *testing.T) {
		calls := 0
		action := NewAction(func(_ context.Context) error {
			calls++
			return nil
		})
		defer action.Close()

		if err := action.Do(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("Attach Composes In Order", func(t *testing.T) {
		var order []string
		mark := func(name string) ActionDecorator {
			return func(next Action) Action {
				return func(ctx context.Context) error {
					order = append(order, name)
					return next(ctx)
				}
			}
		}

		action := NewAction(func(_ context.Context) error {
			order = append(order, "work")
			return nil
		}).Attach(mark("outer")).Attach(mark("inner"))
		defer action.Close()

		if err := action.Do(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.Join(order, " "); got != "outer inner work" {
			t.Errorf("expected outer inner work, got %q", got)
		}
	})

	t.Run("Retry Exhaustion Calls Handler", func(t *testing.T) {
		var calls int32
		exhausted := false
		var failures []error
		action := NewAction(func(_ context.Context) error {
			atomic.AddInt32(&calls, 1)
			return errors.New("down")
		}).RetryWith(ActionRetryConfig{
			Delay:         time.Millisecond,
			ExtraAttempts: 2,
			OnError:       func(err error) { failures = append(failures, err) },
			OnExhausted:   func() { exhausted = true },
		})
		defer action.Close()

		if err := action.Do(context.Background()); err != nil {
			t.Fatalf("expected exhaustion to be swallowed, got %v", err)
		}
		if calls != 3 || len(failures) != 3 {
			t.Errorf("expected 3 attempts and 3 reported failures, got %d and %d", calls, len(failures))
		}
		if !exhausted {
			t.Error("expected OnExhausted to be called")
		}
	})

	t.Run("Default Retry Uses Settings", func(t *testing.T) {
		var calls int32
		action := NewAction(func(_ context.Context) error {
			if atomic.AddInt32(&calls, 1) == 1 {
				return errors.New("first fails")
			}
			return nil
		}).WithSettings(Settings{RetryDelay: time.Millisecond, RetryExtraAttempts: 1}).Retry()
		defer action.Close()

		if err := action.Do(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 calls, got %d", calls)
		}
	})

	t.Run("Gate And Validation", func(t *testing.T) {
		var missing *int
		action := NewAction(func(_ context.Context) error {
			return nil
		}).WhenTrue(func() bool { return true }).MustBeNonNull("ok", missing)
		defer action.Close()

		if err := action.Do(context.Background()); !errors.Is(err, ErrArgument) {
			t.Errorf("expected ErrArgument, got %v", err)
		}

		closed := NewAction(func(_ context.Context) error {
			return nil
		}).WhenTrue(func() bool { return false })
		defer closed.Close()

		if err := closed.Do(context.Background()); !errors.Is(err, context.Canceled) {
			t.Errorf("expected cancellation, got %v", err)
		}
	})

	t.Run("MustBeNonDefault Rejects Zero", func(t *testing.T) {
		action := NewAction(func(_ context.Context) error {
			return nil
		}).MustBeNonDefault("")
		defer action.Close()

		if err := action.Do(context.Background()); !errors.Is(err, ErrArgument) {
			t.Errorf("expected ErrArgument, got %v", err)
		}
	})

	t.Run("Trapping", func(t *testing.T) {
		errGone := errors.New("gone")
		var handled []error

		trapped := NewAction(func(_ context.Context) error {
			return errGone
		}).TrapAndLog(func(err error) { handled = append(handled, err) })
		defer trapped.Close()
		if err := trapped.Do(context.Background()); err != nil {
			t.Errorf("expected trapped error, got %v", err)
		}

		rethrown := NewAction(func(_ context.Context) error {
			return errGone
		}).TrapLogThrow(func(err error) { handled = append(handled, err) })
		defer rethrown.Close()
		if err := rethrown.Do(context.Background()); !errors.Is(err, errGone) {
			t.Errorf("expected rethrown error, got %v", err)
		}

		expected := NewAction(func(_ context.Context) error {
			return errGone
		}).ExpectedError(errGone)
		defer expected.Close()
		if err := expected.Do(context.Background()); err != nil {
			t.Errorf("expected error to be expected, got %v", err)
		}

		typed := ExpectedAction[*notFoundError](NewAction(func(_ context.Context) error {
			return &notFoundError{id: "1"}
		}))
		defer typed.Close()
		if err := typed.Do(context.Background()); err != nil {
			t.Errorf("expected typed error to be expected, got %v", err)
		}

		selective := NewAction(func(_ context.Context) error {
			return errors.New("other")
		}).TrapWhen(func(err error) bool { return errors.Is(err, errGone) }, nil)
		defer selective.Close()
		if err := selective.Do(context.Background()); err == nil {
			t.Error("expected unmatched error to propagate")
		}

		if len(handled) != 2 {
			t.Errorf("expected 2 handled errors, got %d", len(handled))
		}
	})

	t.Run("Loops", func(t *testing.T) {
		remaining := 3
		each := 0
		action := NewAction(func(_ context.Context) error {
			remaining--
			return nil
		}).WhileEach(func() bool { return remaining > 0 }, func() { each++ })
		defer action.Close()

		if err := action.Do(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if each != 3 {
			t.Errorf("expected 3 iterations, got %d", each)
		}

		ready := int32(0)
		until := NewAction(func(_ context.Context) error {
			return nil
		}).Until(func() bool { return atomic.AddInt32(&ready, 1) > 2 })
		defer until.Close()
		if err := until.Do(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		never := NewAction(func(_ context.Context) error {
			return errors.New("should not run")
		}).While(func() bool { return false })
		defer never.Close()
		if err := never.Do(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Logging And Timing", func(t *testing.T) {
		clock := clockz.NewFakeClock()
		var lines []string
		sink := func(m string) { lines = append(lines, m) }

		action := NewAction(func(_ context.Context) error {
			clock.Advance(2 * time.Second)
			return nil
		}).WithClock(clock).Log(sink, "begin", "done").HowLong(sink, "timer", "took %s")
		defer action.Close()

		if err := action.Do(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := "begin,timer,took 2s,done"
		if got := strings.Join(lines, ","); got != expected {
			t.Errorf("expected %q, got %q", expected, got)
		}
	})

	t.Run("Delay", func(t *testing.T) {
		action := NewAction(func(_ context.Context) error {
			return nil
		}).Delay(time.Millisecond)
		defer action.Close()

		if err := action.Do(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("RunAsync Reports Errors", func(t *testing.T) {
		errBoom := errors.New("boom")
		var gotErr error
		action := NewAction(func(_ context.Context) error {
			return errBoom
		}).RunAsync(func(err error) { gotErr = err })
		defer action.Close()

		if err := action.Do(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		action.Wait()
		if !errors.Is(gotErr, errBoom) {
			t.Errorf("expected boom, got %v", gotErr)
		}
	})

	t.Run("AsChain Shares Decorators", func(t *testing.T) {
		action := NewAction(func(_ context.Context) error { return nil })
		defer action.Close()

		if action.AsChain().ID() != action.ID() {
			t.Error("expected AsChain to expose the underlying chain")
		}
		if action.Metrics() == nil || action.Tracer() == nil {
			t.Error("expected observability to be initialized")
		}
	})
}
