package chainz

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Breaker states.
const (
	StateClosed   = "closed"
	StateOpen     = "open"
	StateHalfOpen = "half-open"
)

// Breaker is a circuit breaker shared by the chains that call the same
// dependency. After failureThreshold consecutive failures it opens and
// rejects runs with ErrCircuitOpen. Once resetTimeout has passed it lets
// runs through again in the half-open state, closing after
// successThreshold successes and reopening on any failure.
//
//	var crmBreaker = chainz.NewBreaker(5, 30*time.Second)
//
//	fluent.Create(contact).CircuitBreaker(crmBreaker).Do(ctx)
type Breaker struct {
	lastFailTime     time.Time
	clock            clockz.Clock
	state            string
	resetTimeout     time.Duration
	generation       int
	failureThreshold int
	successThreshold int
	failures         int
	successes        int
	mu               sync.Mutex
}

// NewBreaker creates a closed Breaker. A threshold below 1 is treated as 1.
func NewBreaker(failureThreshold int, resetTimeout time.Duration) *Breaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		successThreshold: 1,
		resetTimeout:     resetTimeout,
		state:            StateClosed,
	}
}

// WithClock sets a custom clock for testing.
func (b *Breaker) WithClock(clock clockz.Clock) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clock = clock
	return b
}

// SetSuccessThreshold sets the successes needed to close from half-open.
func (b *Breaker) SetSuccessThreshold(n int) *Breaker {
	if n < 1 {
		n = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.successThreshold = n
	return b
}

// State returns the current state, reporting half-open once the reset
// timeout has passed.
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.getClock().Since(b.lastFailTime) > b.resetTimeout {
		return StateHalfOpen
	}
	return b.state
}

// Reset closes the circuit.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
	b.generation++
}

func (b *Breaker) getClock() clockz.Clock {
	if b.clock == nil {
		return clockz.RealClock
	}
	return b.clock
}

// admit reports whether a run may start and the generation it belongs to.
func (b *Breaker) admit() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.getClock().Since(b.lastFailTime) > b.resetTimeout {
		b.state = StateHalfOpen
		b.failures = 0
		b.successes = 0
		b.generation++
	}
	return b.generation, b.state != StateOpen
}

// record applies the outcome of a run. Outcomes from an older generation
// are ignored so a slow run cannot flip a circuit that was reset meanwhile.
func (b *Breaker) record(generation int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if generation != b.generation {
		return
	}

	if err != nil {
		b.lastFailTime = b.getClock().Now()
		switch b.state {
		case StateClosed:
			b.failures++
			if b.failures >= b.failureThreshold {
				b.state = StateOpen
			}
		case StateHalfOpen:
			b.state = StateOpen
			b.failures = 0
			b.successes = 0
		}
		return
	}

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
		}
	}
}

// CircuitBreaker runs the rest of the chain through b. While b is open runs
// fail at once with ErrCircuitOpen.
func (c *Chain[T]) CircuitBreaker(b *Breaker) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			generation, ok := b.admit()
			if !ok {
				c.metrics.Counter(BreakerRejectedTotal).Inc()
				var zero T
				return zero, ErrCircuitOpen
			}

			v, err := next(ctx)
			b.record(generation, err)
			return v, err
		}
	})
}
