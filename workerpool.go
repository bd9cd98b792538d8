package chainz

import (
	"context"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/metricz"
)

// Pool metric keys.
const (
	PoolWorkersMax    = metricz.Key("pool.workers.max")
	PoolWorkersActive = metricz.Key("pool.workers.active")
	PoolQueueWaitMs   = metricz.Key("pool.queue.wait.ms")
	PoolRunsTotal     = metricz.Key("pool.runs.total")
)

// Pool bounds how many runs may be inside it at once, across every chain
// that shares it. Use it to cap concurrent calls to a dependency when many
// RunAsync chains or goroutines call Do together.
type Pool struct {
	sem     chan struct{}
	clock   clockz.Clock
	metrics *metricz.Registry
}

// NewPool creates a Pool with the given number of slots. Values below 1
// are treated as 1.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	metrics := metricz.New()
	metrics.Counter(PoolRunsTotal)
	metrics.Gauge(PoolWorkersMax).Set(float64(workers))
	metrics.Gauge(PoolWorkersActive)
	metrics.Gauge(PoolQueueWaitMs)

	return &Pool{
		sem:     make(chan struct{}, workers),
		clock:   clockz.RealClock,
		metrics: metrics,
	}
}

// WithClock sets a custom clock for testing.
func (p *Pool) WithClock(clock clockz.Clock) *Pool {
	p.clock = clock
	return p
}

// Metrics returns the metrics registry for this pool.
func (p *Pool) Metrics() *metricz.Registry {
	return p.metrics
}

// Active returns the number of runs holding a slot.
func (p *Pool) Active() int {
	return len(p.sem)
}

func (p *Pool) acquire(ctx context.Context) error {
	start := p.clock.Now()
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.metrics.Gauge(PoolQueueWaitMs).Set(float64(p.clock.Since(start) / time.Millisecond))
	p.metrics.Gauge(PoolWorkersActive).Set(float64(len(p.sem)))
	p.metrics.Counter(PoolRunsTotal).Inc()
	return nil
}

func (p *Pool) release() {
	<-p.sem
	p.metrics.Gauge(PoolWorkersActive).Set(float64(len(p.sem)))
}

// Pooled waits for a slot in p before each run of the rest of the chain and
// frees it afterwards. Cancelling ctx while waiting returns ctx.Err().
func (c *Chain[T]) Pooled(p *Pool) *Chain[T] {
	return c.Attach(func(next Work[T]) Work[T] {
		return func(ctx context.Context) (T, error) {
			if err := p.acquire(ctx); err != nil {
				var zero T
				return zero, err
			}
			defer p.release()
			return next(ctx)
		}
	})
}
