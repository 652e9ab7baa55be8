package taureco

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ProducerFactory creates a Producer with its own Builder. A Runner calls
// it once per worker.
type ProducerFactory func(worker int) (*Producer, error)

// Runner processes a batch of events in parallel. Every worker owns one
// Producer, so no Builder is ever driven by two goroutines.
type Runner struct {
	factory ProducerFactory
	workers int
	limiter *rate.Limiter
	logger  *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the number of parallel workers. Default: 1.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithEventRate caps how many events per second are dispatched.
// Zero or negative means unlimited.
func WithEventRate(perSecond float64) RunnerOption {
	return func(r *Runner) {
		if perSecond > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			r.limiter = nil
		}
	}
}

// WithRunnerLogger sets the logger for runner lifecycle messages.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner.
func NewRunner(factory ProducerFactory, opts ...RunnerOption) *Runner {
	r := &Runner{factory: factory, workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes events and returns their products indexed like events.
// The first failure cancels the remaining work and is returned; the
// products slice is nil in that case.
func (r *Runner) Run(ctx context.Context, events []*Event) ([]Products, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if r.factory == nil {
		return nil, &MissingDependencyError{Dependency: "producer factory"}
	}

	workers := min(r.workers, max(len(events), 1))
	producers := make([]*Producer, workers)
	for i := range producers {
		p, err := r.factory(i)
		if err != nil {
			return nil, fmt.Errorf("create producer for worker %d: %w", i, err)
		}
		if p == nil {
			return nil, &MissingDependencyError{Dependency: "producer", Label: fmt.Sprintf("worker %d", i)}
		}
		producers[i] = p
	}

	if r.logger != nil {
		r.logger.Info("runner starting",
			slog.Int("events", len(events)),
			slog.Int("workers", workers),
		)
	}

	results := make([]Products, len(events))
	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := range events {
			if r.limiter != nil {
				if err := r.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for _, p := range producers {
		g.Go(func() error {
			for i := range jobs {
				products, err := p.ProcessEvent(gctx, events[i])
				if err != nil {
					return fmt.Errorf("event %d: %w", i, err)
				}
				results[i] = products
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if r.logger != nil {
			r.logger.Error("runner failed", slog.String("error", err.Error()))
		}
		return nil, err
	}
	if r.logger != nil {
		r.logger.Info("runner completed", slog.Int("events", len(events)))
	}
	return results, nil
}
