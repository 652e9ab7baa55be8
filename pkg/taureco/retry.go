package taureco

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/randalmurphal/taureco/pkg/taureco/store"
)

// RetryPolicy configures how a failed store save is retried.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int

	// InitialBackoff is the wait before the second attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between attempts.
	MaxBackoff time.Duration

	// BackoffFactor multiplies the wait after each attempt.
	BackoffFactor float64

	// Jitter is the random jitter factor (0.0-1.0).
	Jitter float64
}

// NoRetry saves once.
var NoRetry = RetryPolicy{MaxAttempts: 1}

// DefaultStoreRetry suits a local SQLite database under contention.
var DefaultStoreRetry = RetryPolicy{
	MaxAttempts:    3,
	InitialBackoff: 50 * time.Millisecond,
	MaxBackoff:     time.Second,
	BackoffFactor:  2.0,
	Jitter:         0.1,
}

// retryable reports whether another save attempt can help.
func retryable(err error) bool {
	return !errors.Is(err, store.ErrStoreClosed) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// do runs fn until it succeeds, fails permanently, or attempts run out.
// It returns the number of attempts made.
func (p RetryPolicy) do(ctx context.Context, fn func() error) (int, error) {
	attempts := max(p.MaxAttempts, 1)
	backoff := p.InitialBackoff

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return attempt, nil
		}
		if attempt >= attempts || !retryable(err) {
			return attempt, err
		}

		select {
		case <-ctx.Done():
			return attempt, errors.Join(err, ctx.Err())
		case <-time.After(jittered(backoff, p.Jitter)):
		}

		backoff = time.Duration(float64(backoff) * p.BackoffFactor)
		if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}
}

// jittered returns base +/- base*jitter*random.
func jittered(base time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return base
	}
	return time.Duration(float64(base) + float64(base)*jitter*(rand.Float64()*2-1))
}
