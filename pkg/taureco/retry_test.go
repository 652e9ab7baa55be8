package taureco

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/taureco/pkg/taureco/store"
)

// flakyStore fails the first failures saves.
type flakyStore struct {
	*store.MemoryStore
	failures int32
	calls    atomic.Int32
	err      error
}

func (f *flakyStore) Save(runID, eventID string, number uint64, data []byte) error {
	if f.calls.Add(1) <= f.failures {
		return f.err
	}
	return f.MemoryStore.Save(runID, eventID, number, data)
}

var fastRetry = RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond, BackoffFactor: 2}

// TestStoreRetry_RecoversFromTransientFailure tests a save that succeeds on
// a later attempt.
func TestStoreRetry_RecoversFromTransientFailure(t *testing.T) {
	fs := &flakyStore{MemoryStore: store.NewMemoryStore(), failures: 2, err: errors.New("database is locked")}
	p := newTestProducer(t, DefaultSettings(), &recordingBuilder{},
		WithStore(fs), WithStoreRetry(fastRetry), WithRunID("r"))

	_, err := p.ProcessEvent(testCtx(), newEvent("e", []Vertex{realVertex(0, 0, 0)}, 5))

	require.NoError(t, err)
	assert.Equal(t, int32(3), fs.calls.Load())
	_, err = LoadProducts(fs, "r", "e")
	assert.NoError(t, err)
}

// TestStoreRetry_Exhausted tests the attempt count is reported.
func TestStoreRetry_Exhausted(t *testing.T) {
	fs := &flakyStore{MemoryStore: store.NewMemoryStore(), failures: 10, err: errors.New("database is locked")}
	p := newTestProducer(t, DefaultSettings(), &recordingBuilder{},
		WithStore(fs), WithStoreRetry(fastRetry))

	_, err := p.ProcessEvent(testCtx(), newEvent("e", []Vertex{realVertex(0, 0, 0)}, 5))

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, 3, storeErr.Attempts)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int32(3), fs.calls.Load())
}

// TestStoreRetry_ClosedStoreNotRetried tests permanent failures stop at once.
func TestStoreRetry_ClosedStoreNotRetried(t *testing.T) {
	fs := &flakyStore{MemoryStore: store.NewMemoryStore(), failures: 10, err: store.ErrStoreClosed}
	p := newTestProducer(t, DefaultSettings(), &recordingBuilder{},
		WithStore(fs), WithStoreRetry(fastRetry))

	_, err := p.ProcessEvent(testCtx(), newEvent("e", []Vertex{realVertex(0, 0, 0)}, 5))

	assert.ErrorIs(t, err, store.ErrStoreClosed)
	assert.Equal(t, int32(1), fs.calls.Load())
}

// TestRetryPolicy_Do tests attempt counting and cancellation.
func TestRetryPolicy_Do(t *testing.T) {
	boom := errors.New("boom")

	t.Run("zero attempts still runs once", func(t *testing.T) {
		n, err := RetryPolicy{}.do(context.Background(), func() error { return boom })
		assert.Equal(t, 1, n)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled during backoff", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		policy := RetryPolicy{MaxAttempts: 5, InitialBackoff: time.Hour}
		n, err := policy.do(ctx, func() error {
			cancel()
			return boom
		})
		assert.Equal(t, 1, n)
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("backoff capped", func(t *testing.T) {
		policy := RetryPolicy{MaxAttempts: 4, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, BackoffFactor: 10}
		start := time.Now()
		n, _ := policy.do(context.Background(), func() error { return boom })
		assert.Equal(t, 4, n)
		assert.Less(t, time.Since(start), time.Second)
	})
}

// TestJittered tests jitter stays within bounds.
func TestJittered(t *testing.T) {
	assert.Equal(t, time.Second, jittered(time.Second, 0))
	for i := 0; i < 100; i++ {
		d := jittered(100*time.Millisecond, 0.1)
		assert.GreaterOrEqual(t, d, 90*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond)
	}
}
