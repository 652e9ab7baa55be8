package taureco

import (
	"log/slog"

	"github.com/randalmurphal/taureco/pkg/taureco/observability"
	"github.com/randalmurphal/taureco/pkg/taureco/store"
)

// producerConfig holds optional Producer collaborators.
type producerConfig struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	tracing bool
	source  NormalSource
	store   store.Store
	retry   RetryPolicy
	runID   string
}

func defaultProducerConfig() producerConfig {
	return producerConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		retry:   NoRetry,
	}
}

// Option configures a Producer.
type Option func(*producerConfig)

// WithLogger sets the structured logger. Without it nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *producerConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics through the global meter provider.
func WithMetrics(enabled bool) Option {
	return func(c *producerConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans through the global tracer provider.
func WithTracing(enabled bool) Option {
	return func(c *producerConfig) {
		c.tracing = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithRandSource sets the generator used for synthetic vertices.
// A seeded *rand.Rand gives reproducible output.
func WithRandSource(src NormalSource) Option {
	return func(c *producerConfig) {
		c.source = src
	}
}

// WithStore hands the products of every successful event to s.
func WithStore(s store.Store) Option {
	return func(c *producerConfig) {
		c.store = s
	}
}

// WithStoreRetry retries failed saves according to p. Default: NoRetry.
func WithStoreRetry(p RetryPolicy) Option {
	return func(c *producerConfig) {
		c.retry = p
	}
}

// WithRunID sets the run identifier used for logs, spans and store keys.
// A UUID is generated when unset.
func WithRunID(id string) Option {
	return func(c *producerConfig) {
		c.runID = id
	}
}
