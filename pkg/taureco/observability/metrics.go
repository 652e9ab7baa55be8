package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records event processing metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordStage records a stage execution with its duration and error status.
	RecordStage(ctx context.Context, stage string, duration time.Duration, err error)

	// RecordEvent records a processed event.
	RecordEvent(ctx context.Context, success bool, duration time.Duration)

	// RecordCandidates records the outcome of the candidate loop.
	RecordCandidates(ctx context.Context, built, rejected, detIDs int)

	// RecordSyntheticVertex counts an event that used a synthetic vertex.
	RecordSyntheticVertex(ctx context.Context)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	events       metric.Int64Counter
	eventLatency metric.Float64Histogram
	eventErrors  metric.Int64Counter
	stageLatency metric.Float64Histogram
	candidates   metric.Int64Counter
	rejected     metric.Int64Counter
	detIDs       metric.Int64Counter
	synthetic    metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the shared instruments.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("taureco")

	var (
		m   otelMetrics
		err error
	)

	if m.events, err = meter.Int64Counter("taureco.event.processed",
		metric.WithDescription("Number of events processed"),
	); err != nil {
		return nil, err
	}

	if m.eventLatency, err = meter.Float64Histogram("taureco.event.latency_ms",
		metric.WithDescription("Event processing latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.eventErrors, err = meter.Int64Counter("taureco.event.errors",
		metric.WithDescription("Number of events that failed"),
	); err != nil {
		return nil, err
	}

	if m.stageLatency, err = meter.Float64Histogram("taureco.stage.latency_ms",
		metric.WithDescription("Stage latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.candidates, err = meter.Int64Counter("taureco.candidates.built",
		metric.WithDescription("Number of candidates built"),
	); err != nil {
		return nil, err
	}

	if m.rejected, err = meter.Int64Counter("taureco.tag_infos.rejected",
		metric.WithDescription("Number of tag infos below the jet pt threshold"),
	); err != nil {
		return nil, err
	}

	if m.detIDs, err = meter.Int64Counter("taureco.detids.selected",
		metric.WithDescription("Number of detector ids selected by builders"),
	); err != nil {
		return nil, err
	}

	if m.synthetic, err = meter.Int64Counter("taureco.vertex.synthetic",
		metric.WithDescription("Number of events processed with a synthetic vertex"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider; set it with
// otel.SetMeterProvider before calling this function.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordStage records a stage execution.
func (m *otelMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("success", err == nil),
	)
	m.stageLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordEvent records a processed event.
func (m *otelMetrics) RecordEvent(ctx context.Context, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.events.Add(ctx, 1, attrs)
	m.eventLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if !success {
		m.eventErrors.Add(ctx, 1)
	}
}

// RecordCandidates records built and rejected counts.
func (m *otelMetrics) RecordCandidates(ctx context.Context, built, rejected, detIDs int) {
	m.candidates.Add(ctx, int64(built))
	m.rejected.Add(ctx, int64(rejected))
	m.detIDs.Add(ctx, int64(detIDs))
}

// RecordSyntheticVertex counts a synthetic vertex.
func (m *otelMetrics) RecordSyntheticVertex(ctx context.Context) {
	m.synthetic.Add(ctx, 1)
}
