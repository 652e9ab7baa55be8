package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

func (NoopMetrics) RecordStage(context.Context, string, time.Duration, error) {}

func (NoopMetrics) RecordEvent(context.Context, bool, time.Duration) {}

func (NoopMetrics) RecordCandidates(context.Context, int, int, int) {}

func (NoopMetrics) RecordSyntheticVertex(context.Context) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartEventSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartEventSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartStageSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartStageSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

func (NoopSpanManager) EndSpanWithError(trace.Span, error) {}

func (NoopSpanManager) AddSpanEvent(context.Context, string, ...attribute.KeyValue) {}
