package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("taureco")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartEventSpan starts a span covering one event.
	StartEventSpan(ctx context.Context, runID, eventID string) (context.Context, trace.Span)

	// StartStageSpan starts a child span for one stage.
	StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager backed by the global tracer provider.
func NewSpanManager() SpanManager {
	return otelSpanManager{}
}

func (otelSpanManager) StartEventSpan(ctx context.Context, runID, eventID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "taureco.event",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("event.id", eventID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (otelSpanManager) StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "taureco.stage."+stage,
		trace.WithAttributes(attribute.String("stage", stage)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
