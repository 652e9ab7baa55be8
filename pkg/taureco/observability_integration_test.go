package taureco

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/randalmurphal/taureco/pkg/taureco/observability"
)

func TestProcessEvent_WithMetrics_Enabled(t *testing.T) {
	p := newTestProducer(t, DefaultSettings(), &recordingBuilder{}, WithMetrics(true))

	products, err := p.ProcessEvent(testCtx(), newEvent("m", nil, 10, 20))

	require.NoError(t, err)
	assert.Len(t, products.Candidates, 2)
}

func TestProcessEvent_WithTracing_Enabled(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	p := newTestProducer(t, DefaultSettings(), &recordingBuilder{}, WithTracing(true), WithRunID("trace-run"))
	_, err := p.ProcessEvent(testCtx(), newEvent("t1", nil, 10))
	require.NoError(t, err)

	spans := exporter.GetSpans()
	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"taureco.stage.vertex", "taureco.stage.candidates", "taureco.event"}, names)

	for _, s := range spans {
		if s.Name != "taureco.stage.vertex" {
			continue
		}
		require.NotEmpty(t, s.Events)
		assert.Equal(t, "synthetic_vertex", s.Events[0].Name)
	}

	exporter.Reset()
	failing := newTestProducer(t, DefaultSettings(), &recordingBuilder{err: errors.New("fit failed")}, WithTracing(true))
	_, err = failing.ProcessEvent(testCtx(), newEvent("t2", []Vertex{realVertex(0, 0, 0)}, 10))
	require.Error(t, err)

	for _, s := range exporter.GetSpans() {
		if s.Name == "taureco.event" {
			assert.Equal(t, codes.Error, s.Status.Code)
		}
	}
}

func TestOptions_Observability(t *testing.T) {
	t.Run("WithMetrics false sets noop", func(t *testing.T) {
		cfg := defaultProducerConfig()
		WithMetrics(false)(&cfg)
		assert.IsType(t, observability.NoopMetrics{}, cfg.metrics)
	})

	t.Run("WithTracing toggles span manager", func(t *testing.T) {
		cfg := defaultProducerConfig()
		WithTracing(true)(&cfg)
		assert.True(t, cfg.tracing)
		assert.NotEqual(t, observability.NoopSpanManager{}, cfg.spans)

		WithTracing(false)(&cfg)
		assert.False(t, cfg.tracing)
		assert.IsType(t, observability.NoopSpanManager{}, cfg.spans)
	})
}
