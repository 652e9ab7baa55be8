package main

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// telemetrySession holds in-process metric and trace providers for one run.
type telemetrySession struct {
	reader *sdkmetric.ManualReader
	meters *sdkmetric.MeterProvider
	traces *sdktrace.TracerProvider
}

// startTelemetry installs SDK providers globally. Producers created
// afterwards with metrics and tracing enabled report into them.
func startTelemetry() *telemetrySession {
	reader := sdkmetric.NewManualReader()
	s := &telemetrySession{
		reader: reader,
		meters: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		traces: sdktrace.NewTracerProvider(),
	}
	otel.SetMeterProvider(s.meters)
	otel.SetTracerProvider(s.traces)
	return s
}

// report logs every counter collected during the run.
func (s *telemetrySession) report(ctx context.Context, logger *slog.Logger) error {
	var rm metricdata.ResourceMetrics
	if err := s.reader.Collect(ctx, &rm); err != nil {
		return err
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			logger.Info("metric", slog.String("name", m.Name), slog.Int64("value", total))
		}
	}
	return nil
}

// shutdown flushes and stops both providers.
func (s *telemetrySession) shutdown(ctx context.Context) error {
	return errors.Join(s.meters.Shutdown(ctx), s.traces.Shutdown(ctx))
}
