// Package observability provides structured logging, metrics, and tracing
// helpers for event processing.
//
// Features:
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
)

// EnrichLogger adds run and event context to a logger.
func EnrichLogger(logger *slog.Logger, runID, eventID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.String("event_id", eventID),
	)
}

// LogEventStart logs the start of event processing.
func LogEventStart(logger *slog.Logger, eventID string) {
	if logger == nil {
		return
	}
	logger.Debug("event processing starting",
		slog.String("event_id", eventID),
	)
}

// LogEventComplete logs a successfully processed event.
func LogEventComplete(logger *slog.Logger, eventID string, durationMs float64, candidates, detIDs int) {
	if logger == nil {
		return
	}
	logger.Info("event processed",
		slog.String("event_id", eventID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("candidates", candidates),
		slog.Int("det_ids", detIDs),
	)
}

// LogEventError logs an event that failed and produced no output.
func LogEventError(logger *slog.Logger, eventID string, err error, durationMs float64, stage string) {
	if logger == nil {
		return
	}
	logger.Error("event processing failed",
		slog.String("event_id", eventID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.String("stage", stage),
	)
}

// LogStageStart logs stage start.
func LogStageStart(logger *slog.Logger, stage string) {
	if logger == nil {
		return
	}
	logger.Debug("stage starting",
		slog.String("stage", stage),
	)
}

// LogStageComplete logs stage completion.
func LogStageComplete(logger *slog.Logger, stage string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("stage completed",
		slog.String("stage", stage),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogStageError logs a failed stage.
func LogStageError(logger *slog.Logger, stage string, err error) {
	if logger == nil {
		return
	}
	logger.Error("stage failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// LogSyntheticVertex logs that no upstream vertex was available and a
// smeared one was generated.
func LogSyntheticVertex(logger *slog.Logger, eventID string, x, y, z float64) {
	if logger == nil {
		return
	}
	logger.Debug("no primary vertex, using synthetic vertex",
		slog.String("event_id", eventID),
		slog.Float64("x", x),
		slog.Float64("y", y),
		slog.Float64("z", z),
	)
}

// LogTagInfoRejected logs a tag info below the jet pt threshold.
func LogTagInfoRejected(logger *slog.Logger, index int, pt, threshold float64) {
	if logger == nil {
		return
	}
	logger.Debug("tag info rejected",
		slog.Int("index", index),
		slog.Float64("jet_pt", pt),
		slog.Float64("jet_pt_min", threshold),
	)
}

// LogStored logs a products hand-off to the store.
func LogStored(logger *slog.Logger, eventID string, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("products stored",
		slog.String("event_id", eventID),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogStoreError logs a failed hand-off.
func LogStoreError(logger *slog.Logger, eventID, op string, err error) {
	if logger == nil {
		return
	}
	logger.Error("products store failed",
		slog.String("event_id", eventID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}
