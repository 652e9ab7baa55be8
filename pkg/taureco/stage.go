package taureco

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/randalmurphal/taureco/pkg/taureco/observability"
)

// Stage names, in execution order.
const (
	StageVertex     = "vertex"
	StageCandidates = "candidates"
	stageStore      = "store"
)

// stage is one step of event processing. Stages mutate the event state
// in place and run strictly in order.
type stage struct {
	name string
	run  func(ctx context.Context, st *eventState) error
}

// eventState is owned by a single ProcessEvent call.
type eventState struct {
	event    *Event
	logger   *slog.Logger
	products Products
}

// runStages executes every stage in order. It returns the name of the
// failed stage together with the error.
func (p *Producer) runStages(ctx context.Context, st *eventState) (string, error) {
	for _, s := range p.stages {
		select {
		case <-ctx.Done():
			return s.name, &CancellationError{
				EventID: st.event.ID,
				Stage:   s.name,
				Cause:   ctx.Err(),
			}
		default:
		}

		observability.LogStageStart(st.logger, s.name)
		stageCtx, span := p.cfg.spans.StartStageSpan(ctx, s.name)

		began := time.Now()
		err := p.executeStage(stageCtx, s, st)
		elapsed := time.Since(began)

		p.cfg.metrics.RecordStage(stageCtx, s.name, elapsed, err)
		p.cfg.spans.EndSpanWithError(span, err)

		if err != nil {
			observability.LogStageError(st.logger, s.name, err)
			return s.name, err
		}
		observability.LogStageComplete(st.logger, s.name, float64(elapsed.Milliseconds()))
	}
	return "", nil
}

// executeStage runs one stage with panic recovery.
func (p *Producer) executeStage(ctx context.Context, s stage, st *eventState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{
				Stage: s.name,
				Value: r,
				Stack: string(debug.Stack()),
			}
		}
	}()

	if err := s.run(ctx, st); err != nil {
		return &StageError{EventID: st.event.ID, Stage: s.name, Err: err}
	}
	return nil
}
