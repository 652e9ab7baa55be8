package taureco

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/taureco/pkg/taureco/observability"
	"github.com/randalmurphal/taureco/pkg/taureco/store"
)

// Producer reconstructs tau candidates event by event.
//
// For each event it resolves the reference vertex, builds one candidate per
// tag info whose jet pt exceeds the threshold, and returns the candidates
// together with the detector ids the builder selected.
//
// A Producer owns its Builder. Calls to ProcessEvent are serialized, so a
// Producer may be shared, but events are then processed one at a time; use
// a Runner with a Producer per worker for parallelism.
type Producer struct {
	mu       sync.Mutex
	settings Settings
	builder  Builder
	resolver *VertexResolver
	cfg      producerConfig
	stages   []stage
}

// NewProducer creates a Producer. A nil builder is a MissingDependencyError.
func NewProducer(settings Settings, builder Builder, opts ...Option) (*Producer, error) {
	if builder == nil {
		return nil, &MissingDependencyError{Dependency: "builder"}
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	cfg := defaultProducerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.runID == "" {
		cfg.runID = uuid.New().String()
	}

	p := &Producer{
		settings: settings,
		builder:  builder,
		resolver: NewVertexResolver(settings.Smearing, cfg.source),
		cfg:      cfg,
	}
	p.stages = []stage{
		{name: StageVertex, run: p.resolveVertex},
		{name: StageCandidates, run: p.buildCandidates},
	}
	return p, nil
}

// RunID returns the run identifier.
func (p *Producer) RunID() string {
	return p.cfg.runID
}

// Settings returns the producer configuration.
func (p *Producer) Settings() Settings {
	return p.settings
}

// ProcessEvent runs the producer on one event.
//
// On success both product collections are non-nil, possibly empty. On
// failure the zero Products is returned with the error and nothing is
// handed to the store. Missing upstream products or collaborators are
// reported as MissingDependencyError (errors.Is ErrMissingDependency).
func (p *Producer) ProcessEvent(ctx context.Context, ev *Event) (Products, error) {
	if ctx == nil {
		return Products{}, ErrNilContext
	}
	if p == nil || p.builder == nil {
		return Products{}, &MissingDependencyError{Dependency: "builder"}
	}
	if ev == nil {
		return Products{}, &MissingDependencyError{Dependency: "event"}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	logger := observability.EnrichLogger(p.cfg.logger, p.cfg.runID, ev.ID)
	observability.LogEventStart(logger, ev.ID)

	eventCtx, span := p.cfg.spans.StartEventSpan(ctx, p.cfg.runID, ev.ID)

	st := &eventState{
		event:  ev,
		logger: logger,
		products: Products{
			EventID:    ev.ID,
			Candidates: []Candidate{},
			DetIDs:     []DetID{},
		},
	}

	failed, err := p.runStages(eventCtx, st)
	if err == nil {
		if err = p.handOff(eventCtx, st); err != nil {
			failed = stageStore
		}
	}

	elapsed := time.Since(start)
	p.cfg.metrics.RecordEvent(eventCtx, err == nil, elapsed)
	p.cfg.spans.EndSpanWithError(span, err)

	if err != nil {
		observability.LogEventError(logger, ev.ID, err, float64(elapsed.Milliseconds()), failed)
		return Products{}, err
	}
	observability.LogEventComplete(logger, ev.ID, float64(elapsed.Milliseconds()),
		len(st.products.Candidates), len(st.products.DetIDs))
	return st.products, nil
}

func (p *Producer) resolveVertex(ctx context.Context, st *eventState) error {
	vertices, ok := st.event.Vertices[p.settings.VertexLabel]
	if !ok {
		return &MissingDependencyError{Dependency: "vertices", Label: p.settings.VertexLabel}
	}

	v, synthetic := p.resolver.Resolve(vertices)
	st.products.Vertex = v
	st.products.SyntheticVertex = synthetic

	if synthetic {
		observability.LogSyntheticVertex(st.logger, st.event.ID, v.Position.X, v.Position.Y, v.Position.Z)
		p.cfg.metrics.RecordSyntheticVertex(ctx)
		p.cfg.spans.AddSpanEvent(ctx, "synthetic_vertex",
			attribute.Float64("x", v.Position.X),
			attribute.Float64("y", v.Position.Y),
			attribute.Float64("z", v.Position.Z),
		)
	}
	return nil
}

func (p *Producer) buildCandidates(ctx context.Context, st *eventState) error {
	infos, ok := st.event.TagInfos[p.settings.TagInfoLabel]
	if !ok {
		return &MissingDependencyError{Dependency: "tag_infos", Label: p.settings.TagInfoLabel}
	}

	rejected := 0
	for i := range infos {
		// NaN fails the comparison and is rejected too.
		if pt := infos[i].Jet.Pt(); !(pt > p.settings.JetPtMin) {
			rejected++
			observability.LogTagInfoRejected(st.logger, i, pt, p.settings.JetPtMin)
			continue
		}

		built, err := p.builder.Build(ctx, TagInfoRef{Index: i, Info: &infos[i]}, st.products.Vertex)
		if err != nil {
			return fmt.Errorf("build candidate from tag info %d: %w", i, err)
		}
		st.products.Candidates = append(st.products.Candidates, built.Candidate)
		st.products.DetIDs = append(st.products.DetIDs, built.DetIDs...)
	}

	p.cfg.metrics.RecordCandidates(ctx, len(st.products.Candidates), rejected, len(st.products.DetIDs))
	return nil
}

// handOff saves the products when a store is configured.
func (p *Producer) handOff(ctx context.Context, st *eventState) error {
	if p.cfg.store == nil {
		return nil
	}
	id := st.event.ID

	products, err := json.Marshal(st.products)
	if err != nil {
		observability.LogStoreError(st.logger, id, "marshal", err)
		return &StoreError{EventID: id, Op: "marshal", Err: err}
	}
	data, err := store.NewRecord(p.cfg.runID, id, products).Marshal()
	if err != nil {
		observability.LogStoreError(st.logger, id, "marshal", err)
		return &StoreError{EventID: id, Op: "marshal", Err: err}
	}
	attempts, err := p.cfg.retry.do(ctx, func() error {
		return p.cfg.store.Save(p.cfg.runID, id, st.event.Number, data)
	})
	if err != nil {
		observability.LogStoreError(st.logger, id, "save", err)
		return &StoreError{EventID: id, Op: "save", Attempts: attempts, Err: err}
	}
	observability.LogStored(st.logger, id, len(data))
	return nil
}

// LoadProducts reads back the products a Producer stored for an event.
func LoadProducts(s store.Store, runID, eventID string) (Products, error) {
	data, err := s.Load(runID, eventID)
	if err != nil {
		return Products{}, err
	}
	rec, err := store.Unmarshal(data)
	if err != nil {
		return Products{}, fmt.Errorf("decode record: %w", err)
	}
	if rec.Version != store.Version {
		return Products{}, fmt.Errorf("record version %d, want %d", rec.Version, store.Version)
	}
	var products Products
	if err := json.Unmarshal(rec.Products, &products); err != nil {
		return Products{}, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}
