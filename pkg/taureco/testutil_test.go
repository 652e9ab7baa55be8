package taureco

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/taureco/pkg/taureco/store"
)

// testCtx returns a context with a test-friendly timeout.
func testCtx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = cancel // Cancel is handled by test completion
	return ctx
}

// seqSource replays fixed deviates, cycling when exhausted.
type seqSource struct {
	values []float64
	next   int
}

func (s *seqSource) NormFloat64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// jetWithPt is a massless jet along x.
func jetWithPt(pt float64) LorentzVector {
	return LorentzVector{Px: pt, E: pt}
}

// newEvent builds an event with the default labels.
func newEvent(id string, vertices []Vertex, pts ...float64) *Event {
	infos := make([]TagInfo, len(pts))
	for i, pt := range pts {
		infos[i] = TagInfo{Jet: jetWithPt(pt)}
	}
	return &Event{
		ID:       id,
		TagInfos: map[string][]TagInfo{DefaultTagInfoLabel: infos},
		Vertices: map[string][]Vertex{DefaultVertexLabel: vertices},
	}
}

func realVertex(x, y, z float64) Vertex {
	return Vertex{
		Position:   Point{X: x, Y: y, Z: z},
		Covariance: DiagonalCovariance(1e-4, 1e-4, 1e-3),
		Chi2:       12.5,
		Ndof:       9,
		TracksSize: 14,
	}
}

// recordingBuilder remembers every call and returns one DetID per
// candidate, derived from the tag info index.
type recordingBuilder struct {
	mu    sync.Mutex
	calls []TagInfoRef
	seen  []Vertex
	err   error
	panic any
}

func (b *recordingBuilder) Build(ctx context.Context, ref TagInfoRef, vertex Vertex) (Built, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.panic != nil {
		panic(b.panic)
	}
	if b.err != nil {
		return Built{}, b.err
	}
	b.calls = append(b.calls, ref)
	b.seen = append(b.seen, vertex)
	return Built{
		Candidate: Candidate{TagInfoIndex: ref.Index, P4: ref.Info.Jet, Vertex: vertex.Position},
		DetIDs:    []DetID{NewDetID(DetectorEcal, EcalBarrel, uint32(ref.Index))},
	}, nil
}

func (b *recordingBuilder) indices() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]int, len(b.calls))
	for i, c := range b.calls {
		out[i] = c.Index
	}
	return out
}

// leakyBuilder accumulates ids and only clears them on drain.
type leakyBuilder struct {
	pending []DetID
	fail    bool
}

func (b *leakyBuilder) BuildCandidate(_ context.Context, ref TagInfoRef, _ Vertex) (Candidate, error) {
	b.pending = append(b.pending, NewDetID(DetectorEcal, EcalEndcap, uint32(ref.Index)))
	if b.fail {
		return Candidate{}, errors.New("leaky failure")
	}
	return Candidate{TagInfoIndex: ref.Index}, nil
}

func (b *leakyBuilder) DrainDetIDs() []DetID {
	out := b.pending
	b.pending = nil
	return out
}

// failingStore rejects every save.
type failingStore struct {
	*store.MemoryStore
	err error
}

func (f failingStore) Save(string, string, uint64, []byte) error { return f.err }

// bufferLogger returns a JSON logger writing to buf at debug level.
func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
