package taureco

import "context"

// Built is the result of building one candidate: the candidate and the
// detector ids consumed while building it.
type Built struct {
	Candidate Candidate
	DetIDs    []DetID
}

// Builder constructs a candidate from one accepted tag info and the event
// vertex. Identifiers produced by a call are returned with that call; a
// Builder keeps no per-event state between calls.
//
// Builders are not safe for concurrent use. A Producer is the only caller
// of its Builder.
type Builder interface {
	Build(ctx context.Context, ref TagInfoRef, vertex Vertex) (Built, error)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(ctx context.Context, ref TagInfoRef, vertex Vertex) (Built, error)

// Build calls f.
func (f BuilderFunc) Build(ctx context.Context, ref TagInfoRef, vertex Vertex) (Built, error) {
	return f(ctx, ref, vertex)
}

// AccumulatingBuilder is a builder that records selected detector ids in
// internal state and hands them out on DrainDetIDs. DrainDetIDs must
// return the ids accumulated since the previous drain and reset them.
type AccumulatingBuilder interface {
	BuildCandidate(ctx context.Context, ref TagInfoRef, vertex Vertex) (Candidate, error)
	DrainDetIDs() []DetID
}

// Accumulated adapts an AccumulatingBuilder to Builder. The accumulator is
// drained after every call, including failed ones, so ids never carry over
// from one candidate or event into the next.
func Accumulated(a AccumulatingBuilder) Builder {
	if a == nil {
		return nil
	}
	return accumulated{a}
}

type accumulated struct {
	inner AccumulatingBuilder
}

func (b accumulated) Build(ctx context.Context, ref TagInfoRef, vertex Vertex) (Built, error) {
	cand, err := b.inner.BuildCandidate(ctx, ref, vertex)
	ids := b.inner.DrainDetIDs()
	if err != nil {
		return Built{}, err
	}
	return Built{Candidate: cand, DetIDs: ids}, nil
}
