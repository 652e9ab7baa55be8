package builder

import (
	"context"
	"fmt"

	"github.com/randalmurphal/taureco/pkg/taureco"
	"github.com/randalmurphal/taureco/pkg/taureco/config"
)

// BasicBuilder makes a candidate from the jet and vertex alone. It selects
// no detector ids.
type BasicBuilder struct {
	field taureco.MagneticField
}

// NewBasicBuilder creates a BasicBuilder. A nil field leaves
// Candidate.MagneticFieldBz at zero.
func NewBasicBuilder(field taureco.MagneticField) *BasicBuilder {
	return &BasicBuilder{field: field}
}

func newBasic(_ config.Config, deps taureco.Dependencies) (taureco.Builder, error) {
	return NewBasicBuilder(deps.Field), nil
}

// Build implements taureco.Builder.
func (b *BasicBuilder) Build(ctx context.Context, ref taureco.TagInfoRef, vertex taureco.Vertex) (taureco.Built, error) {
	if err := ctx.Err(); err != nil {
		return taureco.Built{}, err
	}
	if ref.Info == nil {
		return taureco.Built{}, fmt.Errorf("tag info %d is nil", ref.Index)
	}
	cand := taureco.Candidate{
		TagInfoIndex: ref.Index,
		P4:           ref.Info.Jet,
		Vertex:       vertex.Position,
	}
	if b.field != nil {
		cand.MagneticFieldBz = b.field.FieldAt(vertex.Position).Z
	}
	return taureco.Built{Candidate: cand}, nil
}
