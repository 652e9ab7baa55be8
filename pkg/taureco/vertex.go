package taureco

import "math/rand/v2"

// Sigma holds the per-axis standard deviations used to smear a synthetic
// vertex, in the same length unit as vertex positions.
type Sigma struct {
	X float64
	Y float64
	Z float64
}

// NormalSource draws standard normal deviates. *rand.Rand satisfies it.
type NormalSource interface {
	NormFloat64() float64
}

// globalSource draws from the process-wide generator.
type globalSource struct{}

func (globalSource) NormFloat64() float64 {
	return rand.NormFloat64()
}

// VertexResolver picks the event reference point.
//
// The first externally supplied vertex wins. When upstream produced no
// vertex, a synthetic one is sampled around the origin with the configured
// smearing.
//
// A VertexResolver is not safe for concurrent use when its NormalSource
// isn't.
type VertexResolver struct {
	sigma  Sigma
	source NormalSource
}

// NewVertexResolver creates a resolver. A nil source uses the process-wide
// generator.
func NewVertexResolver(sigma Sigma, source NormalSource) *VertexResolver {
	if source == nil {
		source = globalSource{}
	}
	return &VertexResolver{sigma: sigma, source: source}
}

// Resolve returns the first element of vertices unchanged, or a synthetic
// vertex when vertices is empty. The boolean reports the synthetic branch.
func (r *VertexResolver) Resolve(vertices []Vertex) (Vertex, bool) {
	if len(vertices) > 0 {
		return vertices[0], false
	}

	s := r.sigma
	pos := Point{
		X: s.X * r.source.NormFloat64(),
		Y: s.Y * r.source.NormFloat64(),
		Z: s.Z * r.source.NormFloat64(),
	}
	return Vertex{
		Position:   pos,
		Covariance: DiagonalCovariance(s.X*s.X, s.Y*s.Y, s.Z*s.Z),
		Chi2:       SyntheticQuality,
		Ndof:       SyntheticQuality,
		TracksSize: SyntheticQuality,
	}, true
}
