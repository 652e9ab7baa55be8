package taureco

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolve_UsesFirstVertex tests external vertices pass through unchanged.
func TestResolve_UsesFirstVertex(t *testing.T) {
	src := &seqSource{values: []float64{9}}
	r := NewVertexResolver(Sigma{X: 1, Y: 1, Z: 1}, src)
	first := realVertex(0.01, -0.02, 1.5)
	second := realVertex(0.5, 0.5, 0.5)

	v, synthetic := r.Resolve([]Vertex{first, second})

	assert.False(t, synthetic)
	assert.Equal(t, first, v)
	assert.Zero(t, src.next, "no deviates drawn when a vertex exists")
}

// TestResolve_Synthetic tests the fallback vertex shape.
func TestResolve_Synthetic(t *testing.T) {
	sigma := Sigma{X: 0.0015, Y: 0.0015, Z: 0.005}
	r := NewVertexResolver(sigma, &seqSource{values: []float64{1, -2, 0.5}})

	v, synthetic := r.Resolve(nil)

	require.True(t, synthetic)
	assert.InDelta(t, 0.0015, v.Position.X, 1e-15)
	assert.InDelta(t, -0.003, v.Position.Y, 1e-15)
	assert.InDelta(t, 0.0025, v.Position.Z, 1e-15)

	assert.Equal(t, [3]float64{sigma.X * sigma.X, sigma.Y * sigma.Y, sigma.Z * sigma.Z}, v.Covariance.Diagonal())
	assert.True(t, v.Covariance.IsSymmetric())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i != j {
				assert.Zero(t, v.Covariance[i][j])
			}
		}
	}

	assert.Equal(t, float64(SyntheticQuality), v.Chi2)
	assert.Equal(t, float64(SyntheticQuality), v.Ndof)
	assert.Equal(t, SyntheticQuality, v.TracksSize)
}

// TestResolve_EmptySliceIsSynthetic tests a non-nil empty slice also falls back.
func TestResolve_EmptySliceIsSynthetic(t *testing.T) {
	r := NewVertexResolver(Sigma{X: 1, Y: 1, Z: 1}, &seqSource{values: []float64{0}})

	_, synthetic := r.Resolve([]Vertex{})

	assert.True(t, synthetic)
}

// TestResolve_ZeroSigma tests zero smearing yields the exact origin.
func TestResolve_ZeroSigma(t *testing.T) {
	r := NewVertexResolver(Sigma{}, &seqSource{values: []float64{3.2, -1.1, 0.7}})

	v, synthetic := r.Resolve(nil)

	require.True(t, synthetic)
	assert.Equal(t, Point{}, v.Position)
	assert.Equal(t, Covariance{}, v.Covariance)
}

// TestResolve_SeededReproducible tests equal seeds give equal vertices and
// distinct draws differ.
func TestResolve_SeededReproducible(t *testing.T) {
	sigma := Sigma{X: 0.0015, Y: 0.0015, Z: 0.005}
	a := NewVertexResolver(sigma, rand.New(rand.NewPCG(7, 11)))
	b := NewVertexResolver(sigma, rand.New(rand.NewPCG(7, 11)))

	va, _ := a.Resolve(nil)
	vb, _ := b.Resolve(nil)
	assert.Equal(t, va, vb)

	next, _ := a.Resolve(nil)
	assert.NotEqual(t, va.Position, next.Position)
}

// TestResolve_Distribution tests the sample spread matches sigma per axis.
func TestResolve_Distribution(t *testing.T) {
	sigma := Sigma{X: 0.0015, Y: 0.0015, Z: 0.005}
	r := NewVertexResolver(sigma, rand.New(rand.NewPCG(1, 2)))

	const n = 20000
	var sum, sumSq [3]float64
	for i := 0; i < n; i++ {
		v, _ := r.Resolve(nil)
		for k, x := range []float64{v.Position.X, v.Position.Y, v.Position.Z} {
			sum[k] += x
			sumSq[k] += x * x
		}
	}

	for k, s := range []float64{sigma.X, sigma.Y, sigma.Z} {
		mean := sum[k] / n
		std := math.Sqrt(sumSq[k]/n - mean*mean)
		assert.InDelta(t, 0, mean, 5*s/math.Sqrt(n), "axis %d mean", k)
		assert.InEpsilon(t, s, std, 0.05, "axis %d std", k)
	}
}

// TestNewVertexResolver_DefaultSource tests a nil source still samples.
func TestNewVertexResolver_DefaultSource(t *testing.T) {
	r := NewVertexResolver(Sigma{X: 1, Y: 1, Z: 1}, nil)

	v, synthetic := r.Resolve(nil)

	assert.True(t, synthetic)
	assert.False(t, math.IsNaN(v.Position.X))
	assert.Equal(t, DiagonalCovariance(1, 1, 1), v.Covariance)
}
