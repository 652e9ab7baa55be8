package taureco

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDetID_Packing tests fields survive packing.
func TestDetID_Packing(t *testing.T) {
	id := NewDetID(DetectorEcal, EcalEndcap, 123456)

	assert.Equal(t, DetectorEcal, id.Det())
	assert.Equal(t, uint32(EcalEndcap), id.Subdet())
	assert.Equal(t, uint32(123456), id.Index())
	assert.Equal(t, "3/2/123456", id.String())
	assert.Equal(t, uint32(3)<<28|uint32(2)<<25|123456, id.Raw())
}

// TestDetID_IndexOverflow tests oversized indices do not bleed into the
// subdetector bits.
func TestDetID_IndexOverflow(t *testing.T) {
	id := NewDetID(DetectorHcal, 1, 1<<25|7)

	assert.Equal(t, DetectorHcal, id.Det())
	assert.Equal(t, uint32(1), id.Subdet())
	assert.Equal(t, uint32(7), id.Index())
}

// TestLorentzVector_Kinematics tests pt, phi and eta.
func TestLorentzVector_Kinematics(t *testing.T) {
	v := LorentzVector{Px: 3, Py: 4, Pz: 0, E: 5}

	assert.Equal(t, 5.0, v.Pt())
	assert.InDelta(t, math.Atan2(4, 3), v.Phi(), 1e-12)
	assert.Equal(t, 0.0, v.Eta())

	assert.True(t, math.IsInf(LorentzVector{Pz: 1}.Eta(), 1))
	assert.True(t, math.IsInf(LorentzVector{Pz: -1}.Eta(), -1))
	assert.Equal(t, 0.0, LorentzVector{}.Eta())
}

// TestDeltaPhi_Wraps tests angles are folded into [-pi, pi].
func TestDeltaPhi_Wraps(t *testing.T) {
	assert.InDelta(t, -0.2, DeltaPhi(math.Pi-0.1, -math.Pi+0.1), 1e-12)
	assert.InDelta(t, 0.2, DeltaPhi(-math.Pi+0.1, math.Pi-0.1), 1e-12)
	assert.InDelta(t, 0.5, DeltaPhi(1.0, 0.5), 1e-12)
}

// TestDeltaR tests the combined distance.
func TestDeltaR(t *testing.T) {
	assert.InDelta(t, 0.5, DeltaR(0.3, 0, 0, 0.4), 1e-12)
}

// TestRecHit_Et tests transverse energy from eta.
func TestRecHit_Et(t *testing.T) {
	h := RecHit{Energy: 10 * math.Cosh(1.2), Eta: 1.2}
	assert.InDelta(t, 10, h.Et(), 1e-9)
}

// TestCovariance_Symmetry tests the symmetry check.
func TestCovariance_Symmetry(t *testing.T) {
	c := DiagonalCovariance(1, 2, 3)
	assert.True(t, c.IsSymmetric())

	c[0][2] = 0.5
	assert.False(t, c.IsSymmetric())
	c[2][0] = 0.5
	assert.True(t, c.IsSymmetric())
}

// TestMissingDependencyError_Message tests the rendered message.
func TestMissingDependencyError_Message(t *testing.T) {
	err := &MissingDependencyError{Dependency: "vertices", Label: "offlinePrimaryVertices"}
	assert.Equal(t, "missing dependency vertices (offlinePrimaryVertices)", err.Error())
	assert.ErrorIs(t, err, ErrMissingDependency)
}
