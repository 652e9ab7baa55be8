package taureco

import "math"

// Point is a position in detector coordinates (cm).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Covariance is a symmetric 3x3 position uncertainty matrix.
type Covariance [3][3]float64

// DiagonalCovariance builds a covariance with the given variances on the
// diagonal and zero correlation terms.
func DiagonalCovariance(xx, yy, zz float64) Covariance {
	var c Covariance
	c[0][0] = xx
	c[1][1] = yy
	c[2][2] = zz
	return c
}

// Diagonal returns the three variances.
func (c Covariance) Diagonal() [3]float64 {
	return [3]float64{c[0][0], c[1][1], c[2][2]}
}

// IsSymmetric reports whether c equals its transpose.
func (c Covariance) IsSymmetric() bool {
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if c[i][j] != c[j][i] {
				return false
			}
		}
	}
	return true
}

// SyntheticQuality is the chi2, ndof and track multiplicity assigned to a
// vertex synthesized by the resolver.
const SyntheticQuality = 1

// Vertex is the event reference point with its uncertainty and fit quality.
type Vertex struct {
	Position   Point      `json:"position" yaml:"position"`
	Covariance Covariance `json:"covariance" yaml:"covariance"`
	Chi2       float64    `json:"chi2" yaml:"chi2"`
	Ndof       float64    `json:"ndof" yaml:"ndof"`
	TracksSize int        `json:"tracks_size" yaml:"tracks_size"`
}

// LorentzVector is a four-momentum in GeV.
type LorentzVector struct {
	Px float64 `json:"px" yaml:"px"`
	Py float64 `json:"py" yaml:"py"`
	Pz float64 `json:"pz" yaml:"pz"`
	E  float64 `json:"e" yaml:"e"`
}

// Pt returns the transverse momentum.
func (v LorentzVector) Pt() float64 {
	return math.Hypot(v.Px, v.Py)
}

// Phi returns the azimuthal angle in (-pi, pi].
func (v LorentzVector) Phi() float64 {
	return math.Atan2(v.Py, v.Px)
}

// Eta returns the pseudorapidity. A vector along the beam axis has
// infinite eta; zero vectors return 0.
func (v LorentzVector) Eta() float64 {
	return pseudorapidity(v.Px, v.Py, v.Pz)
}

// Track is a reconstructed charged-particle track.
type Track struct {
	Px       float64 `json:"px" yaml:"px"`
	Py       float64 `json:"py" yaml:"py"`
	Pz       float64 `json:"pz" yaml:"pz"`
	Charge   int     `json:"charge" yaml:"charge"`
	RefPoint Point   `json:"ref_point" yaml:"ref_point"`
	NHits    int     `json:"n_hits" yaml:"n_hits"`
}

// Pt returns the track transverse momentum.
func (t Track) Pt() float64 {
	return math.Hypot(t.Px, t.Py)
}

// Phi returns the track azimuth.
func (t Track) Phi() float64 {
	return math.Atan2(t.Py, t.Px)
}

// Eta returns the track pseudorapidity.
func (t Track) Eta() float64 {
	return pseudorapidity(t.Px, t.Py, t.Pz)
}

// RecHit is a calorimeter energy deposit.
type RecHit struct {
	ID     DetID   `json:"id" yaml:"id"`
	Energy float64 `json:"energy" yaml:"energy"`
	Eta    float64 `json:"eta" yaml:"eta"`
	Phi    float64 `json:"phi" yaml:"phi"`
}

// Et returns the transverse energy.
func (h RecHit) Et() float64 {
	return h.Energy / math.Cosh(h.Eta)
}

// TagInfo is one tagged jet with the tracks and calorimeter hits
// associated to it upstream.
type TagInfo struct {
	Jet    LorentzVector `json:"jet" yaml:"jet"`
	Tracks []Track       `json:"tracks,omitempty" yaml:"tracks,omitempty"`
	Hits   []RecHit      `json:"hits,omitempty" yaml:"hits,omitempty"`
}

// TagInfoRef points at a TagInfo by its position in the event's input
// collection. Index is the original position; rejected items are not
// removed from the numbering.
type TagInfoRef struct {
	Index int
	Info  *TagInfo
}

// Candidate is a reconstructed tau candidate.
type Candidate struct {
	TagInfoIndex        int           `json:"tag_info_index"`
	P4                  LorentzVector `json:"p4"`
	Vertex              Point         `json:"vertex"`
	LeadTrack           *Track        `json:"lead_track,omitempty"`
	LeadTrackSignedIP   float64       `json:"lead_track_signed_ip"`
	SignalTracks        []int         `json:"signal_tracks,omitempty"`
	IsolationTracks     []int         `json:"isolation_tracks,omitempty"`
	IsolationTrackPtSum float64       `json:"isolation_track_pt_sum"`
	IsolationHitEtSum   float64       `json:"isolation_hit_et_sum"`
	MagneticFieldBz     float64       `json:"magnetic_field_bz"`
}

// Event carries the upstream products of one collision event, keyed by
// producer label. A label missing from a map means the product was not
// produced, which is different from an empty collection. Number is the
// event's position in its input; stored products are listed in that order.
type Event struct {
	ID       string               `json:"id" yaml:"id"`
	Number   uint64               `json:"number" yaml:"number"`
	TagInfos map[string][]TagInfo `json:"tag_infos" yaml:"tag_infos"`
	Vertices map[string][]Vertex  `json:"vertices" yaml:"vertices"`
}

// Products are the two collections handed off for one event.
// Candidates and DetIDs are never nil.
type Products struct {
	EventID         string      `json:"event_id"`
	Vertex          Vertex      `json:"vertex"`
	SyntheticVertex bool        `json:"synthetic_vertex"`
	Candidates      []Candidate `json:"candidates"`
	DetIDs          []DetID     `json:"det_ids"`
}

// DeltaR returns the distance in (eta, phi) space.
func DeltaR(eta1, phi1, eta2, phi2 float64) float64 {
	return math.Hypot(eta1-eta2, DeltaPhi(phi1, phi2))
}

// DeltaPhi returns phi1-phi2 wrapped into [-pi, pi].
func DeltaPhi(phi1, phi2 float64) float64 {
	d := math.Mod(phi1-phi2, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

func pseudorapidity(px, py, pz float64) float64 {
	pt := math.Hypot(px, py)
	if pt == 0 {
		switch {
		case pz > 0:
			return math.Inf(1)
		case pz < 0:
			return math.Inf(-1)
		default:
			return 0
		}
	}
	return math.Asinh(pz / pt)
}
