package taureco

import (
	"fmt"
	"math"

	"github.com/randalmurphal/taureco/pkg/taureco/registry"
)

// Record keys understood by ResolveDependencies.
const (
	MagneticFieldRecord = "IdealMagneticFieldRecord"
	TrackBuilderRecord  = "TransientTrackRecord"
)

// MagneticField returns the field vector (tesla) at a point.
type MagneticField interface {
	FieldAt(p Point) Point
}

// UniformField is a solenoid-like field along z.
type UniformField struct {
	Bz float64
}

// FieldAt returns (0, 0, Bz) everywhere.
func (f UniformField) FieldAt(Point) Point {
	return Point{Z: f.Bz}
}

// TransientTrack is a track with field-dependent quantities attached.
type TransientTrack struct {
	Track
	// Radius is the transverse radius of curvature in cm; +Inf without field.
	Radius float64
	// Bz is the field at the reference point in tesla.
	Bz float64
}

// TransverseImpactParameter returns the signed distance of closest approach
// in the transverse plane to p. Charged tracks in a field follow their
// helix; anything else is treated as a straight line.
func (t TransientTrack) TransverseImpactParameter(p Point) float64 {
	phi := t.Phi()
	ux, uy := math.Sin(phi), -math.Cos(phi)
	dx, dy := t.RefPoint.X-p.X, t.RefPoint.Y-p.Y

	bend := float64(t.Charge) * t.Bz
	if bend == 0 || !(t.Radius > 0) || math.IsInf(t.Radius, 1) {
		return dx*ux + dy*uy
	}

	// The helix centre lies along the force direction q(v x B).
	s := math.Copysign(1, bend)
	cx, cy := dx+s*t.Radius*ux, dy+s*t.Radius*uy
	return s * (math.Hypot(cx, cy) - t.Radius)
}

// LongitudinalDistance returns the z distance of the reference point to p.
func (t TransientTrack) LongitudinalDistance(p Point) float64 {
	return t.RefPoint.Z - p.Z
}

// TrackBuilder turns reconstructed tracks into transient tracks.
type TrackBuilder interface {
	Build(t Track) TransientTrack
}

// HelixTrackBuilder computes track curvature from a magnetic field.
type HelixTrackBuilder struct {
	field MagneticField
}

// NewHelixTrackBuilder creates a builder bound to field.
func NewHelixTrackBuilder(field MagneticField) *HelixTrackBuilder {
	return &HelixTrackBuilder{field: field}
}

// Build implements TrackBuilder. The radius uses R[cm] = pt / (0.003 * Bz).
func (b *HelixTrackBuilder) Build(t Track) TransientTrack {
	bz := 0.0
	if b.field != nil {
		bz = b.field.FieldAt(t.RefPoint).Z
	}
	radius := math.Inf(1)
	if bz != 0 {
		radius = math.Abs(t.Pt() / (0.003 * bz))
	}
	return TransientTrack{Track: t, Radius: radius, Bz: bz}
}

// Setup holds the event-independent records a builder may need.
// It is safe for concurrent use.
type Setup struct {
	records *registry.Registry[string, any]
}

// NewSetup creates an empty setup.
func NewSetup() *Setup {
	return &Setup{records: registry.New[string, any]()}
}

// Put stores a record, replacing any previous value under the same key.
func (s *Setup) Put(record string, value any) *Setup {
	s.records.Put(record, value)
	return s
}

// Lookup fetches a record and asserts its type.
func Lookup[T any](s *Setup, record string) (T, error) {
	var zero T
	if s == nil {
		return zero, &MissingDependencyError{Dependency: "setup", Label: record}
	}
	v, err := s.records.Lookup(record)
	if err != nil {
		return zero, &MissingDependencyError{Dependency: "record", Label: record, Err: err}
	}
	t, ok := v.(T)
	if !ok {
		return zero, &MissingDependencyError{
			Dependency: "record",
			Label:      record,
			Err:        fmt.Errorf("unexpected type %T", v),
		}
	}
	return t, nil
}

// Dependencies are the upstream services a builder is constructed with.
type Dependencies struct {
	Field  MagneticField
	Tracks TrackBuilder
}

// ResolveDependencies fetches the magnetic field and track builder records
// once, before any event is processed.
func ResolveDependencies(s *Setup) (Dependencies, error) {
	field, err := Lookup[MagneticField](s, MagneticFieldRecord)
	if err != nil {
		return Dependencies{}, err
	}
	tracks, err := Lookup[TrackBuilder](s, TrackBuilderRecord)
	if err != nil {
		return Dependencies{}, err
	}
	return Dependencies{Field: field, Tracks: tracks}, nil
}

// Validate reports a MissingDependencyError for any unset service.
func (d Dependencies) Validate() error {
	if d.Field == nil {
		return &MissingDependencyError{Dependency: "record", Label: MagneticFieldRecord}
	}
	if d.Tracks == nil {
		return &MissingDependencyError{Dependency: "record", Label: TrackBuilderRecord}
	}
	return nil
}
