package builder

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/randalmurphal/taureco/pkg/taureco"
	"github.com/randalmurphal/taureco/pkg/taureco/config"
)

// CaloParams tune the calo builder. Momenta and energies are in GeV,
// cone sizes in ΔR, distances in cm. LeadTrackMaxIP bounds the lead
// track's transverse impact parameter when UseLeadTrackIPConstr is set.
type CaloParams struct {
	LeadTrackMinPt            float64
	TrackMinPt                float64
	IsolationTrackMinPt       float64
	IsolationTrackMinHits     int
	MatchingConeSize          float64
	TrackerSignalConeSize     float64
	TrackerIsolConeSize       float64
	ECALIsolConeSize          float64
	ECALRecHitMinEt           float64
	TrackLeadTrackMaxDZ       float64
	UseTrackLeadTrackDZConstr bool
	LeadTrackMaxIP            float64
	UseLeadTrackIPConstr      bool
}

// DefaultCaloParams returns the standard tuning.
func DefaultCaloParams() CaloParams {
	return CaloParams{
		LeadTrackMinPt:            0.5,
		TrackMinPt:                0.5,
		IsolationTrackMinPt:       1.0,
		IsolationTrackMinHits:     0,
		MatchingConeSize:          0.10,
		TrackerSignalConeSize:     0.07,
		TrackerIsolConeSize:       0.50,
		ECALIsolConeSize:          0.50,
		ECALRecHitMinEt:           0.5,
		TrackLeadTrackMaxDZ:       1.0,
		UseTrackLeadTrackDZConstr: true,
		LeadTrackMaxIP:            0.1,
		UseLeadTrackIPConstr:      false,
	}
}

// CaloParamsFromConfig reads params on top of DefaultCaloParams.
func CaloParamsFromConfig(cfg config.Config) (CaloParams, error) {
	p := DefaultCaloParams()

	var errs []error
	float := func(key string, dst *float64) {
		v, err := cfg.FloatStrict(key, *dst)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = v
	}
	float("lead_track_min_pt", &p.LeadTrackMinPt)
	float("track_min_pt", &p.TrackMinPt)
	float("isolation_track_min_pt", &p.IsolationTrackMinPt)
	float("matching_cone_size", &p.MatchingConeSize)
	float("tracker_signal_cone_size", &p.TrackerSignalConeSize)
	float("tracker_isol_cone_size", &p.TrackerIsolConeSize)
	float("ecal_isol_cone_size", &p.ECALIsolConeSize)
	float("ecal_rechit_min_et", &p.ECALRecHitMinEt)
	float("track_lead_track_max_dz", &p.TrackLeadTrackMaxDZ)
	float("lead_track_max_ip", &p.LeadTrackMaxIP)
	p.UseTrackLeadTrackDZConstr = cfg.Bool("use_track_lead_track_dz_constraint", p.UseTrackLeadTrackDZConstr)
	p.UseLeadTrackIPConstr = cfg.Bool("use_lead_track_ip_constraint", p.UseLeadTrackIPConstr)
	if cfg.Has("isolation_track_min_hits") {
		if n := cfg.Int("isolation_track_min_hits", -1); n >= 0 {
			p.IsolationTrackMinHits = n
		} else {
			errs = append(errs, fmt.Errorf("config key %q: expected non-negative integer", "isolation_track_min_hits"))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return CaloParams{}, err
	}
	return p, p.Validate()
}

// Validate checks every value is finite and non-negative, and that the
// signal cone fits inside the isolation cone.
func (p CaloParams) Validate() error {
	var errs []error
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"lead_track_min_pt", p.LeadTrackMinPt},
		{"track_min_pt", p.TrackMinPt},
		{"isolation_track_min_pt", p.IsolationTrackMinPt},
		{"matching_cone_size", p.MatchingConeSize},
		{"tracker_signal_cone_size", p.TrackerSignalConeSize},
		{"tracker_isol_cone_size", p.TrackerIsolConeSize},
		{"ecal_isol_cone_size", p.ECALIsolConeSize},
		{"ecal_rechit_min_et", p.ECALRecHitMinEt},
		{"track_lead_track_max_dz", p.TrackLeadTrackMaxDZ},
		{"lead_track_max_ip", p.LeadTrackMaxIP},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			errs = append(errs, fmt.Errorf("%s must be finite and >= 0, got %v", f.name, f.v))
		}
	}
	if p.IsolationTrackMinHits < 0 {
		errs = append(errs, fmt.Errorf("isolation_track_min_hits must be >= 0, got %d", p.IsolationTrackMinHits))
	}
	if p.TrackerSignalConeSize > p.TrackerIsolConeSize {
		errs = append(errs, fmt.Errorf("signal cone %v exceeds isolation cone %v",
			p.TrackerSignalConeSize, p.TrackerIsolConeSize))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid calo params: %w", err)
	}
	return nil
}

// CaloBuilder builds candidates from a jet's tracks and ECAL hits.
//
// The lead track is the hardest track inside the matching cone around the
// jet axis. Signal and isolation tracks are collected in cones around the
// lead track; ECAL hits above threshold inside the isolation cone around
// the jet axis are the selected detector ids.
//
// Every cut is a positive comparison, so NaN inputs never pass.
type CaloBuilder struct {
	params CaloParams
	field  taureco.MagneticField
	tracks taureco.TrackBuilder
}

// NewCaloBuilder creates a CaloBuilder. deps must be valid.
func NewCaloBuilder(params CaloParams, deps taureco.Dependencies) (*CaloBuilder, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &CaloBuilder{params: params, field: deps.Field, tracks: deps.Tracks}, nil
}

func newCalo(cfg config.Config, deps taureco.Dependencies) (taureco.Builder, error) {
	params, err := CaloParamsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewCaloBuilder(params, deps)
}

// Params returns the tuning in use.
func (b *CaloBuilder) Params() CaloParams {
	return b.params
}

// Build implements taureco.Builder.
func (b *CaloBuilder) Build(ctx context.Context, ref taureco.TagInfoRef, vertex taureco.Vertex) (taureco.Built, error) {
	if err := ctx.Err(); err != nil {
		return taureco.Built{}, err
	}
	if ref.Info == nil {
		return taureco.Built{}, fmt.Errorf("tag info %d is nil", ref.Index)
	}
	info := ref.Info
	pv := vertex.Position

	cand := taureco.Candidate{
		TagInfoIndex:    ref.Index,
		P4:              info.Jet,
		Vertex:          pv,
		MagneticFieldBz: b.field.FieldAt(pv).Z,
	}
	jetEta, jetPhi := info.Jet.Eta(), info.Jet.Phi()

	if lead := b.leadTrack(info.Tracks, jetEta, jetPhi, pv); lead >= 0 {
		b.collectTracks(&cand, info.Tracks, lead, pv)
	}

	var ids []taureco.DetID
	for _, h := range info.Hits {
		if h.ID.Det() != taureco.DetectorEcal {
			continue
		}
		et := h.Et()
		if !(et >= b.params.ECALRecHitMinEt) {
			continue
		}
		if !(taureco.DeltaR(jetEta, jetPhi, h.Eta, h.Phi) < b.params.ECALIsolConeSize) {
			continue
		}
		ids = append(ids, h.ID)
		cand.IsolationHitEtSum += et
	}

	return taureco.Built{Candidate: cand, DetIDs: ids}, nil
}

// leadTrack returns the index of the hardest qualifying track, or -1.
// Ties keep the earlier track.
func (b *CaloBuilder) leadTrack(tracks []taureco.Track, eta, phi float64, pv taureco.Point) int {
	lead, leadPt := -1, 0.0
	for i, t := range tracks {
		pt := t.Pt()
		if !(pt >= b.params.LeadTrackMinPt) {
			continue
		}
		if !(taureco.DeltaR(eta, phi, t.Eta(), t.Phi()) < b.params.MatchingConeSize) {
			continue
		}
		if b.params.UseLeadTrackIPConstr {
			ip := b.tracks.Build(t).TransverseImpactParameter(pv)
			if !(math.Abs(ip) <= b.params.LeadTrackMaxIP) {
				continue
			}
		}
		if lead < 0 || pt > leadPt {
			lead, leadPt = i, pt
		}
	}
	return lead
}

func (b *CaloBuilder) collectTracks(cand *taureco.Candidate, tracks []taureco.Track, lead int, pv taureco.Point) {
	lt := tracks[lead]
	cand.LeadTrack = &lt
	cand.SignalTracks = append(cand.SignalTracks, lead)

	leadTT := b.tracks.Build(lt)
	cand.LeadTrackSignedIP = leadTT.TransverseImpactParameter(pv)
	leadEta, leadPhi := lt.Eta(), lt.Phi()
	leadDZ := leadTT.LongitudinalDistance(pv)

	for i, t := range tracks {
		pt := t.Pt()
		if i == lead || !(pt >= b.params.TrackMinPt) {
			continue
		}
		if b.params.UseTrackLeadTrackDZConstr {
			dz := b.tracks.Build(t).LongitudinalDistance(pv)
			if !(math.Abs(dz-leadDZ) <= b.params.TrackLeadTrackMaxDZ) {
				continue
			}
		}
		dr := taureco.DeltaR(leadEta, leadPhi, t.Eta(), t.Phi())
		switch {
		case dr < b.params.TrackerSignalConeSize:
			cand.SignalTracks = append(cand.SignalTracks, i)
		case dr < b.params.TrackerIsolConeSize &&
			pt >= b.params.IsolationTrackMinPt &&
			t.NHits >= b.params.IsolationTrackMinHits:
			cand.IsolationTracks = append(cand.IsolationTracks, i)
			cand.IsolationTrackPtSum += pt
		}
	}
}
