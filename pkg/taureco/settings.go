package taureco

import (
	"errors"
	"fmt"
	"math"

	"github.com/randalmurphal/taureco/pkg/taureco/config"
)

// Defaults for Settings.
const (
	DefaultTagInfoLabel = "caloRecoTauTagInfoProducer"
	DefaultVertexLabel  = "offlinePrimaryVertices"
	DefaultJetPtMin     = 0.0
	DefaultSigmaXY      = 0.0015
	DefaultSigmaZ       = 0.005
	DefaultBuilder      = "calo"
)

// Settings configure a Producer.
type Settings struct {
	// TagInfoLabel selects the input collection in Event.TagInfos.
	TagInfoLabel string
	// VertexLabel selects the external vertex collection in Event.Vertices.
	VertexLabel string
	// JetPtMin is the transverse momentum a jet must strictly exceed.
	JetPtMin float64
	// Smearing is the synthetic vertex spread.
	Smearing Sigma
}

// DefaultSettings returns the standard configuration.
func DefaultSettings() Settings {
	return Settings{
		TagInfoLabel: DefaultTagInfoLabel,
		VertexLabel:  DefaultVertexLabel,
		JetPtMin:     DefaultJetPtMin,
		Smearing:     Sigma{X: DefaultSigmaXY, Y: DefaultSigmaXY, Z: DefaultSigmaZ},
	}
}

// SettingsFromConfig reads settings from cfg on top of DefaultSettings.
//
// Keys: tag_info_label, vertex_label, jet_pt_min, smeared_pv_sigma_x,
// smeared_pv_sigma_y, smeared_pv_sigma_z.
func SettingsFromConfig(cfg config.Config) (Settings, error) {
	s := DefaultSettings()
	s.TagInfoLabel = cfg.String("tag_info_label", s.TagInfoLabel)
	s.VertexLabel = cfg.String("vertex_label", s.VertexLabel)

	var errs []error
	float := func(key string, dst *float64) {
		v, err := cfg.FloatStrict(key, *dst)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = v
	}
	float("jet_pt_min", &s.JetPtMin)
	float("smeared_pv_sigma_x", &s.Smearing.X)
	float("smeared_pv_sigma_y", &s.Smearing.Y)
	float("smeared_pv_sigma_z", &s.Smearing.Z)
	if err := errors.Join(errs...); err != nil {
		return Settings{}, err
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks labels are set and numbers are finite and non-negative.
func (s Settings) Validate() error {
	var errs []error
	if s.TagInfoLabel == "" {
		errs = append(errs, errors.New("tag info label is empty"))
	}
	if s.VertexLabel == "" {
		errs = append(errs, errors.New("vertex label is empty"))
	}
	if math.IsNaN(s.JetPtMin) || math.IsInf(s.JetPtMin, 0) || s.JetPtMin < 0 {
		errs = append(errs, fmt.Errorf("jet pt threshold must be finite and >= 0, got %v", s.JetPtMin))
	}
	for _, axis := range []struct {
		name string
		v    float64
	}{{"x", s.Smearing.X}, {"y", s.Smearing.Y}, {"z", s.Smearing.Z}} {
		if math.IsNaN(axis.v) || math.IsInf(axis.v, 0) || axis.v < 0 {
			errs = append(errs, fmt.Errorf("sigma %s must be finite and >= 0, got %v", axis.name, axis.v))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
