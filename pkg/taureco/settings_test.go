package taureco

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/taureco/pkg/taureco/config"
)

// TestDefaultSettings tests the standard configuration values.
func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "caloRecoTauTagInfoProducer", s.TagInfoLabel)
	assert.Equal(t, "offlinePrimaryVertices", s.VertexLabel)
	assert.Equal(t, 0.0, s.JetPtMin)
	assert.Equal(t, Sigma{X: 0.0015, Y: 0.0015, Z: 0.005}, s.Smearing)
	assert.NoError(t, s.Validate())
}

// TestSettingsFromConfig tests parsing on top of defaults.
func TestSettingsFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		want    func() Settings
		wantErr string
	}{
		{
			name: "empty",
			want: DefaultSettings,
		},
		{
			name: "overrides",
			data: map[string]any{
				"tag_info_label":     "myTagInfos",
				"jet_pt_min":         15,
				"smeared_pv_sigma_z": 0.01,
			},
			want: func() Settings {
				s := DefaultSettings()
				s.TagInfoLabel = "myTagInfos"
				s.JetPtMin = 15
				s.Smearing.Z = 0.01
				return s
			},
		},
		{
			name:    "wrong types are all reported",
			data:    map[string]any{"jet_pt_min": "high", "smeared_pv_sigma_x": true},
			wantErr: "smeared_pv_sigma_x",
		},
		{
			name:    "negative sigma",
			data:    map[string]any{"smeared_pv_sigma_y": -0.1},
			wantErr: "sigma y",
		},
		{
			name:    "negative threshold",
			data:    map[string]any{"jet_pt_min": -1.0},
			wantErr: "jet pt threshold must be finite and >= 0",
		},
		{
			name:    "empty label",
			data:    map[string]any{"vertex_label": ""},
			wantErr: "vertex label is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := SettingsFromConfig(config.New(tt.data))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want(), s)
		})
	}
}

// TestSettings_Validate tests non-finite values.
func TestSettings_Validate(t *testing.T) {
	s := DefaultSettings()
	s.JetPtMin = math.NaN()
	s.Smearing.X = math.Inf(1)

	err := s.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "jet pt threshold")
	assert.Contains(t, err.Error(), "sigma x")
}
