package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_Valid(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())
}

func TestSettings_Validate_Rejects(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(s *Settings)
	}{
		{"view", func(s *Settings) { s.ViewLeft, s.ViewRight = 0.5, 0.5 }},
		{"db_range", func(s *Settings) { s.LowDb = s.HighDb }},
		{"db_range", func(s *Settings) { s.LowDb = MinDecibels - 1 }},
		{"window_size", func(s *Settings) { s.WindowSize = 1000 }},
		{"window", func(s *Settings) { s.Window = "kaiser" }},
		{"channel", func(s *Settings) { s.Channel = ChannelComplex + 1 }},
		{"tracking_graph", func(s *Settings) { s.TrackingGraph = LineGraphCount }},
		{"blob_size_ms", func(s *Settings) { s.BlobSizeMs = 0.1 }},
		{"update_smoothing", func(s *Settings) { s.UpdateSmoothing = 1 }},
		{"lines.decay", func(s *Settings) { s.Lines[GraphAux1].DecayDbPerSec = math.NaN() }},
		{"spectrum_ratios", func(s *Settings) { s.SpectrumRatios[2] = -1 }},
		{"pct_for_division", func(s *Settings) { s.PctForDivision = 0 }},
		{"flood_fill_alpha", func(s *Settings) { s.FloodFillAlpha = 2 }},
		{"reference_tuning", func(s *Settings) { s.ReferenceTuning = 1000 }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)

			var verr *ValidationError
			require.True(t, errors.As(s.Validate(), &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSettings_Validate_WrapsSentinels(t *testing.T) {
	s := DefaultSettings()
	s.WindowSize = 3
	assert.Contains(t, s.Validate().Error(), ErrInvalidWindowSize.Error())
}
