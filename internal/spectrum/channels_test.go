package spectrum

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gospectra/internal/adapter/transform/godsp"
	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

const channelTestSize = 512

func newTestChannelAnalyzer(t *testing.T) *ChannelAnalyzer {
	t.Helper()
	backend, err := godsp.New(channelTestSize, domain.WindowHann, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return NewChannelAnalyzer(backend)
}

// tone returns a sinusoid on an exact bin.
func tone(bin int, amplitude, phase float64) []float64 {
	out := make([]float64, channelTestSize)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*float64(bin*i)/channelTestSize+phase)
	}
	return out
}

func TestChannelAnalyzer_OneLineConfigurations(t *testing.T) {
	c := newTestChannelAnalyzer(t)
	left := tone(20, 1, 0)
	right := tone(40, 0.5, 0)

	cases := []struct {
		cfg   domain.ChannelConfiguration
		bin20 float64
		bin40 float64
	}{
		{domain.ChannelLeft, 1, 0},
		{domain.ChannelRight, 0, 0.5},
		{domain.ChannelMerge, 0.5, 0.25},
		{domain.ChannelSide, 0.5, 0.25},
	}
	for _, tc := range cases {
		s := c.Analyze(tc.cfg, left, right, 48000)
		require.Len(t, s.Left, channelTestSize/2+1, tc.cfg.String())
		assert.Nil(t, s.Right, tc.cfg.String())
		assert.False(t, s.TwoSided)
		assert.InDelta(t, tc.bin20, s.Left[20], 0.01, tc.cfg.String())
		assert.InDelta(t, tc.bin40, s.Left[40], 0.01, tc.cfg.String())
	}
}

func TestChannelAnalyzer_TwoLineConfigurations(t *testing.T) {
	c := newTestChannelAnalyzer(t)
	left := tone(20, 1, 0)
	right := tone(20, 1, 0)

	s := c.Analyze(domain.ChannelSeparate, left, tone(30, 0.5, 0), 48000)
	require.NotNil(t, s.Right)
	assert.InDelta(t, 1, s.Left[20], 0.01)
	assert.InDelta(t, 0.5, s.Right[30], 0.01)
	assert.False(t, s.RightNormalized)

	s = c.Analyze(domain.ChannelMidSide, left, right, 48000)
	assert.InDelta(t, 1, s.Left[20], 0.01)
	assert.InDelta(t, 0, s.Right[20], 1e-9)
}

func TestChannelAnalyzer_Phase(t *testing.T) {
	c := newTestChannelAnalyzer(t)
	left := tone(20, 1, 0)

	s := c.Analyze(domain.ChannelPhase, left, tone(20, 1, 0), 48000)
	require.True(t, s.RightNormalized)
	assert.InDelta(t, 0, s.Right[20], 1e-6)
	assert.InDelta(t, 1, s.Left[20], 0.01, "the main line is the mid signal")

	s = c.Analyze(domain.ChannelPhase, left, tone(20, 1, math.Pi), 48000)
	assert.InDelta(t, 1, s.Right[20], 1e-6)
	assert.InDelta(t, 0, s.Left[20], 1e-6, "opposite phases cancel in the mid signal")

	s = c.Analyze(domain.ChannelPhase, left, tone(20, 1, math.Pi/2), 48000)
	assert.InDelta(t, 0.5, s.Right[20], 1e-4)
}

func TestChannelAnalyzer_Complex(t *testing.T) {
	c := newTestChannelAnalyzer(t)

	s := c.Analyze(domain.ChannelComplex, tone(20, 1, 0), make([]float64, channelTestSize), 48000)
	require.Len(t, s.Left, channelTestSize)
	require.Len(t, s.Raw, channelTestSize)
	assert.True(t, s.TwoSided)
	assert.Nil(t, s.Right)
	assert.InDelta(t, 1, s.Left[20], 0.01)
	assert.InDelta(t, 1, s.Left[channelTestSize-20], 0.01)
	assert.Equal(t, 48000.0/channelTestSize, s.BinWidth())
}

func TestChannelAnalyzer_LeavesInputUntouched(t *testing.T) {
	c := newTestChannelAnalyzer(t)
	left := tone(7, 1, 0)
	right := tone(9, 1, 0)
	l0 := append([]float64(nil), left...)
	r0 := append([]float64(nil), right...)

	for _, cfg := range []domain.ChannelConfiguration{
		domain.ChannelLeft, domain.ChannelMerge, domain.ChannelPhase,
		domain.ChannelSeparate, domain.ChannelComplex,
	} {
		c.Analyze(cfg, left, right, 48000)
	}
	assert.Equal(t, l0, left)
	assert.Equal(t, r0, right)
}
