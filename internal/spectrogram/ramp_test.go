package spectrogram

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

var (
	black = color.RGBA{A: 0xff}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestRamp_Boundaries(t *testing.T) {
	r := RampFromSettings(domain.DefaultSettings())
	s := domain.DefaultSettings()

	assert.Equal(t, 6, r.Stops())
	assert.Equal(t, s.Background, r.ColourFor(0))
	assert.Equal(t, s.Background, r.ColourFor(-3))
	assert.Equal(t, s.SpectrumColours[4], r.ColourFor(1))
	assert.Equal(t, s.SpectrumColours[4], r.ColourFor(7))
}

func TestRamp_ContinuousAcrossStops(t *testing.T) {
	r := RampFromSettings(domain.DefaultSettings())

	prev := r.ColourFor(0)
	for i := 1; i <= 10000; i++ {
		c := r.ColourFor(float64(i) / 10000)
		assert.LessOrEqual(t, absDiff(prev.R, c.R), 3, "step %d", i)
		assert.LessOrEqual(t, absDiff(prev.G, c.G), 3, "step %d", i)
		assert.LessOrEqual(t, absDiff(prev.B, c.B), 3, "step %d", i)
		prev = c
	}
}

func TestRamp_Midpoint(t *testing.T) {
	r := NewRamp([]color.RGBA{black, white}, []float64{1})
	c := r.ColourFor(0.5)
	assert.Equal(t, uint8(128), c.R)
	assert.Equal(t, uint8(128), c.G)
	assert.Equal(t, uint8(128), c.B)
}

func TestRamp_NormalizesRatios(t *testing.T) {
	grey := color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	a := NewRamp([]color.RGBA{black, grey, white}, []float64{2, 2})
	b := NewRamp([]color.RGBA{black, grey, white}, []float64{0.5, 0.5})

	for _, x := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
		assert.Equal(t, a.ColourFor(x), b.ColourFor(x))
	}
}

func TestRamp_ZeroRatiosBecomeEqualSegments(t *testing.T) {
	a := NewRamp([]color.RGBA{black, white}, []float64{0})
	b := NewRamp([]color.RGBA{black, white}, []float64{1})
	assert.Equal(t, b.ColourFor(0.3), a.ColourFor(0.3))
}

func TestRamp_SkipsEmptySegments(t *testing.T) {
	red := color.RGBA{R: 0xff, A: 0xff}
	r := NewRamp([]color.RGBA{black, red, white}, []float64{0, 1})

	// the black to red segment has no width, so low intensities start at red
	c := r.ColourFor(0.01)
	assert.GreaterOrEqual(t, int(c.R), 250)
	assert.LessOrEqual(t, int(c.G), 5)
}
