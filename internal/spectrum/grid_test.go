package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

func frequencies(divs []domain.FrequencyGraphDivision) []float64 {
	out := make([]float64, len(divs))
	for i, d := range divs {
		out[i] = d.Frequency
	}
	return out
}

func TestGrid_Divisions_Logarithmic(t *testing.T) {
	var g Grid
	m := testMapper(domain.ScalingLogarithmic, false)

	divs, mirrored := g.Divisions(m, 1000, 0.05)
	require.NotEmpty(t, divs)
	assert.Empty(t, mirrored)

	freqs := frequencies(divs)
	assert.Contains(t, freqs, 100.0)
	assert.Contains(t, freqs, 1000.0)
	assert.Contains(t, freqs, 10000.0)

	for i, d := range divs {
		assert.GreaterOrEqual(t, d.Coordinate, 0.0)
		assert.LessOrEqual(t, d.Coordinate, 999.0)
		if i > 0 {
			assert.GreaterOrEqual(t, d.Coordinate-divs[i-1].Coordinate, 50.0)
		}
	}
}

func TestGrid_Divisions_LinearUsesNiceSteps(t *testing.T) {
	var g Grid
	m := testMapper(domain.ScalingLinear, false)

	divs, _ := g.Divisions(m, 800, 0.1)
	require.NotEmpty(t, divs)
	for _, d := range divs {
		assert.Zero(t, int(d.Frequency)%5000, "frequency %v", d.Frequency)
	}
}

func TestGrid_Divisions_CachedUntilInputsChange(t *testing.T) {
	var g Grid
	m := testMapper(domain.ScalingLogarithmic, false)

	g.Divisions(m, 640, 0.1)
	g.Divisions(m, 640, 0.1)
	assert.Equal(t, 1, g.Generations())

	g.Divisions(m, 641, 0.1)
	assert.Equal(t, 2, g.Generations())

	m.ViewLeft = 0.2
	g.Divisions(m, 641, 0.1)
	assert.Equal(t, 3, g.Generations())

	m.Complex = true
	_, mirrored := g.Divisions(m, 641, 0.1)
	assert.Equal(t, 4, g.Generations())
	assert.NotEmpty(t, mirrored)

	g.Invalidate()
	g.Divisions(m, 641, 0.1)
	assert.Equal(t, 5, g.Generations())
}

func TestGrid_Divisions_DegenerateWidth(t *testing.T) {
	var g Grid
	divs, mirrored := g.Divisions(testMapper(domain.ScalingLinear, true), 0, 0.1)
	assert.Empty(t, divs)
	assert.Empty(t, mirrored)
}

func TestDecibelDivisions(t *testing.T) {
	divs := DecibelDivisions(-120, 0, 400)
	require.Len(t, divs, 21)
	assert.Equal(t, -120.0, divs[0].Decibels)
	assert.InDelta(t, 400.0, divs[0].Coordinate, 1e-9)
	assert.Equal(t, 0.0, divs[20].Decibels)
	assert.InDelta(t, 0.0, divs[20].Coordinate, 1e-9)
	assert.Equal(t, "-60 dB", divs[10].Label)

	assert.Nil(t, DecibelDivisions(0, 0, 400))
	assert.Nil(t, DecibelDivisions(-60, 0, 0))
}

func TestFormatFrequency(t *testing.T) {
	assert.Equal(t, "50", FormatFrequency(50))
	assert.Equal(t, "1k", FormatFrequency(1000))
	assert.Equal(t, "2.5k", FormatFrequency(2500))
}
