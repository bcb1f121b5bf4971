package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

func TestResample_LinearAndLanczosHitBinsExactly(t *testing.T) {
	bins := []float64{0, 1, 4, 9, 16, 25, 36, 49}
	freqs := []float64{0, 10, 20, 30, 40, 50, 60, 70}
	dst := make([]float64, len(freqs))

	for _, policy := range []domain.BinInterpolation{domain.InterpolationLinear, domain.InterpolationLanczos} {
		Resample(dst, bins, 10, freqs, policy)
		assert.InDeltaSlice(t, bins, dst, 1e-12, "policy %v", policy)
	}
}

func TestResample_Linear_Midpoints(t *testing.T) {
	bins := []float64{0, 2, 4}
	dst := make([]float64, 2)
	Resample(dst, bins, 100, []float64{50, 150}, domain.InterpolationLinear)
	assert.InDeltaSlice(t, []float64{1, 3}, dst, 1e-12)
}

func TestResample_Lanczos_FlatRegionStaysFlat(t *testing.T) {
	bins := make([]float64, 32)
	for i := range bins {
		bins[i] = 1
	}
	dst := make([]float64, 3)
	Resample(dst, bins, 1, []float64{10.5, 15.25, 20.75}, domain.InterpolationLanczos)
	for _, v := range dst {
		assert.InDelta(t, 1.0, v, 0.05)
	}
}

func TestResample_None_MaxOverCoveredBins(t *testing.T) {
	bins := []float64{0, 5, 1, 1, 7, 1, 1, 1, 1, 1}
	freqs := []float64{0, 3, 6, 9}
	dst := make([]float64, len(freqs))

	Resample(dst, bins, 1, freqs, domain.InterpolationNone)
	// point 1 covers bins 2..4, point 0 covers 0..1
	assert.Equal(t, []float64{5, 7, 1, 1}, dst)
}

func TestResample_None_DensePointsPickNearestBin(t *testing.T) {
	bins := []float64{1, 2, 3}
	freqs := []float64{0.9, 1.0, 1.1, 1.2}
	dst := make([]float64, len(freqs))

	Resample(dst, bins, 1, freqs, domain.InterpolationNone)
	assert.Equal(t, []float64{2, 2, 2, 2}, dst)
}

func TestResample_EmptyBins(t *testing.T) {
	dst := []float64{3, 3}
	Resample(dst, nil, 1, []float64{1, 2}, domain.InterpolationLinear)
	assert.Equal(t, []float64{0, 0}, dst)
}
