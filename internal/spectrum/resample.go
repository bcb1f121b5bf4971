package spectrum

import (
	"math"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

const lanczosLobes = 3

// Resample evaluates the bin magnitudes at the display frequencies.
// binWidth is the frequency spacing of bins in Hz. dst must have len(freqs).
func Resample(dst, bins []float64, binWidth float64, freqs []float64, policy domain.BinInterpolation) {
	n := len(bins)
	if n == 0 || binWidth <= 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}

	for i, f := range freqs {
		pos := f / binWidth
		switch policy {
		case domain.InterpolationLinear:
			dst[i] = linearAt(bins, pos)
		case domain.InterpolationLanczos:
			dst[i] = lanczosAt(bins, pos)
		default:
			lo, hi := coveredBins(freqs, i, binWidth, n)
			dst[i] = maxRange(bins, lo, hi)
		}
	}
}

// coveredBins returns the bins between the midpoints to the neighbouring
// display points, or the nearest bin when the points are denser than the bins.
func coveredBins(freqs []float64, i int, binWidth float64, n int) (lo, hi int) {
	f := freqs[i]
	left, right := f, f
	if i > 0 {
		left = 0.5 * (freqs[i-1] + f)
	}
	if i+1 < len(freqs) {
		right = 0.5 * (f + freqs[i+1])
	}
	if left > right {
		left, right = right, left
	}

	lo = int(math.Ceil(left / binWidth))
	hi = int(math.Floor(right / binWidth))
	if hi < lo {
		lo = int(math.Round(f / binWidth))
		hi = lo
	}
	return clampIndex(lo, n), clampIndex(hi, n)
}

func maxRange(bins []float64, lo, hi int) float64 {
	m := bins[lo]
	for k := lo + 1; k <= hi; k++ {
		if bins[k] > m {
			m = bins[k]
		}
	}
	return m
}

func linearAt(bins []float64, pos float64) float64 {
	n := len(bins)
	if pos <= 0 {
		return bins[0]
	}
	if pos >= float64(n-1) {
		return bins[n-1]
	}
	k := int(pos)
	t := pos - float64(k)
	return bins[k]*(1-t) + bins[k+1]*t
}

func lanczosAt(bins []float64, pos float64) float64 {
	n := len(bins)
	if pos <= 0 {
		return bins[0]
	}
	if pos >= float64(n-1) {
		return bins[n-1]
	}

	k0 := int(math.Floor(pos))
	if pos == float64(k0) {
		return bins[k0]
	}
	var sum float64
	for k := k0 - lanczosLobes + 1; k <= k0+lanczosLobes; k++ {
		sum += bins[clampIndex(k, n)] * lanczosKernel(pos-float64(k))
	}
	// The kernel rings below zero around sharp peaks.
	if sum < 0 {
		return 0
	}
	return sum
}

func lanczosKernel(x float64) float64 {
	if x == 0 {
		return 1
	}
	if x <= -lanczosLobes || x >= lanczosLobes {
		return 0
	}
	px := math.Pi * x
	return lanczosLobes * math.Sin(px) * math.Sin(px/lanczosLobes) / (px * px)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
