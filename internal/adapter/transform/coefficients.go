// Package transform holds the window bookkeeping shared by the transform backends.
package transform

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

// Coefficients is a window of a given length with its derived normalization.
type Coefficients struct {
	Kind   domain.WindowKind
	Values []float64

	// Gain scales raw bins so a full-scale sinusoid centred on a bin reads 1.0.
	Gain float64

	// Scalloping is the amplitude ratio of a sinusoid half way between bins.
	Scalloping float64
}

// NewCoefficients derives the normalization and scalloping ratio of a window.
func NewCoefficients(kind domain.WindowKind, values []float64) Coefficients {
	sum := 0.0
	for _, w := range values {
		sum += w
	}

	c := Coefficients{Kind: kind, Values: values, Gain: 0, Scalloping: 1}
	if sum != 0 {
		c.Gain = 2 / sum
	}
	c.Scalloping = c.Response(0.5)
	return c
}

// Response returns the window's amplitude ratio for a sinusoid offset bins away
// from a bin centre, relative to a centred one.
func (c Coefficients) Response(offset float64) float64 {
	sum := 0.0
	var acc complex128
	n := float64(len(c.Values))
	for i, w := range c.Values {
		sum += w
		acc += complex(w, 0) * cmplx.Exp(complex(0, -2*math.Pi*offset*float64(i)/n))
	}
	if sum == 0 {
		return 1
	}
	return cmplx.Abs(acc) / math.Abs(sum)
}

// ScallopingLoss returns the loss of a peak at the fractional bin position pos.
// Only the distance to the nearest bin centre matters.
func (c Coefficients) ScallopingLoss(pos float64) float64 {
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return c.Scalloping
	}
	return c.Response(math.Abs(pos - math.Round(pos)))
}

// CheckSize validates a transform length.
func CheckSize(n int) error {
	if n < domain.MinWindowSize || n > domain.MaxWindowSize || n&(n-1) != 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidWindowSize, n)
	}
	return nil
}

// Grow returns s resized to n, reallocating only when needed.
func Grow(s []complex128, n int) []complex128 {
	if cap(s) < n {
		return make([]complex128, n)
	}
	return s[:n]
}
