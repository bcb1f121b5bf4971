// Package transformtest checks transform backends against the behaviour the
// analyzer relies on.
package transformtest

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

// Factory builds a backend under test.
type Factory func(size int, kind domain.WindowKind) (ports.TransformBackend, error)

// Sine returns n samples of a sinusoid completing cycles periods.
func Sine(n int, cycles, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*cycles*float64(i)/float64(n))
	}
	return out
}

// Run exercises a backend.
func Run(t *testing.T, newBackend Factory) {
	t.Run("FullScaleSineReadsUnity", func(t *testing.T) {
		for _, kind := range []domain.WindowKind{
			domain.WindowRectangular, domain.WindowHann, domain.WindowHamming,
			domain.WindowBlackman, domain.WindowFlatTop,
		} {
			b, err := newBackend(1024, kind)
			require.NoError(t, err)
			bins := b.Forward(nil, Sine(1024, 64, 1))
			require.Len(t, bins, 513)
			assert.InDelta(t, 1.0, cmplx.Abs(bins[64]), 0.01, "window %s", kind)
		}
	})

	t.Run("DCReadsUnity", func(t *testing.T) {
		b, err := newBackend(256, domain.WindowHann)
		require.NoError(t, err)
		ones := make([]float64, 256)
		for i := range ones {
			ones[i] = 1
		}
		bins := b.Forward(nil, ones)
		assert.InDelta(t, 1.0, cmplx.Abs(bins[0]), 1e-9)
	})

	t.Run("InputIsNotModified", func(t *testing.T) {
		b, err := newBackend(128, domain.WindowBlackman)
		require.NoError(t, err)
		in := Sine(128, 5, 0.5)
		before := append([]float64(nil), in...)
		b.Forward(nil, in)
		b.ForwardComplex(nil, in, in)
		assert.Equal(t, before, in)
	})

	t.Run("ReusesDestination", func(t *testing.T) {
		b, err := newBackend(64, domain.WindowHann)
		require.NoError(t, err)
		dst := make([]complex128, 0, 64)
		out := b.Forward(dst, Sine(64, 3, 1))
		require.Len(t, out, 33)
		assert.Same(t, &dst[:1][0], &out[0])
	})

	t.Run("ComplexRealSignalIsSymmetric", func(t *testing.T) {
		b, err := newBackend(512, domain.WindowHann)
		require.NoError(t, err)
		bins := b.ForwardComplex(nil, Sine(512, 32, 1), make([]float64, 512))
		require.Len(t, bins, 512)
		assert.InDelta(t, 1.0, cmplx.Abs(bins[32]), 0.01)
		assert.InDelta(t, 1.0, cmplx.Abs(bins[512-32]), 0.01)
	})

	t.Run("ComplexQuadratureIsOneSided", func(t *testing.T) {
		b, err := newBackend(512, domain.WindowHann)
		require.NoError(t, err)
		re := make([]float64, 512)
		im := make([]float64, 512)
		for i := range re {
			phase := 2 * math.Pi * 40 * float64(i) / 512
			re[i] = math.Cos(phase)
			im[i] = math.Sin(phase)
		}
		bins := b.ForwardComplex(nil, re, im)
		assert.Greater(t, cmplx.Abs(bins[40]), 1.0)
		assert.Less(t, cmplx.Abs(bins[512-40]), 1e-3)
	})

	t.Run("Scalloping", func(t *testing.T) {
		b, err := newBackend(1024, domain.WindowRectangular)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, b.ScallopingLoss(10), 1e-12)
		assert.InDelta(t, 2/math.Pi, b.ScallopingLoss(10.5), 1e-3)

		require.NoError(t, b.SetWindow(domain.WindowHann))
		assert.InDelta(t, 1.0, b.ScallopingLoss(100), 1e-12)
		assert.InDelta(t, 0.8488, b.ScallopingLoss(100.5), 5e-3)
		assert.InDelta(t, b.ScallopingLoss(100.5), b.ScallopingLoss(99.5), 1e-12)
		quarter := b.ScallopingLoss(100.25)
		assert.Greater(t, quarter, b.ScallopingLoss(100.5))
		assert.Less(t, quarter, 1.0)

		// a sinusoid off a bin centre loses exactly that ratio
		for _, pos := range []float64{100, 100.25, 100.5} {
			bins := b.Forward(nil, Sine(1024, pos, 1))
			peak := math.Max(cmplx.Abs(bins[100]), cmplx.Abs(bins[101]))
			assert.InDelta(t, b.ScallopingLoss(pos), peak, 5e-3, "bin %v", pos)
		}
	})

	t.Run("Resize", func(t *testing.T) {
		b, err := newBackend(256, domain.WindowHann)
		require.NoError(t, err)
		require.NoError(t, b.Resize(2048))
		assert.Equal(t, 2048, b.Size())
		bins := b.Forward(nil, Sine(2048, 100, 1))
		assert.Len(t, bins, 1025)
		assert.InDelta(t, 1.0, cmplx.Abs(bins[100]), 0.01)

		assert.ErrorIs(t, b.Resize(1000), domain.ErrInvalidWindowSize)
		assert.ErrorIs(t, b.Resize(8), domain.ErrInvalidWindowSize)
		assert.Equal(t, 2048, b.Size())
	})

	t.Run("UnknownWindow", func(t *testing.T) {
		b, err := newBackend(256, domain.WindowHann)
		require.NoError(t, err)
		assert.ErrorIs(t, b.SetWindow("kaiser"), domain.ErrUnknownWindow)

		_, err = newBackend(256, "kaiser")
		assert.ErrorIs(t, err, domain.ErrUnknownWindow)
	})

	t.Run("Identity", func(t *testing.T) {
		b, err := newBackend(256, domain.WindowHann)
		require.NoError(t, err)
		assert.NotEmpty(t, b.Name())
		assert.Equal(t, domain.TransformDiscrete, b.Kind())
	})
}
