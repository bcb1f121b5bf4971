package spectrum

import (
	"math"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

// LineUpdate carries the per-graph parameters of one update.
type LineUpdate struct {
	DecayDbPerSec float64
	Dt            float64 // seconds since the previous update of this graph
	LowDb         float64
	HighDb        float64
	Interpolation domain.BinInterpolation
}

// DecayFactor converts a dB-per-second decay over dt seconds to a linear multiplier.
func DecayFactor(decayDbPerSec, dt float64) float64 {
	if decayDbPerSec <= 0 || dt <= 0 {
		return 1
	}
	return math.Pow(10, -decayDbPerSec*dt/20)
}

// NormalizeDb maps a linear amplitude to [0, 1] between low and high dB.
func NormalizeDb(amplitude, low, high float64) float64 {
	if amplitude <= 0 {
		return 0
	}
	f := (20*math.Log10(amplitude) - low) / (high - low)
	return clamp01(f)
}

type heldLine struct {
	left, right []float64
}

// LineBuffer holds the decayed line graphs and the table of frequencies the
// display points sit at. Results and frequencies always have the same length.
type LineBuffer struct {
	mapper      Mapper
	points      int
	frequencies []float64
	mirrored    []bool

	results [][]domain.LineGraphResult
	held    []heldLine
	scratch []float64
}

// NewLineBuffer creates a buffer for the given number of line graphs.
func NewLineBuffer(graphs int) *LineBuffer {
	return &LineBuffer{
		results: make([][]domain.LineGraphResult, graphs),
		held:    make([]heldLine, graphs),
	}
}

// Configure re-derives the mapped frequencies for a new mapper or point count.
// Held state is reset when anything changed. It reports whether it did.
func (b *LineBuffer) Configure(m Mapper, points int) bool {
	if points < 0 {
		points = 0
	}
	if m == b.mapper && points == b.points && len(b.frequencies) == points {
		return false
	}
	b.mapper = m
	b.points = points

	b.frequencies = make([]float64, points)
	b.mirrored = make([]bool, points)
	b.scratch = make([]float64, points)
	for i := 0; i < points; i++ {
		fraction := 0.0
		if points > 1 {
			fraction = float64(i) / float64(points-1)
		}
		hz, mirrored := m.FractionToFrequency(fraction)
		if mirrored {
			hz = m.SampleRate - hz
		}
		b.frequencies[i] = hz
		b.mirrored[i] = mirrored
	}

	for g := range b.results {
		b.results[g] = make([]domain.LineGraphResult, points)
		b.held[g] = heldLine{left: make([]float64, points), right: make([]float64, points)}
	}
	return true
}

// Points returns the number of display points.
func (b *LineBuffer) Points() int {
	return b.points
}

// Mapper returns the mapper the frequency table was derived from.
func (b *LineBuffer) Mapper() Mapper {
	return b.mapper
}

// Frequencies returns the frequency in Hz of every display point. In complex
// mode mirrored points hold sampleRate minus the folded frequency.
func (b *LineBuffer) Frequencies() []float64 {
	return b.frequencies
}

// Mirrored reports whether display point i shows the mirrored spectrum.
func (b *LineBuffer) Mirrored(i int) bool {
	return b.mirrored[i]
}

// Results returns the normalized magnitudes of a concrete graph.
func (b *LineBuffer) Results(g domain.LineGraphID) []domain.LineGraphResult {
	if int(g) < 0 || int(g) >= len(b.results) {
		return nil
	}
	return b.results[g]
}

// Graphs returns the number of graphs held.
func (b *LineBuffer) Graphs() int {
	return len(b.results)
}

// Update folds one spectrum into graph g with the peak-hold-with-decay filter.
func (b *LineBuffer) Update(g domain.LineGraphID, s *Spectrum, u LineUpdate) {
	if int(g) < 0 || int(g) >= len(b.results) || b.points == 0 || s == nil {
		return
	}
	decay := DecayFactor(u.DecayDbPerSec, u.Dt)
	held := b.held[g]
	out := b.results[g]

	Resample(b.scratch, s.Left, s.BinWidth(), b.frequencies, u.Interpolation)
	for i, v := range b.scratch {
		held.left[i] = math.Max(v, held.left[i]*decay)
		out[i].LeftMagnitude = float32(NormalizeDb(held.left[i], u.LowDb, u.HighDb))
	}

	if s.Right == nil {
		for i := range out {
			held.right[i] = 0
			out[i].RightMagnitude = 0
		}
		return
	}

	Resample(b.scratch, s.Right, s.BinWidth(), b.frequencies, u.Interpolation)
	for i, v := range b.scratch {
		held.right[i] = math.Max(v, held.right[i]*decay)
		if s.RightNormalized {
			out[i].RightMagnitude = float32(clamp01(held.right[i]))
		} else {
			out[i].RightMagnitude = float32(NormalizeDb(held.right[i], u.LowDb, u.HighDb))
		}
	}
}

// Reset clears the held state of every graph.
func (b *LineBuffer) Reset() {
	for g := range b.results {
		clear(b.results[g])
		clear(b.held[g].left)
		clear(b.held[g].right)
	}
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
