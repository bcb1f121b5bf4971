package spectrum

import (
	"math"
	"math/cmplx"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

// Peak search constants.
const (
	// NearbyFraction is the half width of the search window as a fraction of the sequence.
	NearbyFraction = 0.03

	deviationPrecision = 0.001
	interpolationError = 0.01

	lineScallopEpsilon      = 1e-3
	transformScallopEpsilon = 2e-3

	decibelSanityLimit = 1000.0
)

// Scannable is a magnitude sequence the peak search runs over.
type Scannable interface {
	// Len returns the number of entries.
	Len() int
	// Magnitude returns a value whose ordering matches the signal level at i.
	Magnitude(i int) float64
	// Level returns the level at i in dB, used for the parabolic fit.
	Level(i int) float64
	// Frequency maps a fractional index to Hz.
	Frequency(pos float64) float64
}

// lineSequence scans a decayed display graph.
type lineSequence struct {
	results   []domain.LineGraphResult
	freqs     []float64
	low, high float64
}

func (s *lineSequence) Len() int                { return len(s.results) }
func (s *lineSequence) Magnitude(i int) float64 { return float64(s.results[i].LeftMagnitude) }

func (s *lineSequence) Level(i int) float64 {
	return s.low + float64(s.results[i].LeftMagnitude)*(s.high-s.low)
}

func (s *lineSequence) Frequency(pos float64) float64 {
	n := len(s.freqs)
	if pos <= 0 {
		return s.freqs[0]
	}
	if pos >= float64(n-1) {
		return s.freqs[n-1]
	}
	k := int(pos)
	t := pos - float64(k)
	return s.freqs[k]*(1-t) + s.freqs[k+1]*t
}

// transformSequence scans the instantaneous transform bins.
type transformSequence struct {
	bins       []complex128
	sampleRate float64
	size       int
}

func (s *transformSequence) Len() int { return len(s.bins) }

func (s *transformSequence) Magnitude(i int) float64 {
	b := s.bins[i]
	return real(b)*real(b) + imag(b)*imag(b)
}

func (s *transformSequence) Level(i int) float64 {
	return 20 * math.Log10(cmplx.Abs(s.bins[i]))
}

func (s *transformSequence) Frequency(pos float64) float64 {
	return pos * s.sampleRate / float64(s.size)
}

// FindMaximum returns the index of the largest magnitude in [lo, hi). When the
// maximum sits on a window edge that is not a sequence edge, the search walks
// outward while the neighbour is not smaller. It returns -1 for an empty window.
func FindMaximum(s Scannable, lo, hi int) int {
	if hi <= lo {
		return -1
	}
	best := lo
	for i := lo + 1; i < hi; i++ {
		if s.Magnitude(i) > s.Magnitude(best) {
			best = i
		}
	}

	// a one-entry window walks left only, like a maximum on the left edge
	n := s.Len()
	if best == lo && lo > 0 {
		for best > 0 && s.Magnitude(best-1) >= s.Magnitude(best) {
			best--
		}
	} else if best == hi-1 && hi < n {
		for best+1 < n && s.Magnitude(best+1) >= s.Magnitude(best) {
			best++
		}
	}
	return best
}

// ParabolicFit fits a parabola through the dB levels around k and returns the
// sub-bin offset and the refined level. Edges and degenerate fits give a zero offset.
func ParabolicFit(s Scannable, k int) (phi, level float64) {
	beta := s.Level(k)
	if k <= 0 || k >= s.Len()-1 {
		return 0, beta
	}
	alpha, gamma := s.Level(k-1), s.Level(k+1)
	den := alpha - 2*beta + gamma
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0, beta
	}
	phi = 0.5 * (alpha - gamma) / den
	return phi, beta - 0.25*(alpha-gamma)*phi
}

// TransformInfo is the part of a transform backend the tracker needs.
type TransformInfo interface {
	Kind() domain.TransformKind
	ScallopingLoss(pos float64) float64
}

// PeakQuery describes one peak search.
type PeakQuery struct {
	Cursor        float64 // horizontal fraction of the display, 0..1
	Graph         domain.LineGraphID
	Width, Height int
	LowDb, HighDb float64
	Interpolation domain.BinInterpolation
}

type peakPath int

const (
	pathLine peakPath = iota + 1
	pathTransform
)

type resolvedBin struct {
	path peakPath
	bin  int
}

// PeakTracker finds and refines the spectral peak nearest to a cursor.
//
// The scalloping loss is recomputed only when the resolved bin changes, and the
// refreshed value is used from the following search on.
type PeakTracker struct {
	lastResolvedBin resolvedBin
	scallopingLoss  float64
	moved           bool
	recomputations  int

	line      lineSequence
	transform transformSequence
}

// NewPeakTracker creates a tracker with an empty scalloping cache.
func NewPeakTracker() *PeakTracker {
	return &PeakTracker{
		lastResolvedBin: resolvedBin{bin: -1},
		scallopingLoss:  1,
	}
}

// UsesTransform reports whether a query for graph reads the raw transform
// rather than a display graph.
func UsesTransform(graph domain.LineGraphID, info TransformInfo, s *Spectrum) bool {
	return graph == domain.GraphTransform &&
		info != nil && info.Kind() == domain.TransformDiscrete &&
		s != nil && !s.TwoSided && len(s.Raw) > 0
}

// FindPeak runs the search for q. lines provides the display graphs and the
// mapped frequencies, s the latest transform. Unresolvable queries return
// domain.UnavailablePeak().
func (t *PeakTracker) FindPeak(q PeakQuery, lines *LineBuffer, s *Spectrum, info TransformInfo) domain.PeakEstimate {
	t.moved = false
	if q.Graph == domain.GraphNone || q.Width <= 0 || q.Height <= 0 || lines == nil {
		return domain.UnavailablePeak()
	}
	cursor := clamp01(q.Cursor)

	if UsesTransform(q.Graph, info, s) {
		return t.findInTransform(q, cursor, lines.Mapper(), s, info)
	}

	graph := q.Graph
	if graph == domain.GraphTransform {
		graph = domain.GraphMain
	}
	return t.findInLine(q, cursor, graph, lines, s, info)
}

// Moved reports whether the last FindPeak resolved a different bin than the one before.
func (t *PeakTracker) Moved() bool {
	return t.moved
}

// ScallopingRecomputations returns how often the scalloping loss was refreshed.
func (t *PeakTracker) ScallopingRecomputations() int {
	return t.recomputations
}

func (t *PeakTracker) findInLine(q PeakQuery, cursor float64, graph domain.LineGraphID, lines *LineBuffer, s *Spectrum, info TransformInfo) domain.PeakEstimate {
	results := lines.Results(graph)
	n := len(results)
	if n == 0 {
		return domain.UnavailablePeak()
	}

	t.line = lineSequence{results: results, freqs: lines.Frequencies(), low: q.LowDb, high: q.HighDb}
	pivot := int(math.Round(float64(n) * cursor))
	span := int(math.Round(float64(n) * NearbyFraction))
	lo, hi := window(pivot-span, pivot+span, n)

	peak := FindMaximum(&t.line, lo, hi)
	phi, level := ParabolicFit(&t.line, peak)

	m := lines.Mapper()
	freq := t.line.Frequency(float64(peak) + phi)

	adjacent := peak + 1
	if adjacent >= n {
		adjacent = peak - 1
	}
	deviation := 0.0
	if adjacent >= 0 {
		deviation = 0.5 * math.Abs(t.line.freqs[adjacent]-t.line.freqs[peak])
	}
	if info != nil && info.Kind() == domain.TransformDiscrete && q.Interpolation != domain.InterpolationLanczos && s != nil && s.FFTSize > 0 {
		deviation = math.Max(deviation, 0.5*s.SampleRate/float64(s.FFTSize))
	}

	key, pos := resolvedBin{path: pathLine, bin: peak}, math.NaN()
	if s != nil && s.FFTSize > 0 && s.SampleRate > 0 {
		pos = freq * float64(s.FFTSize) / s.SampleRate
		key.bin = int(math.Round(pos))
	}
	loss := t.cachedScallopingLoss(key, pos, info)
	scallop := 20 * math.Log10(loss-lineScallopEpsilon)

	return t.finish(q, m, freq, level, deviation, scallop)
}

func (t *PeakTracker) findInTransform(q PeakQuery, cursor float64, m Mapper, s *Spectrum, info TransformInfo) domain.PeakEstimate {
	n := len(s.Raw)
	t.transform = transformSequence{bins: s.Raw, sampleRate: s.SampleRate, size: s.FFTSize}

	toBin := func(fraction float64) int {
		hz := m.TwoSided(clamp01(fraction))
		return int(math.Round(float64(s.FFTSize) * hz / s.SampleRate))
	}
	lo, hi := window(toBin(cursor-NearbyFraction), toBin(cursor+NearbyFraction), n)

	peak := FindMaximum(&t.transform, lo, hi)
	phi, level := ParabolicFit(&t.transform, peak)

	peakFraction := 2 * (float64(peak) + phi) / float64(s.FFTSize)
	freq := 0.5 * peakFraction * s.SampleRate

	normalizedDeviation := (1 - peakFraction) / float64(s.FFTSize)
	deviation := 2*interpolationError*normalizedDeviation*s.SampleRate + deviationPrecision

	loss := t.cachedScallopingLoss(resolvedBin{path: pathTransform, bin: peak}, float64(peak)+phi, info)
	adjusted := 1 - ((1-loss)*interpolationError + normalizedDeviation)
	scallop := 20 * math.Log10(adjusted-transformScallopEpsilon)

	return t.finish(q, m, freq, level, deviation, scallop)
}

// cachedScallopingLoss returns the loss computed for the previously resolved bin
// and refreshes the cache from the fractional transform bin pos when bin differs
// from it. A NaN pos means the transform geometry is unknown.
func (t *PeakTracker) cachedScallopingLoss(bin resolvedBin, pos float64, info TransformInfo) float64 {
	loss := t.scallopingLoss
	if bin != t.lastResolvedBin {
		t.moved = true
		t.lastResolvedBin = bin
		if info != nil {
			t.scallopingLoss = info.ScallopingLoss(pos)
			t.recomputations++
		}
	}
	return loss
}

func (t *PeakTracker) finish(q PeakQuery, m Mapper, freq, level, deviation, scallop float64) domain.PeakEstimate {
	mirrored := false
	if freq > m.SampleRate*0.5 {
		freq = m.SampleRate - freq
		mirrored = true
	}

	switch {
	case level > decibelSanityLimit:
		level = math.Inf(1)
	case level < -decibelSanityLimit:
		level = math.Inf(-1)
	}

	fracY := clamp01((level - q.LowDb) / (q.HighDb - q.LowDb))
	if math.IsInf(level, 1) {
		fracY = 1
	}

	return domain.PeakEstimate{
		FrequencyHz:      freq,
		IsMirrored:       mirrored,
		AmplitudeDb:      level,
		DeviationHz:      deviation,
		ScallopingLossDb: scallop,
		ScreenX:          m.FrequencyToFraction(freq, mirrored) * float64(q.Width-1),
		ScreenY:          float64(q.Height) - fracY*float64(q.Height),
	}
}

// window clamps [lo, hi) to [0, n) and widens an empty window to one entry.
func window(lo, hi, n int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if hi <= lo {
		lo = clampIndex(lo, n)
		hi = lo + 1
	}
	return lo, hi
}

// CursorAt returns the frequency and level under the pointer.
func CursorAt(m Mapper, c domain.Cursor, low, high float64) domain.CursorReadout {
	hz, mirrored := m.FractionToFrequency(clamp01(c.X))
	return domain.CursorReadout{
		FrequencyHz: hz,
		IsMirrored:  mirrored,
		Decibels:    high + (low-high)*clamp01(c.Y),
	}
}
