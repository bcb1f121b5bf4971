package spectrum

import (
	"math"
	"sort"
	"strconv"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

// minDecibelSpacing is the smallest vertical gap in pixels between dB grid lines.
const minDecibelSpacing = 18.0

var decibelSteps = []float64{1, 3, 6, 12, 24, 48, 96, 192}

type gridKey struct {
	mapper  Mapper
	width   int
	spacing float64
}

// Grid caches the frequency divisions of the axis. The lists are rebuilt only
// when the mapper, the width or the spacing change.
type Grid struct {
	key         gridKey
	valid       bool
	divisions   []domain.FrequencyGraphDivision
	mirrored    []domain.FrequencyGraphDivision
	generations int
}

// Divisions returns the grid lines for the positive and the mirrored half of the
// axis. mirrored is empty unless the mapper is complex.
func (g *Grid) Divisions(m Mapper, width int, pctForDivision float64) (normal, mirrored []domain.FrequencyGraphDivision) {
	key := gridKey{mapper: m, width: width, spacing: pctForDivision}
	if g.valid && g.key == key {
		return g.divisions, g.mirrored
	}

	g.key = key
	g.valid = true
	g.generations++
	g.divisions = g.divisions[:0]
	g.mirrored = g.mirrored[:0]

	if width <= 1 || !m.Valid() {
		return g.divisions, g.mirrored
	}

	minSpacing := pctForDivision * float64(width)
	g.divisions = buildDivisions(g.divisions, m, width, minSpacing, false)
	if m.Complex {
		g.mirrored = buildDivisions(g.mirrored, m, width, minSpacing, true)
	}
	return g.divisions, g.mirrored
}

// Generations returns how many times the division lists were rebuilt.
func (g *Grid) Generations() int {
	return g.generations
}

// Invalidate forces a rebuild on the next call to Divisions.
func (g *Grid) Invalidate() {
	g.valid = false
}

func buildDivisions(dst []domain.FrequencyGraphDivision, m Mapper, width int, minSpacing float64, mirrored bool) []domain.FrequencyGraphDivision {
	last := float64(width - 1)

	for _, tier := range candidateTiers(m, minSpacing/float64(width)) {
		for _, hz := range tier {
			x := m.FrequencyToFraction(hz, mirrored) * last
			if math.IsNaN(x) || x < 0 || x > last {
				continue
			}
			if tooClose(dst, x, minSpacing) {
				continue
			}
			dst = append(dst, domain.FrequencyGraphDivision{
				Frequency:  hz,
				Coordinate: x,
				Label:      FormatFrequency(hz),
			})
		}
	}

	sort.Slice(dst, func(i, j int) bool { return dst[i].Coordinate < dst[j].Coordinate })
	return dst
}

func tooClose(kept []domain.FrequencyGraphDivision, x, minSpacing float64) bool {
	for _, d := range kept {
		if math.Abs(d.Coordinate-x) < minSpacing {
			return true
		}
	}
	return false
}

// candidateTiers returns candidate frequencies ordered by importance. Earlier
// tiers claim their positions first so round numbers survive crowding.
func candidateTiers(m Mapper, pct float64) [][]float64 {
	nyq := m.nyquist()

	if m.Scaling == domain.ScalingLogarithmic {
		multiples := [][]float64{{1}, {2, 5}, {3, 4, 6, 7, 8, 9}}
		tiers := make([][]float64, len(multiples))
		start := math.Pow(10, math.Floor(math.Log10(m.minLog())))
		for decade := start; decade <= nyq; decade *= 10 {
			for t, ks := range multiples {
				for _, k := range ks {
					if f := k * decade; f <= nyq {
						tiers[t] = append(tiers[t], f)
					}
				}
			}
		}
		return tiers
	}

	span := (m.ViewRight - m.ViewLeft) * nyq
	if m.Complex {
		span *= 2
	}
	step := niceStep(span * pct)
	var tier []float64
	for i := 0; float64(i)*step <= nyq; i++ {
		tier = append(tier, float64(i)*step)
	}
	return [][]float64{tier}
}

// niceStep rounds x up to the next 1-2-5 step.
func niceStep(x float64) float64 {
	if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(x)))
	for _, k := range []float64{1, 2, 5, 10} {
		if k*mag >= x {
			return k * mag
		}
	}
	return 10 * mag
}

// DecibelDivisions returns horizontal grid lines between low and high for a
// surface of the given height.
func DecibelDivisions(low, high float64, height int) []domain.DecibelDivision {
	if height <= 0 || !(high > low) {
		return nil
	}
	span := high - low
	step := decibelSteps[len(decibelSteps)-1]
	for _, s := range decibelSteps {
		if s/span*float64(height) >= minDecibelSpacing {
			step = s
			break
		}
	}

	var out []domain.DecibelDivision
	first := math.Ceil(low / step)
	for i := 0.0; (first+i)*step <= high; i++ {
		db := (first + i) * step
		out = append(out, domain.DecibelDivision{
			Decibels:   db,
			Coordinate: (1 - (db-low)/span) * float64(height),
			Label:      strconv.FormatFloat(db, 'f', -1, 64) + " dB",
		})
	}
	return out
}

// FormatFrequency renders a grid label such as "50", "1k" or "2.5k".
func FormatFrequency(hz float64) string {
	if hz >= 1000 {
		return strconv.FormatFloat(hz/1000, 'f', -1, 64) + "k"
	}
	return strconv.FormatFloat(hz, 'f', -1, 64)
}
