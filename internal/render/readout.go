package render

import (
	"fmt"
	"math"
	"strconv"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/spectrum"
)

// mirroredPrefix marks frequencies above Nyquist in complex analysis.
const mirroredPrefix = "-i*"

// ReadoutLines formats the value under the cursor and the tracked peak, one
// overlay line each. The peak lines are left out while no peak is resolved.
func ReadoutLines(r domain.CursorReadout, p domain.PeakEstimate, referenceA4 float64) []string {
	lines := []string{
		"+x:  " + hz(r.FrequencyHz, r.IsMirrored),
		"+y:  " + decimal(r.Decibels, 5) + " dB",
	}
	if !p.Available() {
		return lines
	}
	lines = append(lines,
		"^x:  "+hz(p.FrequencyHz, p.IsMirrored),
		"^~:  "+decimal(p.DeviationHz, 3)+" Hz sd",
		"^y:  "+decimal(p.AmplitudeDb, 5)+" dB",
		"^SL: +"+decimal(p.ScallopingLossDb, 3)+" dB sd",
	)
	if note, ok := spectrum.NearestNote(p.FrequencyHz, referenceA4); ok {
		lines = append(lines, "^n:  "+note.String())
	}
	return lines
}

// DiagnosticLines formats the stream and timing counters.
func DiagnosticLines(d domain.Diagnostics) []string {
	return []string{
		fmt.Sprintf("tick %d  %.2f ms", d.Ticks, float64(d.TickDuration.Microseconds())/1000),
		fmt.Sprintf("frames %d  dropped %d", d.FramesWritten, d.FramesDropped),
		"frames/update " + decimal(d.FramesPerUpdate, 2),
	}
}

func hz(v float64, mirrored bool) string {
	s := decimal(v, 5) + " Hz"
	if mirrored {
		s = mirroredPrefix + s
	}
	return s
}

// decimal prints "-" for values that carry no information.
func decimal(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
