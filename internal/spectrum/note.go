package spectrum

import (
	"fmt"
	"math"
)

var noteNames = [12]string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#"}

// Note is the nearest equal-tempered pitch to a frequency.
type Note struct {
	Name   string
	Octave int
	Cents  float64
}

// String renders the note as e.g. "A4 +3.2c".
func (n Note) String() string {
	return fmt.Sprintf("%s%d %+.1fc", n.Name, n.Octave, n.Cents)
}

// NearestNote returns the pitch closest to hz given the tuning of A4.
// ok is false for non-positive or non-finite frequencies.
func NearestNote(hz, referenceA4 float64) (note Note, ok bool) {
	if !(hz > 0) || math.IsInf(hz, 0) || !(referenceA4 > 0) {
		return Note{}, false
	}
	semitones := 12 * math.Log2(hz/referenceA4)
	nearest := math.Round(semitones)

	idx := int(nearest) % 12
	if idx < 0 {
		idx += 12
	}
	// Octave numbers change at C, three semitones above A.
	octave := 4 + int(math.Floor((nearest+9)/12))

	return Note{
		Name:   noteNames[idx],
		Octave: octave,
		Cents:  100 * (semitones - nearest),
	}, true
}
