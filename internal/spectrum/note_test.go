package spectrum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestNote(t *testing.T) {
	cases := []struct {
		hz     float64
		name   string
		octave int
	}{
		{440, "A", 4},
		{261.6256, "C", 4},
		{246.9417, "B", 3},
		{523.2511, "C", 5},
		{27.5, "A", 0},
		{4186.009, "C", 8},
	}
	for _, c := range cases {
		note, ok := NearestNote(c.hz, 440)
		require.True(t, ok)
		assert.Equal(t, c.name, note.Name, "%v Hz", c.hz)
		assert.Equal(t, c.octave, note.Octave, "%v Hz", c.hz)
		assert.InDelta(t, 0, note.Cents, 0.01, "%v Hz", c.hz)
	}
}

func TestNearestNote_Cents(t *testing.T) {
	note, ok := NearestNote(440*math.Pow(2, 0.3/12), 440)
	require.True(t, ok)
	assert.Equal(t, "A", note.Name)
	assert.InDelta(t, 30, note.Cents, 1e-9)
	assert.Equal(t, "A4 +30.0c", note.String())

	note, _ = NearestNote(440*math.Pow(2, -0.4/12), 440)
	assert.InDelta(t, -40, note.Cents, 1e-9)
}

func TestNearestNote_ReferenceTuning(t *testing.T) {
	note, ok := NearestNote(432, 432)
	require.True(t, ok)
	assert.Equal(t, "A", note.Name)
	assert.InDelta(t, 0, note.Cents, 1e-9)

	note, _ = NearestNote(432, 440)
	assert.Equal(t, "A", note.Name)
	assert.Less(t, note.Cents, -30.0)
}

func TestNearestNote_Invalid(t *testing.T) {
	for _, hz := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		_, ok := NearestNote(hz, 440)
		assert.False(t, ok, "%v", hz)
	}
	_, ok := NearestNote(440, 0)
	assert.False(t, ok)
}
