package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// WAV16 encodes interleaved 16-bit PCM samples as a canonical WAV file.
func WAV16(sampleRate, channels int, samples []int16) []byte {
	var buf bytes.Buffer
	dataLen := uint32(len(samples) * 2)

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataLen)
	_ = binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}

// SineWAV16 returns a stereo WAV holding a sine of the given frequency and amplitude.
func SineWAV16(sampleRate, frames int, frequency, amplitude float64) []byte {
	samples := make([]int16, frames*2)
	for i := 0; i < frames; i++ {
		v := int16(math.Round(amplitude * 32767 * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate))))
		samples[2*i] = v
		samples[2*i+1] = v
	}
	return WAV16(sampleRate, 2, samples)
}

// WriteTempFile writes data to name inside a test temp directory and returns the path.
func WriteTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
