package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/testutil"
)

var testInfo = domain.StreamInfo{SampleRate: 48000, Channels: 2}

func ramp(from, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(from + i)
	}
	return out
}

func TestBuffer_New_RoundsCapacity(t *testing.T) {
	b := New(1000, testInfo)
	assert.Equal(t, 1024, b.Capacity())
	assert.Equal(t, testInfo, b.Info())
}

func TestBuffer_WriteRead_InOrderAcrossWrap(t *testing.T) {
	b := New(8, testInfo)
	left := make([]float64, 6)
	right := make([]float64, 6)

	require.Equal(t, 6, b.Write(ramp(0, 6), ramp(100, 6)))
	require.Equal(t, 6, b.Read(left, right))
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, left)
	assert.Equal(t, []float64{100, 101, 102, 103, 104, 105}, right)

	// this block wraps around the end of the ring
	require.Equal(t, 6, b.Write(ramp(6, 6), ramp(106, 6)))
	assert.Equal(t, 6, b.Available())
	require.Equal(t, 6, b.Read(left, right))
	assert.Equal(t, []float64{6, 7, 8, 9, 10, 11}, left)
	assert.Equal(t, []float64{106, 107, 108, 109, 110, 111}, right)
	assert.Zero(t, b.Available())
}

func TestBuffer_Write_DropsWhenFull(t *testing.T) {
	b := New(8, testInfo)
	assert.Equal(t, 5, b.Write(ramp(0, 5), nil))
	assert.Equal(t, 3, b.Write(ramp(5, 5), nil))

	c := b.Counters()
	assert.Equal(t, uint64(8), c.Written)
	assert.Equal(t, uint64(2), c.Dropped)

	left := make([]float64, 8)
	b.Read(left, nil)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7}, left)
}

func TestBuffer_Write_MonoCopiesLeftToRight(t *testing.T) {
	b := New(4, testInfo)
	b.Write(ramp(3, 2), nil)
	left := make([]float64, 2)
	right := make([]float64, 2)
	b.Read(left, right)
	assert.Equal(t, left, right)
}

func TestBuffer_Latest_RightAlignedAndReleasesOlder(t *testing.T) {
	b := New(16, testInfo)
	b.Write(ramp(0, 10), nil)

	left := make([]float64, 4)
	right := make([]float64, 4)
	require.Equal(t, 4, b.Latest(left, right))
	assert.Equal(t, []float64{6, 7, 8, 9}, left)
	assert.Equal(t, 4, b.Available(), "the snapshot stays unread")

	// the producer can now fill everything except the snapshot
	assert.Equal(t, 12, b.Write(ramp(10, 20), nil))
}

func TestBuffer_Latest_ZeroFillsWhileStarting(t *testing.T) {
	b := New(16, testInfo)
	b.Write(ramp(1, 2), nil)

	left := []float64{9, 9, 9, 9}
	assert.Equal(t, 2, b.Latest(left, nil))
	assert.Equal(t, []float64{0, 0, 1, 2}, left)
}

func TestBuffer_SetFormat(t *testing.T) {
	b := New(4, testInfo)
	b.SetFormat(domain.StreamInfo{SampleRate: 44100, Channels: 1})
	assert.Equal(t, 44100.0, b.Info().SampleRate)
	assert.Equal(t, 1, b.Info().Channels)
}

func TestBuffer_ConcurrentProducerConsumer(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	const total = 200000
	b := New(1024, testInfo)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sent := 0
		for sent < total {
			n := 97
			if total-sent < n {
				n = total - sent
			}
			sent += b.Write(ramp(sent, n), nil)
		}
	}()

	left := make([]float64, 61)
	expected := 0
	for expected < total {
		n := b.Read(left, nil)
		for i := 0; i < n; i++ {
			if float64(expected) != left[i] {
				t.Fatalf("frame %d: got %v", expected, left[i])
			}
			expected++
		}
	}
	wg.Wait()

	c := b.Counters()
	assert.Equal(t, uint64(total), c.Written)
}

func TestBuffer_Free(t *testing.T) {
	b := New(8, testInfo)
	assert.Equal(t, 8, b.Free())
	b.Write(ramp(0, 3), nil)
	assert.Equal(t, 5, b.Free())
	b.Read(make([]float64, 2), nil)
	assert.Equal(t, 7, b.Free())
}
