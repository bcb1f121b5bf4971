// Package ring provides a lock-free single-producer single-consumer audio stream.
//
// The producer copies frames into the ring and then publishes the new write
// counter with an atomic store; the consumer loads that counter before reading
// the frames it covers. The consumer publishes its read counter the same way so
// the producer never overwrites frames that are still being read.
package ring

import (
	"math"
	"sync/atomic"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

// Buffer is a stereo SPSC ring. Exactly one goroutine may call the producer
// methods (Write, SetFormat) and exactly one the consumer methods.
type Buffer struct {
	left, right []float32
	mask        uint64

	written atomic.Uint64 // frames published by the producer
	read    atomic.Uint64 // frames released by the consumer
	dropped atomic.Uint64

	sampleRate atomic.Uint64 // math.Float64bits
	channels   atomic.Int32
}

// New creates a ring holding at least capacity frames, rounded up to a power of two.
func New(capacity int, info domain.StreamInfo) *Buffer {
	size := 1
	for size < capacity {
		size <<= 1
	}
	b := &Buffer{
		left:  make([]float32, size),
		right: make([]float32, size),
		mask:  uint64(size - 1),
	}
	b.SetFormat(info)
	return b
}

// Capacity returns the number of frames the ring holds.
func (b *Buffer) Capacity() int {
	return len(b.left)
}

// SetFormat announces the stream format.
func (b *Buffer) SetFormat(info domain.StreamInfo) {
	b.sampleRate.Store(math.Float64bits(info.SampleRate))
	b.channels.Store(int32(info.Channels))
}

// Info returns the stream format.
func (b *Buffer) Info() domain.StreamInfo {
	return domain.StreamInfo{
		SampleRate: math.Float64frombits(b.sampleRate.Load()),
		Channels:   int(b.channels.Load()),
	}
}

// Write copies one block into the ring. right may be nil for mono input.
// Frames that do not fit in the free space are dropped.
func (b *Buffer) Write(left, right []float32) int {
	w := b.written.Load()
	r := b.read.Load()
	free := uint64(len(b.left)) - (w - r)

	n := uint64(len(left))
	if n > free {
		b.dropped.Add(n - free)
		n = free
	}

	for i := uint64(0); i < n; i++ {
		slot := (w + i) & b.mask
		b.left[slot] = left[i]
		if right != nil {
			b.right[slot] = right[i]
		} else {
			b.right[slot] = left[i]
		}
	}
	b.written.Store(w + n)
	return int(n)
}

// Free returns the number of frames the producer can write without dropping.
func (b *Buffer) Free() int {
	return len(b.left) - int(b.written.Load()-b.read.Load())
}

// Available returns the number of unread frames.
func (b *Buffer) Available() int {
	return int(b.written.Load() - b.read.Load())
}

// Read consumes up to len(left) frames in order.
func (b *Buffer) Read(left, right []float64) int {
	w := b.written.Load()
	r := b.read.Load()

	n := w - r
	if uint64(len(left)) < n {
		n = uint64(len(left))
	}
	b.copyOut(left, right, r, n)
	b.read.Store(r + n)
	return int(n)
}

// Latest copies the newest len(left) frames, right-aligned, and releases
// everything older. The copied frames stay unread so the producer keeps
// clear of them.
func (b *Buffer) Latest(left, right []float64) int {
	w := b.written.Load()
	r := b.read.Load()

	want := uint64(len(left))
	if limit := uint64(len(b.left)); want > limit {
		want = limit
	}
	if w >= want && w-want > r {
		r = w - want
		b.read.Store(r)
	}

	n := w - r
	if n > want {
		n = want
	}
	offset := uint64(len(left)) - n
	for i := uint64(0); i < offset; i++ {
		left[i] = 0
		if right != nil {
			right[i] = 0
		}
	}

	var rightDst []float64
	if right != nil {
		rightDst = right[offset:]
	}
	b.copyOut(left[offset:], rightDst, w-n, n)
	return int(n)
}

func (b *Buffer) copyOut(left, right []float64, from, n uint64) {
	for i := uint64(0); i < n; i++ {
		slot := (from + i) & b.mask
		left[i] = float64(b.left[slot])
		if right != nil {
			right[i] = float64(b.right[slot])
		}
	}
}

// Counters returns the producer statistics.
func (b *Buffer) Counters() ports.StreamCounters {
	return ports.StreamCounters{
		Written: b.written.Load(),
		Dropped: b.dropped.Load(),
	}
}

var (
	_ ports.AudioStream = (*Buffer)(nil)
	_ ports.FrameWriter = (*Buffer)(nil)
)
