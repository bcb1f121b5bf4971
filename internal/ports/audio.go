// Package ports define interfaces for dependency inversion.
// These interfaces keep the analyzer core independent of the audio source,
// the transform kernel, the drawing backend and the persistence mechanism.
package ports

import (
	"context"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
)

// StreamCounters are monotonically increasing producer statistics.
type StreamCounters struct {
	Written uint64 // frames accepted from the producer
	Dropped uint64 // frames discarded because the consumer fell behind
}

// AudioStream is the consumer side of a single-producer single-consumer sample stream.
//
// The producer (an audio callback, a file pump or a generator) writes frames on its own
// goroutine. All methods below are called from the analysis goroutine only; they never
// block and never allocate.
type AudioStream interface {
	// Info returns the stream format. It may change when the producer is reconfigured;
	// the analyzer re-derives its mapping on the next tick when it does.
	Info() domain.StreamInfo

	// Available returns the number of unread frames.
	Available() int

	// Read consumes up to len(left) frames in order and returns how many were copied.
	// right may be nil when only the left channel is needed.
	Read(left, right []float64) int

	// Latest copies the newest len(left) frames without waiting for new data,
	// consuming everything older. It returns the number of frames copied, which is
	// smaller than len(left) while the stream has not produced enough unread frames.
	// The copied frames are right-aligned in the destination and the rest is zeroed.
	Latest(left, right []float64) int

	// Counters returns the producer statistics.
	Counters() StreamCounters
}

// FrameWriter is the producer side of an audio stream.
type FrameWriter interface {
	// Write publishes one block of frames and returns how many were accepted.
	// Frames that do not fit are dropped and counted.
	Write(left, right []float32) int

	// SetFormat announces a new stream format.
	SetFormat(info domain.StreamInfo)
}

// AudioFile is a finite audio source decoded as fast as it is read.
type AudioFile interface {
	Info() domain.StreamInfo

	// Title is a short label for captions.
	Title() string

	// Frames returns the length announced by the file, which may be zero when unknown.
	Frames() int

	// ReadFrames decodes up to len(left) frames and returns io.EOF at the end.
	ReadFrames(left, right []float32) (int, error)

	Close() error
}

// BufferedStream exposes both ends of a sample stream, for offline runs that
// produce and consume on the same goroutine.
type BufferedStream interface {
	AudioStream
	FrameWriter
}

// StreamingFile is an audio file that can feed a live stream.
type StreamingFile interface {
	AudioFile

	// Pump writes the file into w until it ends or ctx is cancelled. With realtime
	// set, blocks are paced at the file's sample rate.
	Pump(ctx context.Context, w FrameWriter, blockSize int, realtime bool) error
}

// Generator is a paced producer bound to one stream.
type Generator interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
}
