// Package mock provides a synthetic audio source.
// It feeds sine tones into an audio stream so the analyzer can run without
// a sound card or a file, and so services can be tested deterministically.
package mock

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

// Tone is one sinusoid of the generated signal.
type Tone struct {
	Frequency float64 // Hz
	Amplitude float64 // linear, 1.0 is full scale
	// Pan moves the tone between channels: -1 left only, 0 centre, 1 right only.
	Pan float64
}

// Engine generates stereo tones into a frame writer.
//
// Thread-safety: This implementation is thread-safe. The paced producer runs on
// its own goroutine between Start and Stop.
type Engine struct {
	// Dependencies
	logger *slog.Logger
	writer ports.FrameWriter

	// Configuration
	sampleRate float64
	blockSize  int
	tones      []Tone

	// Generator state
	phase       []float64
	left, right []float32
	level       []float64
	rms         float64
	generated   uint64
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
	mu          sync.Mutex

	// Behavior configuration (for testing error scenarios)
	failStart bool
}

var _ ports.Generator = (*Engine)(nil)

// NewEngine creates a generator writing blocks of blockSize frames.
func NewEngine(writer ports.FrameWriter, sampleRate float64, blockSize int) *Engine {
	if blockSize <= 0 {
		blockSize = 256
	}
	e := &Engine{
		writer:     writer,
		sampleRate: sampleRate,
		blockSize:  blockSize,
		left:       make([]float32, blockSize),
		right:      make([]float32, blockSize),
		level:      make([]float64, blockSize),
	}
	writer.SetFormat(domain.StreamInfo{SampleRate: sampleRate, Channels: 2})
	return e
}

// SetLogger sets the logger for this engine.
// This should be called after construction before using the engine.
func (m *Engine) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// SetFailStart configures the mock to fail starting (for testing).
func (m *Engine) SetFailStart(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStart = fail
}

// SetTones replaces the generated tones. Phases restart at zero.
func (m *Engine) SetTones(tones ...Tone) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tones = append(m.tones[:0], tones...)
	m.phase = make([]float64, len(tones))
}

// Fill synchronously writes frames to the writer and returns how many were accepted.
func (m *Engine) Fill(frames int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	accepted := 0
	for frames > 0 {
		n := m.blockSize
		if frames < n {
			n = frames
		}
		m.render(n)
		accepted += m.writer.Write(m.left[:n], m.right[:n])
		frames -= n
	}
	return accepted
}

// Start launches a producer goroutine writing one block per block period.
func (m *Engine) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failStart {
		return domain.NewStreamError("start", "", "mock start failed", nil)
	}
	if m.running {
		return domain.ErrAlreadyInitialized
	}
	if !(m.sampleRate > 0) {
		return domain.ErrInvalidSampleRate
	}

	// another producer may have fed the writer since construction
	m.writer.SetFormat(domain.StreamInfo{SampleRate: m.sampleRate, Channels: 2})

	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.running = true

	period := time.Duration(float64(m.blockSize) / m.sampleRate * float64(time.Second))
	go m.run(ctx, period, m.done)

	if m.logger != nil {
		m.logger.Debug("mock generator started",
			slog.Float64("sample_rate", m.sampleRate),
			slog.Int("block_size", m.blockSize),
			slog.Int("tones", len(m.tones)))
	}
	return nil
}

func (m *Engine) run(ctx context.Context, period time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Fill(m.blockSize)
		}
	}
}

// Stop halts the producer goroutine and waits for it to exit.
func (m *Engine) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return domain.ErrNotInitialized
	}
	m.running = false
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	cancel()
	<-done

	if m.logger != nil {
		m.logger.Debug("mock generator stopped",
			slog.Uint64("frames", m.Generated()),
			slog.Float64("level_rms", m.Level()))
	}
	return nil
}

// IsRunning reports whether the producer goroutine is active.
func (m *Engine) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Generated returns the number of frames rendered so far.
func (m *Engine) Generated() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generated
}

// render fills the block buffers with n frames. Caller holds mu.
func (m *Engine) render(n int) {
	clear(m.left[:n])
	clear(m.right[:n])

	for t, tone := range m.tones {
		step := 2 * math.Pi * tone.Frequency / m.sampleRate
		gl := tone.Amplitude * math.Min(1, 1-tone.Pan)
		gr := tone.Amplitude * math.Min(1, 1+tone.Pan)
		phase := m.phase[t]
		for i := 0; i < n; i++ {
			v := math.Sin(phase)
			m.left[i] += float32(gl * v)
			m.right[i] += float32(gr * v)
			phase += step
		}
		m.phase[t] = math.Mod(phase, 2*math.Pi)
	}
	m.generated += uint64(n)

	for i, v := range m.left[:n] {
		m.level[i] = float64(v)
	}
	m.rms = RMS(m.level[:n])
}

// Level returns the RMS of the left channel of the last rendered block.
func (m *Engine) Level() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rms
}

// RMS returns the root mean square of a rendered block, for diagnostics.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(samples, samples) / float64(len(samples)))
}
