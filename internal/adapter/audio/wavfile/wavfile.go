// Package wavfile decodes WAV files into analyzer frames.
//
// Decoding uses go-dsp's wav reader; the descriptive metadata comes from the
// file's tags when it has any.
package wavfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dhowden/tag"
	"github.com/mjibson/go-dsp/wav"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/ports"
)

// WAVE format codes.
const (
	formatPCM   = 1
	formatFloat = 3
)

// Metadata describes an opened file.
type Metadata struct {
	Title  string
	Artist string
	Album  string
	Path   string
	Frames int
}

// Label returns a short human-readable name for the file.
func (m Metadata) Label() string {
	if m.Artist != "" && m.Title != "" {
		return m.Artist + " - " + m.Title
	}
	if m.Title != "" {
		return m.Title
	}
	return filepath.Base(m.Path)
}

// Source is an open WAV file.
type Source struct {
	file     *os.File
	decoder  *wav.Wav
	info     domain.StreamInfo
	meta     Metadata
	channels int
	logger   *slog.Logger
	closed   atomic.Bool
}

var _ ports.StreamingFile = (*Source)(nil)

// Open opens a WAV file and reads its header and tags.
func Open(path string, logger *slog.Logger) (*Source, error) {
	if path == "" {
		return nil, domain.ErrInvalidFilePath
	}
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return nil, domain.NewStreamError("open", path, "not a wav file", domain.ErrUnsupportedFormat)
	}
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewStreamError("open", path, "file does not exist", domain.ErrFileNotFound)
		}
		return nil, domain.NewStreamError("open", path, "failed to open file", err)
	}

	meta := readMetadata(f, path, logger)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, domain.NewStreamError("open", path, "failed to rewind file", err)
	}

	s, err := newSource(f, meta, logger)
	if err != nil {
		_ = f.Close()
		return nil, domain.NewStreamError("decode", path, "failed to read wav header", err)
	}
	s.file = f
	return s, nil
}

// NewSource decodes WAV data from r. It is the in-memory counterpart of Open.
func NewSource(r io.Reader, name string, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := newSource(r, Metadata{Path: name}, logger)
	if err != nil {
		return nil, domain.NewStreamError("decode", name, "failed to read wav header", err)
	}
	return s, nil
}

func newSource(r io.Reader, meta Metadata, logger *slog.Logger) (*Source, error) {
	dec, err := wav.New(r)
	if err != nil {
		return nil, err
	}

	switch {
	case dec.AudioFormat == formatPCM && (dec.BitsPerSample == 8 || dec.BitsPerSample == 16):
	case dec.AudioFormat == formatFloat && dec.BitsPerSample == 32:
	default:
		return nil, fmt.Errorf("%w: format %d with %d bits", domain.ErrUnsupportedFormat, dec.AudioFormat, dec.BitsPerSample)
	}

	channels := int(dec.NumChannels)
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", domain.ErrUnsupportedFormat, channels)
	}
	if dec.SampleRate == 0 {
		return nil, domain.ErrInvalidSampleRate
	}

	meta.Frames = dec.Samples
	s := &Source{
		decoder:  dec,
		info:     domain.StreamInfo{SampleRate: float64(dec.SampleRate), Channels: channels},
		meta:     meta,
		channels: channels,
		logger:   logger.With(slog.String("adapter", "wavfile")),
	}
	s.logger.Debug("wav opened",
		slog.String("file", meta.Label()),
		slog.Float64("sample_rate", s.info.SampleRate),
		slog.Int("channels", channels),
		slog.Int("bits", int(dec.BitsPerSample)))
	return s, nil
}

func readMetadata(f *os.File, path string, logger *slog.Logger) Metadata {
	meta := Metadata{Path: path}
	m, err := tag.ReadFrom(f)
	if err != nil {
		if !errors.Is(err, tag.ErrNoTagsFound) {
			logger.Debug("failed to read tags", slog.String("path", path), slog.Any("error", err))
		}
		return meta
	}
	meta.Title = m.Title()
	meta.Artist = m.Artist()
	meta.Album = m.Album()
	return meta
}

// Info returns the stream format of the file.
func (s *Source) Info() domain.StreamInfo {
	return s.info
}

// Metadata returns the descriptive metadata.
func (s *Source) Metadata() Metadata {
	return s.meta
}

// Title returns the label shown for the file.
func (s *Source) Title() string {
	return s.meta.Label()
}

// Frames returns the number of frames announced by the header.
func (s *Source) Frames() int {
	return s.meta.Frames
}

// ReadFrames decodes up to len(left) frames. Mono files are duplicated to both
// channels and channels beyond the second are ignored. It returns io.EOF once
// the file is exhausted and no frames were decoded, and domain.ErrStreamClosed
// after Close.
func (s *Source) ReadFrames(left, right []float32) (int, error) {
	if s.closed.Load() {
		return 0, domain.NewStreamError("decode", s.meta.Path, "source closed", domain.ErrStreamClosed)
	}
	want := len(left)
	if want == 0 {
		return 0, nil
	}
	raw, err := s.decoder.ReadSamples(want * s.channels)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, domain.NewStreamError("decode", s.meta.Path, "failed to decode samples", err)
	}

	var samples []float32
	switch v := raw.(type) {
	case []uint8:
		samples = make([]float32, len(v))
		for i, x := range v {
			samples[i] = (float32(x) - 128) / 128
		}
	case []int16:
		samples = make([]float32, len(v))
		for i, x := range v {
			samples[i] = float32(x) / 32768
		}
	case []float32:
		samples = v
	}

	n := len(samples) / s.channels
	if n > want {
		n = want
	}
	for i := 0; i < n; i++ {
		l := samples[i*s.channels]
		left[i] = l
		if right == nil {
			continue
		}
		if s.channels > 1 {
			right[i] = samples[i*s.channels+1]
		} else {
			right[i] = l
		}
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// spaceReporter is implemented by writers that can report their free space.
type spaceReporter interface {
	Free() int
}

// Pump decodes the file into w until it ends or ctx is cancelled. With
// realtime set, blocks are paced at the file's sample rate like a live input
// and frames the writer cannot hold are dropped. Otherwise Pump waits for
// space when w reports it, so no frames are lost.
func (s *Source) Pump(ctx context.Context, w ports.FrameWriter, blockSize int, realtime bool) error {
	if blockSize <= 0 {
		blockSize = 1024
	}
	w.SetFormat(s.info)

	left := make([]float32, blockSize)
	right := make([]float32, blockSize)

	var ticker *time.Ticker
	if realtime {
		period := time.Duration(float64(blockSize) / s.info.SampleRate * float64(time.Second))
		ticker = time.NewTicker(period)
		defer ticker.Stop()
	}

	total := 0
	for {
		n, err := s.ReadFrames(left, right)
		if errors.Is(err, io.EOF) {
			s.logger.Debug("pump finished", slog.Int("frames", total))
			return nil
		}
		if err != nil {
			return err
		}

		if realtime {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
			w.Write(left[:n], right[:n])
		} else {
			for off := 0; off < n; {
				if err := ctx.Err(); err != nil {
					return err
				}
				sr, ok := w.(spaceReporter)
				if !ok {
					w.Write(left[off:n], right[off:n])
					break
				}
				free := sr.Free()
				if free == 0 {
					time.Sleep(time.Millisecond)
					continue
				}
				end := min(n, off+free)
				off += w.Write(left[off:end], right[off:end])
			}
		}
		total += n
	}
}

// Close releases the underlying file. Later reads fail with domain.ErrStreamClosed.
func (s *Source) Close() error {
	s.closed.Store(true)
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
