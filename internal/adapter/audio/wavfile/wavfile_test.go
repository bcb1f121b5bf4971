package wavfile

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gospectra/internal/adapter/audio/ring"
	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_ReadsHeaderAndFallsBackToFileName(t *testing.T) {
	path := testutil.WriteTempFile(t, "tone.wav", testutil.SineWAV16(44100, 441, 1000, 0.5))

	src, err := Open(path, quietLogger())
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, domain.StreamInfo{SampleRate: 44100, Channels: 2}, src.Info())
	assert.Equal(t, "tone.wav", src.Metadata().Label())
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open("", quietLogger())
	assert.ErrorIs(t, err, domain.ErrInvalidFilePath)

	_, err = Open("/nonexistent/file.wav", quietLogger())
	assert.ErrorIs(t, err, domain.ErrFileNotFound)

	_, err = Open("song.mp3", quietLogger())
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	var streamErr *domain.StreamError
	assert.True(t, errors.As(err, &streamErr))
	assert.Equal(t, "open", streamErr.Op)
}

func TestSource_ReadFrames_ConvertsPCM16(t *testing.T) {
	data := testutil.WAV16(8000, 2, []int16{16384, -16384, 32767, 0, -32768, 8192})
	src, err := NewSource(bytes.NewReader(data), "mem.wav", quietLogger())
	require.NoError(t, err)

	left := make([]float32, 8)
	right := make([]float32, 8)
	n, err := src.ReadFrames(left, right)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	assert.InDelta(t, 0.5, left[0], 1e-6)
	assert.InDelta(t, -0.5, right[0], 1e-6)
	assert.InDelta(t, 32767.0/32768, left[1], 1e-6)
	assert.InDelta(t, -1.0, left[2], 1e-6)
	assert.InDelta(t, 0.25, right[2], 1e-6)

	_, err = src.ReadFrames(left, right)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSource_ReadFrames_MonoDuplicates(t *testing.T) {
	data := testutil.WAV16(8000, 1, []int16{1000, 2000})
	src, err := NewSource(bytes.NewReader(data), "mono.wav", quietLogger())
	require.NoError(t, err)

	left := make([]float32, 2)
	right := make([]float32, 2)
	n, err := src.ReadFrames(left, right)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, left, right)
}

func TestSource_Pump_DeliversEveryFrame(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	const frames = 5000
	data := testutil.SineWAV16(48000, frames, 440, 0.25)
	src, err := NewSource(bytes.NewReader(data), "pump.wav", quietLogger())
	require.NoError(t, err)

	buf := ring.New(1024, domain.StreamInfo{})
	done := make(chan error, 1)
	go func() { done <- src.Pump(context.Background(), buf, 300, false) }()

	got := 0
	scratch := make([]float64, 256)
	for got < frames {
		got += buf.Read(scratch, nil)
	}
	require.NoError(t, <-done)

	assert.Equal(t, frames, got)
	assert.Zero(t, buf.Counters().Dropped)
	assert.Equal(t, 48000.0, buf.Info().SampleRate)
}

func TestSource_Pump_StopsOnCancel(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	data := testutil.SineWAV16(48000, 48000, 440, 0.25)
	src, err := NewSource(bytes.NewReader(data), "cancel.wav", quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = src.Pump(ctx, ring.New(1024, domain.StreamInfo{}), 256, true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSource_ReadFrames_AfterClose(t *testing.T) {
	path := testutil.WriteTempFile(t, "closed.wav", testutil.SineWAV16(8000, 800, 440, 0.5))
	src, err := Open(path, quietLogger())
	require.NoError(t, err)
	require.NoError(t, src.Close())
	require.NoError(t, src.Close())

	left := make([]float32, 16)
	n, err := src.ReadFrames(left, nil)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, domain.ErrStreamClosed)

	err = src.Pump(context.Background(), ring.New(1024, domain.StreamInfo{}), 64, false)
	assert.ErrorIs(t, err, domain.ErrStreamClosed)
}

func TestMetadata_Label(t *testing.T) {
	assert.Equal(t, "A - B", Metadata{Artist: "A", Title: "B"}.Label())
	assert.Equal(t, "B", Metadata{Title: "B"}.Label())
	assert.Equal(t, "x.wav", Metadata{Path: "/tmp/x.wav"}.Label())
}
