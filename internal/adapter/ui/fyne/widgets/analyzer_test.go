package widgets

import (
	"image"
	"sync"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/internal/logger"
)

// fakeSource serves a fixed line graph frame.
type fakeSource struct {
	mu            sync.Mutex
	width, height int
	cursor        domain.Cursor
	snapshots     int
}

func (f *fakeSource) SetSurfaceSize(width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width, f.height = width, height
}

func (f *fakeSource) SetCursor(c domain.Cursor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursor = c
}

func (f *fakeSource) Snapshot(dst *domain.Frame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots++
	s := domain.DefaultSettings()
	*dst = domain.Frame{
		Width:      f.width,
		Height:     f.height,
		LineStyles: s.Lines,
		Background: s.Background,
		Grid:       s.Grid,
		Peak:       domain.UnavailablePeak(),
	}
	dst.Lines[domain.GraphMain] = make([]domain.LineGraphResult, f.width)
	for i := range dst.Lines[domain.GraphMain] {
		dst.Lines[domain.GraphMain][i].LeftMagnitude = 0.5
	}
}

func TestAnalyzerView_Draw(t *testing.T) {
	test.NewApp()
	src := &fakeSource{}
	v := NewAnalyzerView(src, logger.NewTestLogger())

	img := v.draw(40, 20)
	require.Equal(t, image.Rect(0, 0, 40, 20), img.Bounds())
	assert.Equal(t, 40, src.width)
	assert.Equal(t, 20, src.height)
	assert.Equal(t, 1, src.snapshots)
	assert.Equal(t, uint64(1), v.Frames())

	// the main line crosses the middle row
	rgba, ok := img.(*image.RGBA)
	require.True(t, ok)
	line := domain.DefaultSettings().Lines[domain.GraphMain].Left
	found := false
	for y := 8; y <= 11; y++ {
		if rgba.RGBAAt(20, y) == line {
			found = true
		}
	}
	assert.True(t, found)

	// consecutive frames alternate between two images
	second := v.draw(40, 20)
	assert.NotSame(t, img, second)
	assert.Same(t, img, v.draw(40, 20))
}

func TestAnalyzerView_DrawWithoutArea(t *testing.T) {
	test.NewApp()
	src := &fakeSource{}
	v := NewAnalyzerView(src, logger.NewTestLogger())

	img := v.draw(0, 0)
	assert.True(t, img.Bounds().Empty())
	assert.Zero(t, src.snapshots)
}

func TestAnalyzerView_Pointer(t *testing.T) {
	test.NewApp()
	src := &fakeSource{}
	v := NewAnalyzerView(src, logger.NewTestLogger())
	v.Resize(fyne.NewSize(200, 100))

	v.MouseIn(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(50, 25)}})
	assert.Equal(t, domain.Cursor{X: 0.25, Y: 0.25, Inside: true}, src.cursor)

	v.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 75)}})
	assert.Equal(t, domain.Cursor{X: 0.5, Y: 0.75, Inside: true}, src.cursor)

	v.MouseOut()
	assert.False(t, src.cursor.Inside)
}

func TestAnalyzerView_Taps(t *testing.T) {
	test.NewApp()
	v := NewAnalyzerView(&fakeSource{}, logger.NewTestLogger())

	assert.NotPanics(t, func() { v.Tapped(&fyne.PointEvent{}) })

	tapped := 0
	var secondary *fyne.PointEvent
	v.OnTapped = func() { tapped++ }
	v.OnSecondaryTapped = func(pe *fyne.PointEvent) { secondary = pe }

	test.Tap(v)
	assert.Equal(t, 1, tapped)

	pe := &fyne.PointEvent{Position: fyne.NewPos(3, 4)}
	v.TappedSecondary(pe)
	assert.Same(t, pe, secondary)
}

func TestRecentFileLabel(t *testing.T) {
	test.NewApp()
	var opened string
	l := NewRecentFileLabel(func(path string) { opened = path })

	l.DoubleTapped(&fyne.PointEvent{})
	assert.Empty(t, opened, "no path, nothing to open")

	l.SetPath("/music/take1.wav")
	assert.Equal(t, "take1.wav", l.Text)
	assert.Equal(t, "/music/take1.wav", l.Path())

	l.DoubleTapped(&fyne.PointEvent{})
	assert.Equal(t, "/music/take1.wav", opened)

	var menuFor string
	l.SetSecondaryTapped(func(path string, _ fyne.Position) { menuFor = path })
	l.TappedSecondary(&fyne.PointEvent{})
	assert.Equal(t, "/music/take1.wav", menuFor)
}
