package fyne

import (
	"fmt"
	"strings"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/gospectra/internal/adapter/ui/fyne/widgets"
)

// RecentWindow lists the recently analysed files with a search filter.
// Double tapping a file opens it in the analyzer.
type RecentWindow struct {
	window      fyneapp.Window
	list        *widget.List
	searchEntry *widget.Entry

	// Data state
	data  []string // filtered view (shown in the list)
	paths []string // every recent file, newest first

	// Dependencies
	presenter *Presenter

	// Lifecycle
	onWindowClosed func()
	isVisible      bool
}

// NewRecentWindow creates the window and loads the current list.
func NewRecentWindow(app fyneapp.App, presenter *Presenter) *RecentWindow {
	w := &RecentWindow{
		presenter: presenter,
	}

	w.window = app.NewWindow("Recent Files")
	w.window.Resize(fyneapp.NewSize(500, 400))

	w.buildUI()

	w.window.SetOnClosed(func() {
		w.isVisible = false
		if w.onWindowClosed != nil {
			w.onWindowClosed()
		}
	})

	if presenter != nil {
		w.SetPaths(presenter.RecentFiles())
	}
	return w
}

// buildUI constructs the window layout.
func (w *RecentWindow) buildUI() {
	w.searchEntry = widget.NewEntry()
	w.searchEntry.SetPlaceHolder("Search...")
	w.searchEntry.OnChanged = func(query string) {
		w.filter(query)
	}

	w.list = widget.NewList(
		func() int {
			return len(w.data)
		},
		func() fyneapp.CanvasObject {
			label := widgets.NewRecentFileLabel(w.open)
			label.SetSecondaryTapped(w.showMenu)
			return label
		},
		func(i widget.ListItemID, obj fyneapp.CanvasObject) {
			label, ok := obj.(*widgets.RecentFileLabel)
			if !ok || i < 0 || i >= len(w.data) {
				return
			}
			label.SetPath(w.data[i])
		},
	)

	w.window.SetContent(container.NewBorder(w.searchEntry, nil, nil, nil, w.list))
}

func (w *RecentWindow) open(path string) {
	if w.presenter == nil {
		return
	}
	if err := w.presenter.OnFileOpened(path); err != nil {
		w.presenter.view.ShowNotification("Error", fmt.Sprintf("Failed to open file: %v", err))
	}
}

func (w *RecentWindow) showMenu(path string, pos fyneapp.Position) {
	open := fyneapp.NewMenuItem("Open", func() { w.open(path) })
	clearAll := fyneapp.NewMenuItem("Clear List", func() {
		if w.presenter != nil {
			w.presenter.OnClearRecent()
		}
	})
	widget.ShowPopUpMenuAtPosition(fyneapp.NewMenu("", open, clearAll), w.window.Canvas(), pos)
}

// SetPaths replaces the listed files, keeping the search filter.
func (w *RecentWindow) SetPaths(paths []string) {
	w.paths = append([]string(nil), paths...)
	w.filter(w.searchEntry.Text)
}

// filter shows the paths containing query, case-insensitively.
func (w *RecentWindow) filter(query string) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		w.data = w.paths
	} else {
		w.data = make([]string, 0, len(w.paths))
		for _, p := range w.paths {
			if strings.Contains(strings.ToLower(p), query) {
				w.data = append(w.data, p)
			}
		}
	}
	w.window.SetTitle(fmt.Sprintf("Recent Files (%d)", len(w.data)))
	w.list.Refresh()
}

// Show displays the window.
func (w *RecentWindow) Show() {
	w.isVisible = true
	w.window.Show()
}

// Close closes the window.
func (w *RecentWindow) Close() {
	w.isVisible = false
	w.window.Close()
}

// IsVisible returns whether the window is currently visible.
func (w *RecentWindow) IsVisible() bool {
	return w.isVisible
}

// SetOnWindowClosed sets a callback to be invoked when the window is closed.
func (w *RecentWindow) SetOnWindowClosed(callback func()) {
	w.onWindowClosed = callback
}
