package fyne

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/gospectra/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/gospectra/internal/domain"
	"github.com/tejashwikalptaru/gospectra/res"
)

// Window defaults.
const (
	APPNAME = "GoSpectra"
	WIDTH   = 1000
	HEIGHT  = 620
)

var (
	displayOptions  = []string{"Line graph", "Colour spectrum"}
	scalingOptions  = []string{"Linear", "Logarithmic"}
	trackingOptions = []string{"none", "transform", "main", "aux1"}
	windowSizes     = []string{"512", "1024", "2048", "4096", "8192", "16384", "32768"}
)

// MainWindow is the main UI window implementing the UIView interface.
// It handles all UI rendering and user interactions.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
//
// UIView methods may be called from any goroutine; they hop onto the UI
// goroutine with fyne.Do.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	logger *slog.Logger

	// UI components
	analyzer       *widgets.AnalyzerView
	displaySelect  *widget.Select
	channelSelect  *widget.Select
	scalingSelect  *widget.Select
	trackingSelect *widget.Select
	windowSelect   *widget.Select
	diagnostics    *widget.Check
	freezeButton   *widget.Button
	sourceLabel    *widget.Label
	statusLabel    *widget.Label
	peakLabel      *widget.Label

	// State
	recent       []string
	syncing      bool // set while settings are copied into the controls
	recentWindow *RecentWindow

	// Lifecycle management
	closeOnce sync.Once

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates a new main window drawing from source.
func NewMainWindow(app fyneapp.App, source widgets.FrameSource, logger *slog.Logger) *MainWindow {
	w := &MainWindow{
		app:    app,
		logger: logger.With(slog.String("component", "main_window")),
	}

	// Create a window
	w.window = app.NewWindow(APPNAME)

	// Build UI
	w.analyzer = widgets.NewAnalyzerView(source, logger)
	w.buildUI()

	// Set window properties
	w.window.Resize(fyneapp.Size{
		Width:  WIDTH,
		Height: HEIGHT,
	})

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	w.displaySelect = widget.NewSelect(displayOptions, nil)
	channels := make([]string, 0, int(domain.ChannelComplex)+1)
	for c := domain.ChannelLeft; c <= domain.ChannelComplex; c++ {
		channels = append(channels, c.String())
	}
	w.channelSelect = widget.NewSelect(channels, nil)
	w.scalingSelect = widget.NewSelect(scalingOptions, nil)
	w.trackingSelect = widget.NewSelect(trackingOptions, nil)
	w.windowSelect = widget.NewSelect(windowSizes, nil)
	w.diagnostics = widget.NewCheck("Diagnostics", nil)
	w.freezeButton = widget.NewButtonWithIcon("Freeze", theme.MediaPauseIcon(), nil)

	toolbar := container.NewHBox(
		w.freezeButton,
		widget.NewLabel("View"), w.displaySelect,
		widget.NewLabel("Channels"), w.channelSelect,
		widget.NewLabel("Scale"), w.scalingSelect,
		widget.NewLabel("Track"), w.trackingSelect,
		widget.NewLabel("Window"), w.windowSelect,
		w.diagnostics,
	)

	w.sourceLabel = widget.NewLabel("No source")
	w.sourceLabel.Truncation = fyneapp.TextTruncateEllipsis
	w.sourceLabel.TextStyle = fyneapp.TextStyle{Bold: true}
	w.statusLabel = widget.NewLabel("")
	w.peakLabel = widget.NewLabel("")
	w.peakLabel.TextStyle = fyneapp.TextStyle{Monospace: true}
	statusBar := container.NewBorder(nil, nil, w.sourceLabel, w.statusLabel, w.peakLabel)

	content := container.NewBorder(toolbar, statusBar, nil, nil, w.analyzer)
	w.window.SetContent(container.NewPadded(content))
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.freezeButton.OnTapped = w.presenter.OnToggleFreeze
	w.analyzer.OnTapped = w.presenter.OnToggleFreeze
	w.analyzer.OnSecondaryTapped = w.showContextMenu

	w.displaySelect.OnChanged = func(value string) {
		if w.syncing {
			return
		}
		mode := domain.DisplayLineGraph
		if value == displayOptions[1] {
			mode = domain.DisplayColourSpectrum
		}
		w.presenter.OnDisplayModeChanged(mode)
	}

	w.channelSelect.OnChanged = func(value string) {
		if w.syncing {
			return
		}
		channel, err := domain.ParseChannelConfiguration(value)
		if err != nil {
			w.logger.Warn("unknown channel selection", slog.String("value", value))
			return
		}
		w.presenter.OnChannelChanged(channel)
	}

	w.scalingSelect.OnChanged = func(value string) {
		if w.syncing {
			return
		}
		scaling := domain.ScalingLinear
		if value == scalingOptions[1] {
			scaling = domain.ScalingLogarithmic
		}
		w.presenter.OnScalingChanged(scaling)
	}

	w.trackingSelect.OnChanged = func(value string) {
		if w.syncing {
			return
		}
		graph, err := domain.ParseLineGraphID(value)
		if err != nil {
			w.logger.Warn("unknown tracking selection", slog.String("value", value))
			return
		}
		w.presenter.OnTrackingGraphChanged(graph)
	}

	w.windowSelect.OnChanged = func(value string) {
		if w.syncing {
			return
		}
		size, err := strconv.Atoi(value)
		if err != nil {
			return
		}
		w.presenter.OnWindowSizeChanged(size)
	}

	w.diagnostics.OnChanged = func(show bool) {
		if w.syncing {
			return
		}
		w.presenter.OnDiagnosticsToggled(show)
	}
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	menus := make([]*fyneapp.Menu, 0)
	separator := fyneapp.NewMenuItemSeparator()

	openFile := fyneapp.NewMenuItem("Open WAV...", func() {
		w.handleOpenFile()
	})
	openFile.Shortcut = openShortcut

	openRecent := fyneapp.NewMenuItem("Open Recent", nil)
	openRecent.ChildMenu = w.recentMenu()

	generator := fyneapp.NewMenuItem("Tone Generator", func() {
		if err := w.presenter.OnGeneratorSelected(); err != nil {
			w.ShowNotification("Error", fmt.Sprintf("Failed to start the generator: %v", err))
		}
	})

	exportSpectrogram := fyneapp.NewMenuItem("Export Spectrogram...", func() {
		NewSaveDialog(w.window, "spectrogram.png", ".png", func(wc io.WriteCloser) {
			w.presenter.OnExportSpectrogram(wc)
		}, w.logger).Show()
	})

	exportSnapshot := fyneapp.NewMenuItem("Export Snapshot...", func() {
		NewSaveDialog(w.window, "snapshot.html", ".html", func(wc io.WriteCloser) {
			w.presenter.OnExportSnapshot(wc)
		}, w.logger).Show()
	})

	exitMenu := fyneapp.NewMenuItem("Exit", func() {
		w.window.Close()
	})

	fileMenu := fyneapp.NewMenu("File", openFile, openRecent, generator, separator,
		exportSpectrogram, exportSnapshot, separator, exitMenu)
	menus = append(menus, fileMenu)

	freeze := fyneapp.NewMenuItem("Freeze", w.presenter.OnToggleFreeze)
	recentFiles := fyneapp.NewMenuItem("Recent Files", w.showRecentWindow)
	reset := fyneapp.NewMenuItem("Reset Settings", w.presenter.OnResetSettings)
	menus = append(menus, fyneapp.NewMenu("View", freeze, recentFiles, separator, reset))

	about := fyneapp.NewMenuItem("About", func() {
		content := widget.NewRichTextFromMarkdown(res.AboutContent)
		content.Wrapping = fyneapp.TextWrapWord
		d := dialog.NewCustom("About "+APPNAME, "Close", content, w.window)
		d.Resize(fyneapp.NewSize(420, 320))
		d.Show()
	})
	menus = append(menus, fyneapp.NewMenu("Help", about))

	return menus
}

// recentMenu lists the recent files, newest first.
func (w *MainWindow) recentMenu() *fyneapp.Menu {
	items := make([]*fyneapp.MenuItem, 0, len(w.recent)+2)
	for _, path := range w.recent {
		items = append(items, fyneapp.NewMenuItem(path, func() {
			w.openFile(path)
		}))
	}
	if len(items) == 0 {
		empty := fyneapp.NewMenuItem("No recent files", nil)
		empty.Disabled = true
		return fyneapp.NewMenu("", empty)
	}
	items = append(items, fyneapp.NewMenuItemSeparator(), fyneapp.NewMenuItem("Clear", w.presenter.OnClearRecent))
	return fyneapp.NewMenu("", items...)
}

// showContextMenu offers the display modes at the pointer.
func (w *MainWindow) showContextMenu(pe *fyneapp.PointEvent) {
	line := fyneapp.NewMenuItem(displayOptions[0], func() {
		w.presenter.OnDisplayModeChanged(domain.DisplayLineGraph)
	})
	colour := fyneapp.NewMenuItem(displayOptions[1], func() {
		w.presenter.OnDisplayModeChanged(domain.DisplayColourSpectrum)
	})
	line.Checked = w.displaySelect.Selected == displayOptions[0]
	colour.Checked = !line.Checked
	menu := fyneapp.NewMenu("", line, colour)
	widget.ShowPopUpMenuAtPosition(menu, w.window.Canvas(), pe.AbsolutePosition)
}

// handleOpenFile handles the "Open WAV" menu action.
func (w *MainWindow) handleOpenFile() {
	if w.presenter == nil {
		return
	}

	// Use Fyne file dialog
	NewFileDialog(w.window, w.openFile, w.logger).Show()
}

func (w *MainWindow) openFile(path string) {
	if err := w.presenter.OnFileOpened(path); err != nil {
		w.ShowNotification("Error", fmt.Sprintf("Failed to open file: %v", err))
	}
}

func (w *MainWindow) showRecentWindow() {
	if w.recentWindow != nil && w.recentWindow.IsVisible() {
		w.recentWindow.window.RequestFocus()
		return
	}
	w.recentWindow = NewRecentWindow(w.app, w.presenter)
	w.recentWindow.SetOnWindowClosed(func() {
		w.recentWindow = nil
	})
	w.recentWindow.Show()
}

var openShortcut = &desktop.CustomShortcut{KeyName: fyneapp.KeyO, Modifier: fyneapp.KeyModifierShortcutDefault}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	w.window.Canvas().AddShortcut(openShortcut, func(fyneapp.Shortcut) {
		w.handleOpenFile()
	})

	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyG,
		Modifier: fyneapp.KeyModifierShortcutDefault,
	}, func(fyneapp.Shortcut) {
		if err := w.presenter.OnGeneratorSelected(); err != nil {
			w.ShowNotification("Error", err.Error())
		}
	})

	// Space freezes, like clicking the graph
	w.window.Canvas().SetOnTypedKey(func(ev *fyneapp.KeyEvent) {
		if ev.Name == fyneapp.KeySpace {
			w.presenter.OnToggleFreeze()
		}
	})
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}

// SetOnClosed registers a callback for when the window closes.
func (w *MainWindow) SetOnClosed(fn func()) {
	w.window.SetOnClosed(fn)
}

// Close closes the window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		if w.recentWindow != nil {
			w.recentWindow.Close()
		}
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// UIView interface implementation

// SetSettings copies the settings into the controls without echoing them back.
func (w *MainWindow) SetSettings(s domain.Settings) {
	fyneapp.Do(func() {
		w.syncing = true
		defer func() { w.syncing = false }()

		w.displaySelect.SetSelectedIndex(int(s.Display))
		w.channelSelect.SetSelected(s.Channel.String())
		w.scalingSelect.SetSelectedIndex(int(s.Scaling))
		w.trackingSelect.SetSelected(s.TrackingGraph.String())
		w.windowSelect.SetSelected(strconv.Itoa(s.WindowSize))
		w.diagnostics.SetChecked(s.Diagnostics)
	})
}

// SetFrozen updates the freeze button.
func (w *MainWindow) SetFrozen(frozen bool) {
	fyneapp.Do(func() {
		if frozen {
			w.freezeButton.SetText("Resume")
			w.freezeButton.SetIcon(theme.MediaPlayIcon())
		} else {
			w.freezeButton.SetText("Freeze")
			w.freezeButton.SetIcon(theme.MediaPauseIcon())
		}
	})
}

// Redraw repaints the analyzer view.
func (w *MainWindow) Redraw() {
	fyneapp.Do(w.analyzer.Redraw)
}

// SetSourceTitle shows what feeds the analyzer.
func (w *MainWindow) SetSourceTitle(title string) {
	fyneapp.Do(func() {
		w.sourceLabel.SetText(title)
		w.window.SetTitle(APPNAME + " - " + title)
	})
}

// SetRecentFiles refreshes the recent files menu and window.
func (w *MainWindow) SetRecentFiles(paths []string) {
	fyneapp.Do(func() {
		w.recent = append(w.recent[:0], paths...)
		if w.presenter != nil {
			w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
		}
		if w.recentWindow != nil {
			w.recentWindow.SetPaths(paths)
		}
	})
}

// SetStatus shows the stream format and drop count.
func (w *MainWindow) SetStatus(text string) {
	fyneapp.Do(func() {
		w.statusLabel.SetText(text)
	})
}

// SetPeak shows the tracked peak.
func (w *MainWindow) SetPeak(text string) {
	fyneapp.Do(func() {
		w.peakLabel.SetText(text)
	})
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

// Verify UIView implementation
var _ UIView = (*MainWindow)(nil)
