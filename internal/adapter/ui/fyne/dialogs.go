package fyne

import (
	"io"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// FileDialog is a helper for picking a WAV file to analyse.
type FileDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewFileDialog creates a new file dialog.
func NewFileDialog(window fyne.Window, callback func(string), logger *slog.Logger) *FileDialog {
	return &FileDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the file dialog.
func (d *FileDialog) Show() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			d.logger.Error("file dialog error", slog.Any("error", err))
			return
		}
		if reader == nil {
			return // User cancelled
		}
		defer reader.Close()

		if d.callback != nil {
			d.callback(reader.URI().Path())
		}
	}, d.window)
	open.SetFilter(storage.NewExtensionFileFilter([]string{".wav", ".WAV"}))
	open.Show()
}

// SaveDialog is a helper for choosing where an export is written.
type SaveDialog struct {
	window    fyne.Window
	name      string
	extension string
	callback  func(io.WriteCloser)
	logger    *slog.Logger
}

// NewSaveDialog creates a save dialog suggesting name. The callback owns the
// writer and must close it.
func NewSaveDialog(window fyne.Window, name, extension string, callback func(io.WriteCloser), logger *slog.Logger) *SaveDialog {
	return &SaveDialog{
		window:    window,
		name:      name,
		extension: extension,
		callback:  callback,
		logger:    logger,
	}
}

// Show displays the save dialog.
func (d *SaveDialog) Show() {
	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			d.logger.Error("save dialog error", slog.Any("error", err))
			return
		}
		if writer == nil {
			return // User cancelled
		}
		if d.callback == nil {
			_ = writer.Close()
			return
		}
		d.callback(writer)
	}, d.window)
	save.SetFileName(d.name)
	save.SetFilter(storage.NewExtensionFileFilter([]string{d.extension}))
	save.Show()
}
