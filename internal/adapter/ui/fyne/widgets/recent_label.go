package widgets

import (
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// Ensure RecentFileLabel implements SecondaryTappable interface
var _ fyne.SecondaryTappable = (*RecentFileLabel)(nil)

// RecentFileLabel shows one recently analysed file. A double tap opens it and
// a secondary tap asks for its context menu.
type RecentFileLabel struct {
	widget.Label
	path            string
	open            func(path string)
	secondaryTapped func(path string, pos fyne.Position)
}

// NewRecentFileLabel creates a label that calls open with its path on double tap.
func NewRecentFileLabel(open func(path string)) *RecentFileLabel {
	label := &RecentFileLabel{open: open}
	label.Truncation = fyne.TextTruncateEllipsis
	label.ExtendBaseWidget(label)
	return label
}

// SetPath shows the file name and keeps the full path for the callbacks.
func (l *RecentFileLabel) SetPath(path string) {
	l.path = path
	l.SetText(filepath.Base(path))
}

// Path returns the file the label stands for.
func (l *RecentFileLabel) Path() string {
	return l.path
}

// DoubleTapped implements fyne.DoubleTappable.
func (l *RecentFileLabel) DoubleTapped(*fyne.PointEvent) {
	if l.open != nil && l.path != "" {
		l.open(l.path)
	}
}

// SetSecondaryTapped sets the callback for right-click events.
func (l *RecentFileLabel) SetSecondaryTapped(callback func(path string, pos fyne.Position)) {
	l.secondaryTapped = callback
}

// TappedSecondary implements fyne.SecondaryTappable.
func (l *RecentFileLabel) TappedSecondary(pe *fyne.PointEvent) {
	if l.secondaryTapped != nil {
		l.secondaryTapped(l.path, pe.AbsolutePosition)
	}
}
