// Package domain defines events published on the event bus.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

const (
	EventSettingsChanged EventType = "settings.changed"
	EventFreezeToggled   EventType = "display.frozen"
	EventStreamReset     EventType = "stream.reset"
	EventPeakMoved       EventType = "peak.moved"
	EventOverrun         EventType = "stream.overrun"
	EventSourceChanged   EventType = "source.changed"
	EventSourceEnded     EventType = "source.ended"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// SettingsChangedEvent is published after settings were validated and stored.
type SettingsChangedEvent struct {
	baseEvent
	Previous Settings
	Current  Settings
}

// Type returns the event type.
func (e SettingsChangedEvent) Type() EventType {
	return EventSettingsChanged
}

// NewSettingsChangedEvent creates a new SettingsChangedEvent.
func NewSettingsChangedEvent(previous, current Settings) SettingsChangedEvent {
	return SettingsChangedEvent{
		baseEvent: newBaseEvent(),
		Previous:  previous,
		Current:   current,
	}
}

// FreezeToggledEvent is published when the display is frozen or resumed.
type FreezeToggledEvent struct {
	baseEvent
	Frozen bool
}

// Type returns the event type.
func (e FreezeToggledEvent) Type() EventType {
	return EventFreezeToggled
}

// NewFreezeToggledEvent creates a new FreezeToggledEvent.
func NewFreezeToggledEvent(frozen bool) FreezeToggledEvent {
	return FreezeToggledEvent{
		baseEvent: newBaseEvent(),
		Frozen:    frozen,
	}
}

// StreamResetEvent is published when the analysed stream changes format.
type StreamResetEvent struct {
	baseEvent
	Info StreamInfo
}

// Type returns the event type.
func (e StreamResetEvent) Type() EventType {
	return EventStreamReset
}

// NewStreamResetEvent creates a new StreamResetEvent.
func NewStreamResetEvent(info StreamInfo) StreamResetEvent {
	return StreamResetEvent{
		baseEvent: newBaseEvent(),
		Info:      info,
	}
}

// PeakMovedEvent is published when the tracked peak resolves to a different bin.
type PeakMovedEvent struct {
	baseEvent
	Graph LineGraphID
	Peak  PeakEstimate
}

// Type returns the event type.
func (e PeakMovedEvent) Type() EventType {
	return EventPeakMoved
}

// NewPeakMovedEvent creates a new PeakMovedEvent.
func NewPeakMovedEvent(graph LineGraphID, peak PeakEstimate) PeakMovedEvent {
	return PeakMovedEvent{
		baseEvent: newBaseEvent(),
		Graph:     graph,
		Peak:      peak,
	}
}

// OverrunEvent is published when the producer dropped frames since the last report.
type OverrunEvent struct {
	baseEvent
	Dropped uint64 // frames dropped since the previous report
}

// Type returns the event type.
func (e OverrunEvent) Type() EventType {
	return EventOverrun
}

// NewOverrunEvent creates a new OverrunEvent.
func NewOverrunEvent(dropped uint64) OverrunEvent {
	return OverrunEvent{
		baseEvent: newBaseEvent(),
		Dropped:   dropped,
	}
}

// SourceKind identifies what feeds the analyzer.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceGenerator
	SourceFile
)

func (k SourceKind) String() string {
	switch k {
	case SourceGenerator:
		return "generator"
	case SourceFile:
		return "file"
	default:
		return "none"
	}
}

// SourceChangedEvent is published when a different producer starts feeding the stream.
type SourceChangedEvent struct {
	baseEvent
	Kind  SourceKind
	Title string
	Path  string // empty for the generator
}

// Type returns the event type.
func (e SourceChangedEvent) Type() EventType {
	return EventSourceChanged
}

// NewSourceChangedEvent creates a new SourceChangedEvent.
func NewSourceChangedEvent(kind SourceKind, title, path string) SourceChangedEvent {
	return SourceChangedEvent{
		baseEvent: newBaseEvent(),
		Kind:      kind,
		Title:     title,
		Path:      path,
	}
}

// SourceEndedEvent is published when a file source ran out or failed.
type SourceEndedEvent struct {
	baseEvent
	Path  string
	Error error // nil when the file played to the end
}

// Type returns the event type.
func (e SourceEndedEvent) Type() EventType {
	return EventSourceEnded
}

// NewSourceEndedEvent creates a new SourceEndedEvent.
func NewSourceEndedEvent(path string, err error) SourceEndedEvent {
	return SourceEndedEvent{
		baseEvent: newBaseEvent(),
		Path:      path,
		Error:     err,
	}
}
