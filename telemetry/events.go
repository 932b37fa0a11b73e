// Package telemetry provides field statistics, bookmarking, perf timing and snapshots.
package telemetry

// EventType identifies user edits to the scene.
type EventType uint8

const (
	EventMove EventType = iota
	EventRotate
	EventFlip
	EventCountChange
	EventReset
)

// String returns the event name used in logs.
func (t EventType) String() string {
	switch t {
	case EventMove:
		return "move"
	case EventRotate:
		return "rotate"
	case EventFlip:
		return "flip"
	case EventCountChange:
		return "count_change"
	case EventReset:
		return "reset"
	}
	return "unknown"
}

// Event represents a single scene edit.
type Event struct {
	Type   EventType
	Frame  int64
	Magnet int // -1 when the edit is not about one magnet

	// Optional value depending on event type
	Value float64 // new angle (rotate) or new tracer count (count change)
}

// NewMoveEvent creates a magnet drag event.
func NewMoveEvent(frame int64, magnet int) Event {
	return Event{Type: EventMove, Frame: frame, Magnet: magnet}
}

// NewRotateEvent creates a magnet rotation event.
func NewRotateEvent(frame int64, magnet int, angle float64) Event {
	return Event{Type: EventRotate, Frame: frame, Magnet: magnet, Value: angle}
}

// NewFlipEvent creates a polarity flip event.
func NewFlipEvent(frame int64, magnet int) Event {
	return Event{Type: EventFlip, Frame: frame, Magnet: magnet}
}

// NewCountChangeEvent creates a tracer count change event.
func NewCountChangeEvent(frame int64, count int) Event {
	return Event{Type: EventCountChange, Frame: frame, Magnet: -1, Value: float64(count)}
}

// NewResetEvent creates a scene reset event.
func NewResetEvent(frame int64) Event {
	return Event{Type: EventReset, Frame: frame, Magnet: -1}
}
