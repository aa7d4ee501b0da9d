package relay

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/relay/internal/schema"
)

const (
	// DefaultChannel is the channel used when none is given.
	DefaultChannel = "DEFAULT"

	// DefaultEventType is the event type used when none is given.
	DefaultEventType = "DEFAULT"
)

// SourceInfo identifies the origin of an event. Zero fields are
// unconstrained when used as a listener restriction.
type SourceInfo struct {
	// Relay is the emitting relay.
	Relay RelayID

	// Emitter is the emitting method.
	Emitter Method
}

// String returns a short description of the source.
func (s *SourceInfo) String() string {
	if s == nil {
		return "<none>"
	}
	if !s.Emitter.IsZero() {
		return s.Emitter.String()
	}
	if s.Relay != 0 {
		return s.Relay.String()
	}
	return "<any>"
}

// Event represents an emitted event.
// Events are immutable once created.
type Event struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Data is the event payload.
	Data any

	// Channel is the broadcast scope.
	Channel string

	// EventType is the category of the event within its channel.
	EventType string

	// Source identifies the emitter, or nil if unknown.
	Source *SourceInfo

	// Time is when the event was created.
	Time time.Time
}

// NewEvent creates an event. Empty channel and event type fall back to
// DefaultChannel and DefaultEventType.
func NewEvent(data any, channel, eventType string, source *SourceInfo) Event {
	if channel == "" {
		channel = DefaultChannel
	}
	if eventType == "" {
		eventType = DefaultEventType
	}
	return Event{
		ID:        uuid.NewString(),
		Data:      data,
		Channel:   channel,
		EventType: eventType,
		Source:    source,
		Time:      time.Now(),
	}
}

// String renders a summary of the event with its payload truncated.
func (e Event) String() string {
	return fmt.Sprintf("Event(data=%s, channel=%q, event_type=%q, source=%s, time=%s)",
		schema.Truncate(fmt.Sprintf("%v", e.Data), schema.DisplayBudget),
		e.Channel, e.EventType, e.Source, e.Time.Format(time.RFC3339Nano))
}

// DataAs returns the event payload as a T. A non-nil *T payload is
// dereferenced.
func DataAs[T any](e Event) (T, bool) {
	if v, ok := e.Data.(T); ok {
		return v, true
	}
	if p, ok := e.Data.(*T); ok && p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}
