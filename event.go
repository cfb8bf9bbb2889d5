package catga

import (
	"fmt"
	"time"
)

// Event is a semantic alias of `any` that represents a domain event payload.
type Event any

// EventEnvelope is a persisted event together with its placement: the
// stream it belongs to, its per-stream version, and its position in the
// store's global append order (used by ReadAll/subscriptions).
type EventEnvelope struct {
	MessageID      MessageID
	StreamID       string
	Version        int64
	GlobalPosition int64
	RecordedAt     time.Time
	Event          Event
	Metadata       Metadata
}

// EventType returns the canonical name for a given event.
// If the event implements `EventType() string`, that value is used.
// Otherwise, it falls back to the Go type name (e.g., "account.AccountOpened").
func EventType(e Event) string {
	if named, ok := e.(interface{ EventType() string }); ok {
		return named.EventType()
	}
	return fmt.Sprintf("%T", e)
}
