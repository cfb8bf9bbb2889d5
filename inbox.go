package catga

import (
	"context"
	"time"
)

// InboxEntry records one inbound message for de-duplication.
type InboxEntry struct {
	MessageID string
	Payload   any
	ArrivedAt time.Time
}

// Inbox de-duplicates inbound messages: first write for a MessageID
// wins, later calls with the same id return false (§4.7).
type Inbox interface {
	TryAdd(ctx context.Context, messageID string, payload any) (bool, error)
}
