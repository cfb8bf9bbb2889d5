package mem

import (
	"context"
	"sync"
	"time"

	"github.com/catga/catga"
)

// Inbox is an in-memory catga.Inbox: first write for a message id wins.
type Inbox struct {
	mu      sync.Mutex
	entries map[string]catga.InboxEntry
}

// NewInbox creates an empty in-memory Inbox.
func NewInbox() *Inbox {
	return &Inbox{entries: make(map[string]catga.InboxEntry)}
}

func (i *Inbox) TryAdd(_ context.Context, messageID string, payload any) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, exists := i.entries[messageID]; exists {
		return false, nil
	}
	i.entries[messageID] = catga.InboxEntry{MessageID: messageID, Payload: payload, ArrivedAt: time.Now()}
	return true, nil
}

var _ catga.Inbox = (*Inbox)(nil)
