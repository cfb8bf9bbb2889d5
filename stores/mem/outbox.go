package mem

import (
	"context"
	"sync"
	"time"

	"github.com/catga/catga"
)

// Outbox is an in-memory catga.Outbox. Entries transition
// pending -> published (terminal).
type Outbox struct {
	mu      sync.Mutex
	entries map[string]*catga.OutboxEntry
	order   []string
}

// NewOutbox creates an empty in-memory Outbox.
func NewOutbox() *Outbox {
	return &Outbox{entries: make(map[string]*catga.OutboxEntry)}
}

func (o *Outbox) Add(_ context.Context, entry catga.OutboxEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.State == "" {
		entry.State = catga.OutboxPending
	}
	cp := entry
	o.entries[entry.ID] = &cp
	o.order = append(o.order, entry.ID)
	return nil
}

func (o *Outbox) GetPending(_ context.Context, limit int) ([]catga.OutboxEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []catga.OutboxEntry
	for _, id := range o.order {
		e := o.entries[id]
		if e.State != catga.OutboxPending {
			continue
		}
		out = append(out, *e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (o *Outbox) MarkPublished(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.entries[id]
	if !ok {
		return catga.ErrNotFound
	}
	now := time.Now()
	e.State = catga.OutboxPublished
	e.PublishedAt = &now
	return nil
}

var _ catga.Outbox = (*Outbox)(nil)
