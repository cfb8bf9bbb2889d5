package mem

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/catga/catga"
)

// DeadLetterQueue is an in-memory, FIFO catga.DeadLetterQueue.
type DeadLetterQueue struct {
	mu      sync.Mutex
	entries []catga.DeadLetterEntry
}

// NewDeadLetterQueue creates an empty in-memory DeadLetterQueue.
func NewDeadLetterQueue() *DeadLetterQueue {
	return &DeadLetterQueue{}
}

func (q *DeadLetterQueue) Enqueue(_ context.Context, message any, errInfo catga.DeadLetterError) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, catga.DeadLetterEntry{
		ID:         uuid.NewString(),
		Message:    message,
		Error:      errInfo,
		EnqueuedAt: time.Now(),
	})
	return nil
}

func (q *DeadLetterQueue) Dequeue(_ context.Context) (catga.DeadLetterEntry, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return catga.DeadLetterEntry{}, false, nil
	}
	head := q.entries[0]
	q.entries = q.entries[1:]
	return head, true, nil
}

func (q *DeadLetterQueue) Peek(_ context.Context, limit int) ([]catga.DeadLetterEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]catga.DeadLetterEntry, n)
	copy(out, q.entries[:n])
	return out, nil
}

var _ catga.DeadLetterQueue = (*DeadLetterQueue)(nil)
