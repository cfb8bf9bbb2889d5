package mem

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/catga/catga"
)

// Scheduler is an in-memory catga.Scheduler backed by a min-heap ordered
// by (dueAt, insertion sequence), the same ordered-work-queue shape as
// cuemby/warren's pkg/scheduler, repurposed here from container
// reconciliation work items to due messages.
type Scheduler struct {
	mu  sync.Mutex
	pq  schedulerHeap
	seq int64
	ids map[string]*scheduledItem
}

type scheduledItem struct {
	catga.ScheduledMessage
	seq       int64
	cancelled bool
	index     int
}

type schedulerHeap []*scheduledItem

func (h schedulerHeap) Len() int { return len(h) }
func (h schedulerHeap) Less(i, j int) bool {
	if h[i].DueAt.Equal(h[j].DueAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].DueAt.Before(h[j].DueAt)
}
func (h schedulerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *schedulerHeap) Push(x any) {
	item := x.(*scheduledItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *schedulerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// NewScheduler creates an empty in-memory Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{ids: make(map[string]*scheduledItem)}
}

func (s *Scheduler) Schedule(_ context.Context, payload any, dueAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.seq++
	item := &scheduledItem{
		ScheduledMessage: catga.ScheduledMessage{ID: id, Payload: payload, DueAt: dueAt},
		seq:              s.seq,
	}
	heap.Push(&s.pq, item)
	s.ids[id] = item
	return id, nil
}

func (s *Scheduler) Cancel(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.ids[id]
	if !ok || item.cancelled {
		return false, nil
	}
	item.cancelled = true
	if item.index >= 0 {
		heap.Remove(&s.pq, item.index)
	}
	delete(s.ids, id)
	return true, nil
}

// GetDue pops every message with DueAt <= now, in (DueAt, insertion
// order), removing them from the queue: once returned a message is
// consumed and will not be returned again (§4.8, §8 invariant 8).
func (s *Scheduler) GetDue(_ context.Context, now time.Time) ([]catga.ScheduledMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []catga.ScheduledMessage
	for s.pq.Len() > 0 && !s.pq[0].DueAt.After(now) {
		item := heap.Pop(&s.pq).(*scheduledItem)
		delete(s.ids, item.ID)
		due = append(due, item.ScheduledMessage)
	}
	return due, nil
}

var _ catga.Scheduler = (*Scheduler)(nil)
