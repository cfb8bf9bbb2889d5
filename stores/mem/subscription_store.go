package mem

import (
	"context"
	"sync"

	"github.com/catga/catga"
)

// SubscriptionStore is an in-memory catga.SubscriptionStore.
type SubscriptionStore struct {
	mu   sync.RWMutex
	subs map[string]catga.Subscription
}

// NewSubscriptionStore creates an empty in-memory SubscriptionStore.
func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{subs: make(map[string]catga.Subscription)}
}

func (s *SubscriptionStore) Save(_ context.Context, sub catga.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.Name] = sub
	return nil
}

func (s *SubscriptionStore) Load(_ context.Context, name string) (catga.Subscription, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[name]
	return sub, ok, nil
}

func (s *SubscriptionStore) List(_ context.Context) ([]catga.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catga.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	return out, nil
}

var _ catga.SubscriptionStore = (*SubscriptionStore)(nil)

// CheckpointStore is an in-memory catga.CheckpointStore, keyed by
// projection (or subscription) name.
type CheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]int64
}

// NewCheckpointStore creates an empty in-memory CheckpointStore.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{checkpoints: make(map[string]int64)}
}

func (c *CheckpointStore) GetCheckpoint(_ context.Context, name string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.checkpoints[name], nil
}

func (c *CheckpointStore) SaveCheckpoint(_ context.Context, name string, position int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkpoints[name] = position
	return nil
}

var _ catga.CheckpointStore = (*CheckpointStore)(nil)
