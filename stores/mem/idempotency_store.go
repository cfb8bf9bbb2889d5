package mem

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/catga/catga"
)

// IdempotencyStore is an in-memory catga.IdempotencyStore. Execute uses
// a singleflight.Group to guarantee exactly one concurrent invocation
// per request id (§8 invariant 5): every caller racing the same id
// blocks on the same in-flight call and observes its result, win or
// fail, instead of re-running the handler.
type IdempotencyStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

type entry struct {
	value     any
	expiresAt time.Time
}

// NewIdempotencyStore creates an empty in-memory IdempotencyStore.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{entries: make(map[string]entry)}
}

func (s *IdempotencyStore) IsProcessed(_ context.Context, requestID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[requestID]
	if !ok {
		return false, nil
	}
	return time.Now().Before(e.expiresAt), nil
}

func (s *IdempotencyStore) StoreResult(_ context.Context, requestID string, value any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[requestID] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *IdempotencyStore) GetResult(_ context.Context, requestID string) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[requestID]
	if !ok || !time.Now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *IdempotencyStore) Execute(ctx context.Context, requestID string, ttl time.Duration, fn func() (any, error)) (any, error) {
	if cached, ok, _ := s.GetResult(ctx, requestID); ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(requestID, func() (any, error) {
		// Re-check under the singleflight critical section: another
		// caller may have completed and cached a result for this id
		// between our first GetResult and entering Do.
		if cached, ok, _ := s.GetResult(ctx, requestID); ok {
			return cached, nil
		}
		out, err := fn()
		if err != nil {
			return nil, err
		}
		_ = s.StoreResult(ctx, requestID, out, ttl)
		return out, nil
	})
	return v, err
}

var _ catga.IdempotencyStore = (*IdempotencyStore)(nil)
