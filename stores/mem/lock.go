package mem

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/catga/catga"
)

// DistributedLock is an in-memory catga.DistributedLock. Each successful
// TryAcquire mints a fresh fencing token; Release only clears the lock
// if the presented token still matches the current holder, so a caller
// whose lease already expired and was reacquired by someone else cannot
// clear the new holder's lock (§4.8).
type DistributedLock struct {
	mu    sync.Mutex
	locks map[string]catga.Lock
}

// NewDistributedLock creates an empty in-memory DistributedLock.
func NewDistributedLock() *DistributedLock {
	return &DistributedLock{locks: make(map[string]catga.Lock)}
}

func (l *DistributedLock) TryAcquire(_ context.Context, resource string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.locks[resource]; ok && time.Now().Before(existing.ExpiresAt) {
		return "", false, nil
	}

	token := uuid.NewString()
	l.locks[resource] = catga.Lock{
		ResourceID: resource,
		OwnerToken: token,
		ExpiresAt:  time.Now().Add(ttl),
	}
	return token, true, nil
}

func (l *DistributedLock) Release(_ context.Context, resource string, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.locks[resource]
	if !ok {
		return nil
	}
	if existing.OwnerToken != token {
		// Stale releaser: either expired-and-reacquired, or never held
		// the lock. Leave the current holder untouched.
		return nil
	}
	delete(l.locks, resource)
	return nil
}

var _ catga.DistributedLock = (*DistributedLock)(nil)
