package catga

import (
	"context"
	"time"
)

// Lock is the persisted shape of a held distributed lock.
type Lock struct {
	ResourceID string
	OwnerToken string
	ExpiresAt  time.Time
}

// DistributedLock is a named lease with TTL (§4.8). TryAcquire succeeds
// iff no unexpired lock exists for resource. Release clears a lock only
// if the caller still holds the current fencing token — a releaser
// superseded by a later acquisition (after its own lock expired) must
// not clear the new holder's lock.
type DistributedLock interface {
	// TryAcquire attempts to acquire resource for ttl. On success it
	// returns the fencing token the caller must present to Release.
	TryAcquire(ctx context.Context, resource string, ttl time.Duration) (token string, acquired bool, err error)

	// Release clears resource's lock, but only if token matches the
	// current holder's fencing token; otherwise it is a no-op.
	Release(ctx context.Context, resource string, token string) error
}
