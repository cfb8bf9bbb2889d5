package catga

import (
	"context"
	"time"
)

// IdempotencyEntry is one cached result of a previously processed
// request id.
type IdempotencyEntry struct {
	RequestID string
	Payload   any
	ExpiresAt time.Time
}

// IdempotencyStore backs the idempotency pipeline behavior (§4.7).
// "Processed" means an entry exists and has not expired.
type IdempotencyStore interface {
	IsProcessed(ctx context.Context, requestID string) (bool, error)
	StoreResult(ctx context.Context, requestID string, value any, ttl time.Duration) error
	GetResult(ctx context.Context, requestID string) (any, bool, error)

	// Execute runs fn at most once per requestID among concurrent
	// callers: the first caller in runs fn and stores its result under
	// ttl; every concurrent caller racing the same requestID receives
	// that same result instead of invoking fn again (§8 invariant 5).
	// Implementations back this with a per-id critical section (e.g.
	// golang.org/x/sync/singleflight; see stores/mem).
	Execute(ctx context.Context, requestID string, ttl time.Duration, fn func() (any, error)) (any, error)
}

// IdempotencyBehavior returns a Behavior that de-duplicates requests
// through store, keying on keyOf(req). An empty key (keyOf returns "")
// opts the request out of de-duplication entirely.
func IdempotencyBehavior(store IdempotencyStore, ttl time.Duration, keyOf func(req any) string) Behavior {
	return func(ctx context.Context, req any, next Next) (any, error) {
		key := keyOf(req)
		if key == "" {
			return next(ctx, req)
		}
		return store.Execute(ctx, key, ttl, func() (any, error) {
			return next(ctx, req)
		})
	}
}
