package storetest

import (
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/catga/catga"
)

// IdempotencyFactory creates a new IdempotencyStore instance for testing.
type IdempotencyFactory func(t *testing.T) catga.IdempotencyStore

// RunIdempotency exercises §8 invariant 5: N concurrent callers racing
// the same request id must invoke fn exactly once between them.
func RunIdempotency(t *testing.T, newStore IdempotencyFactory) {
	t.Run("concurrent Execute calls share one invocation", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		var calls int64
		const n = 10
		var g errgroup.Group
		results := make([]any, n)
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error {
				v, err := s.Execute(ctx, "req-1", time.Minute, func() (any, error) {
					atomic.AddInt64(&calls, 1)
					return "result", nil
				})
				results[i] = v
				return err
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected exactly 1 invocation, got %d", calls)
		}
		for i, v := range results {
			if v != "result" {
				t.Fatalf("caller %d got %v, want %q", i, v, "result")
			}
		}
	})

	t.Run("distinct ids invoke independently", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		var calls int64
		for _, id := range []string{"a", "b", "c"} {
			_, err := s.Execute(ctx, id, time.Minute, func() (any, error) {
				atomic.AddInt64(&calls, 1)
				return nil, nil
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if calls != 3 {
			t.Fatalf("expected 3 invocations across distinct ids, got %d", calls)
		}
	})

	t.Run("expired entry is reprocessed", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		if err := s.StoreResult(ctx, "req-2", "v1", -time.Second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		processed, err := s.IsProcessed(ctx, "req-2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if processed {
			t.Fatalf("expected expired entry to report unprocessed")
		}
	})
}
