package storetest

import (
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/catga/catga"
)

// InboxFactory creates a new Inbox instance for testing.
type InboxFactory func(t *testing.T) catga.Inbox

// RunInbox exercises §4.7: first TryAdd for a message id wins, every
// later call with the same id returns false without replacing the
// stored payload.
func RunInbox(t *testing.T, newStore InboxFactory) {
	t.Run("first add wins, duplicates rejected", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		in := newStore(t)

		added, err := in.TryAdd(ctx, "msg-1", "first")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !added {
			t.Fatalf("expected first TryAdd to succeed")
		}

		added, err = in.TryAdd(ctx, "msg-1", "second")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if added {
			t.Fatalf("expected duplicate TryAdd to report false")
		}
	})

	t.Run("concurrent TryAdd for the same id has exactly one winner", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		in := newStore(t)

		var wins int64
		const n = 10
		var g errgroup.Group
		for i := 0; i < n; i++ {
			g.Go(func() error {
				added, err := in.TryAdd(ctx, "msg-race", "payload")
				if err != nil {
					return err
				}
				if added {
					atomic.AddInt64(&wins, 1)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if wins != 1 {
			t.Fatalf("expected exactly 1 winner, got %d", wins)
		}
	})
}
