package storetest

import (
	"testing"

	"github.com/catga/catga"
)

// SubscriptionStoreFactory creates a new SubscriptionStore instance for
// testing.
type SubscriptionStoreFactory func(t *testing.T) catga.SubscriptionStore

// RunSubscriptionStore exercises §6: Save/Load round trip a
// Subscription by name, List enumerates every saved one.
func RunSubscriptionStore(t *testing.T, newStore SubscriptionStoreFactory) {
	t.Run("save/load round trip", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		s := newStore(t)

		sub := catga.Subscription{Name: "orders", StreamPattern: "Order-*", Position: 5, ProcessedCount: 5, State: catga.SubscriptionActive}
		if err := s.Save(ctx, sub); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		got, ok, err := s.Load(ctx, "orders")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if !ok || got != sub {
			t.Fatalf("expected %+v, got %+v (ok=%v)", sub, got, ok)
		}
	})

	t.Run("load of unknown name reports not found", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		s := newStore(t)

		_, ok, err := s.Load(ctx, "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Fatalf("expected ok=false for an unknown subscription")
		}
	})

	t.Run("list enumerates every saved subscription", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		s := newStore(t)

		for _, name := range []string{"a", "b", "c"} {
			if err := s.Save(ctx, catga.Subscription{Name: name, StreamPattern: "*", State: catga.SubscriptionActive}); err != nil {
				t.Fatalf("save failed: %v", err)
			}
		}

		all, err := s.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 subscriptions, got %d", len(all))
		}
	})
}

// CheckpointFactory creates a new CheckpointStore instance for testing.
type CheckpointFactory func(t *testing.T) catga.CheckpointStore

// RunCheckpointStore exercises §6: an unset checkpoint defaults to 0,
// and SaveCheckpoint/GetCheckpoint round-trip by name.
func RunCheckpointStore(t *testing.T, newStore CheckpointFactory) {
	t.Run("unset checkpoint defaults to 0", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		c := newStore(t)

		pos, err := c.GetCheckpoint(ctx, "projection-x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pos != 0 {
			t.Fatalf("expected default checkpoint 0, got %d", pos)
		}
	})

	t.Run("save/get round trip, keyed independently by name", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		c := newStore(t)

		if err := c.SaveCheckpoint(ctx, "projection-x", 42); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if err := c.SaveCheckpoint(ctx, "projection-y", 7); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		x, err := c.GetCheckpoint(ctx, "projection-x")
		if err != nil || x != 42 {
			t.Fatalf("expected projection-x=42, got %d (err=%v)", x, err)
		}
		y, err := c.GetCheckpoint(ctx, "projection-y")
		if err != nil || y != 7 {
			t.Fatalf("expected projection-y=7, got %d (err=%v)", y, err)
		}
	})
}
