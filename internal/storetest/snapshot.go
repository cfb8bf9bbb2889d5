package storetest

import (
	"testing"

	"github.com/catga/catga"
)

// SnapshotFactory creates a new SnapshotStore instance for testing.
type SnapshotFactory func(t *testing.T) catga.SnapshotStore

// RunSnapshot exercises §4.2/§8 invariant 7: Save is append-only,
// LoadLatest returns the newest entry, and LoadAtVersion returns the
// newest entry with Version <= the requested version.
func RunSnapshot(t *testing.T, newStore SnapshotFactory) {
	t.Run("save/loadLatest round trip", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		s := newStore(t)

		if err := s.Save(ctx, "Order-A", 3, "state-v3"); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		snap, err := s.LoadLatest(ctx, "Order-A")
		if err != nil {
			t.Fatalf("loadLatest failed: %v", err)
		}
		if !snap.Found || snap.Version != 3 || snap.State != "state-v3" {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
	})

	t.Run("loadLatest on unknown stream reports not found", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		s := newStore(t)

		snap, err := s.LoadLatest(ctx, "Order-missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if snap.Found {
			t.Fatalf("expected Found=false, got %+v", snap)
		}
	})

	t.Run("history keeps every snapshot, loadAtVersion picks the newest qualifying one", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		s := newStore(t)

		if err := s.Save(ctx, "Order-B", 3, "v3"); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if err := s.Save(ctx, "Order-B", 6, "v6"); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		history, err := s.History(ctx, "Order-B")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if len(history) != 2 {
			t.Fatalf("expected 2 snapshots in history, got %d", len(history))
		}

		at4, err := s.LoadAtVersion(ctx, "Order-B", 4)
		if err != nil {
			t.Fatalf("loadAtVersion failed: %v", err)
		}
		if !at4.Found || at4.Version != 3 {
			t.Fatalf("expected the v3 snapshot for version<=4, got %+v", at4)
		}

		at6, err := s.LoadAtVersion(ctx, "Order-B", 6)
		if err != nil {
			t.Fatalf("loadAtVersion failed: %v", err)
		}
		if !at6.Found || at6.Version != 6 {
			t.Fatalf("expected the v6 snapshot for version<=6, got %+v", at6)
		}

		at2, err := s.LoadAtVersion(ctx, "Order-B", 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if at2.Found {
			t.Fatalf("expected no snapshot to qualify for version<=2, got %+v", at2)
		}
	})
}
