package storetest

import (
	"testing"

	"github.com/catga/catga"
)

// OutboxFactory creates a new Outbox instance for testing.
type OutboxFactory func(t *testing.T) catga.Outbox

// RunOutbox exercises §4.7: GetPending returns only pending entries,
// and MarkPublished is a terminal, single-entry-atomic transition.
func RunOutbox(t *testing.T, newStore OutboxFactory) {
	t.Run("getPending then markPublished removes the entry from pending", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		box := newStore(t)

		entry := catga.OutboxEntry{ID: "evt-1", Type: "OrderOpened", PayloadBytes: []byte(`{}`)}
		if err := box.Add(ctx, entry); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		pending, err := box.GetPending(ctx, 10)
		if err != nil {
			t.Fatalf("getPending failed: %v", err)
		}
		if len(pending) != 1 || pending[0].ID != "evt-1" || pending[0].State != catga.OutboxPending {
			t.Fatalf("expected 1 pending entry in pending state, got %+v", pending)
		}

		if err := box.MarkPublished(ctx, "evt-1"); err != nil {
			t.Fatalf("markPublished failed: %v", err)
		}

		pending, err = box.GetPending(ctx, 10)
		if err != nil {
			t.Fatalf("getPending failed: %v", err)
		}
		if len(pending) != 0 {
			t.Fatalf("expected 0 pending entries after publish, got %d", len(pending))
		}
	})

	t.Run("markPublished on an unknown id reports NotFound", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		box := newStore(t)

		err := box.MarkPublished(ctx, "missing")
		if err == nil {
			t.Fatalf("expected an error for an unknown outbox entry")
		}
	})

	t.Run("getPending honors limit and insertion order", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		box := newStore(t)

		for _, id := range []string{"a", "b", "c"} {
			if err := box.Add(ctx, catga.OutboxEntry{ID: id, Type: "T", PayloadBytes: []byte(`{}`)}); err != nil {
				t.Fatalf("add failed: %v", err)
			}
		}

		pending, err := box.GetPending(ctx, 2)
		if err != nil {
			t.Fatalf("getPending failed: %v", err)
		}
		if len(pending) != 2 {
			t.Fatalf("expected limit to cap results at 2, got %d", len(pending))
		}
		if pending[0].ID != "a" || pending[1].ID != "b" {
			t.Fatalf("expected insertion order [a b], got %+v", pending)
		}
	})
}
