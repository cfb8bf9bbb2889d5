package storetest

import (
	"testing"

	"github.com/catga/catga"
)

// DeadLetterFactory creates a new DeadLetterQueue instance for testing.
type DeadLetterFactory func(t *testing.T) catga.DeadLetterQueue

// RunDeadLetter exercises §4.7: FIFO ordering, Peek is non-destructive,
// Dequeue consumes.
func RunDeadLetter(t *testing.T, newStore DeadLetterFactory) {
	t.Run("FIFO dequeue order", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		q := newStore(t)

		for i, msg := range []string{"first", "second", "third"} {
			err := q.Enqueue(ctx, msg, catga.DeadLetterError{Code: catga.CodeUnhandled, Message: "boom", Attempts: i + 1})
			if err != nil {
				t.Fatalf("enqueue failed: %v", err)
			}
		}

		for _, want := range []string{"first", "second", "third"} {
			entry, ok, err := q.Dequeue(ctx)
			if err != nil {
				t.Fatalf("dequeue failed: %v", err)
			}
			if !ok {
				t.Fatalf("expected an entry, got none")
			}
			if entry.Message != want {
				t.Fatalf("expected message %q, got %v", want, entry.Message)
			}
		}

		_, ok, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue failed: %v", err)
		}
		if ok {
			t.Fatalf("expected empty queue to report ok=false")
		}
	})

	t.Run("peek does not consume and respects limit", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		q := newStore(t)

		for _, msg := range []string{"a", "b", "c"} {
			if err := q.Enqueue(ctx, msg, catga.DeadLetterError{Code: catga.CodeUnhandled, Message: "boom", Attempts: 1}); err != nil {
				t.Fatalf("enqueue failed: %v", err)
			}
		}

		peeked, err := q.Peek(ctx, 2)
		if err != nil {
			t.Fatalf("peek failed: %v", err)
		}
		if len(peeked) != 2 || peeked[0].Message != "a" || peeked[1].Message != "b" {
			t.Fatalf("unexpected peek result: %+v", peeked)
		}

		entry, ok, err := q.Dequeue(ctx)
		if err != nil || !ok || entry.Message != "a" {
			t.Fatalf("expected peek to leave the queue untouched; dequeue got %+v ok=%v err=%v", entry, ok, err)
		}
	})
}
