package storetest

import (
	"testing"
	"time"

	"github.com/catga/catga"
)

// SchedulerFactory creates a new Scheduler instance for testing.
type SchedulerFactory func(t *testing.T) catga.Scheduler

// RunScheduler exercises §4.8/§8 invariant 8: GetDue returns exactly
// the messages due at or before now, in (dueAt, insertion) order, and
// consumes them so a later GetDue does not return them again.
func RunScheduler(t *testing.T, newStore SchedulerFactory) {
	t.Run("GetDue returns only due messages in order, once", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		base := time.Now()
		if _, err := s.Schedule(ctx, "later", base.Add(time.Hour)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := s.Schedule(ctx, "first", base.Add(-time.Minute)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := s.Schedule(ctx, "second", base.Add(-time.Second)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		due, err := s.GetDue(ctx, base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(due) != 2 {
			t.Fatalf("expected 2 due messages, got %d", len(due))
		}
		if due[0].Payload != "first" || due[1].Payload != "second" {
			t.Fatalf("expected due order [first second], got %v", due)
		}

		again, err := s.GetDue(ctx, base)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(again) != 0 {
			t.Fatalf("expected consumed messages not to be returned again, got %v", again)
		}
	})

	t.Run("Cancel prevents delivery", func(t *testing.T) {
		ctx := t.Context()
		s := newStore(t)

		due := time.Now().Add(-time.Minute)
		id, err := s.Schedule(ctx, "cancel-me", due)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ok, err := s.Cancel(ctx, id)
		if err != nil || !ok {
			t.Fatalf("expected cancel to succeed, got ok=%v err=%v", ok, err)
		}

		got, err := s.GetDue(ctx, time.Now())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected cancelled message to be absent, got %v", got)
		}

		ok, err = s.Cancel(ctx, id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Fatalf("expected second cancel of the same id to report false")
		}
	})
}
