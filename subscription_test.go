package catga_test

import (
	"context"
	"errors"
	"testing"

	"github.com/catga/catga"
)

// fakeSubscriptionStore is a minimal, single-goroutine SubscriptionStore
// fixture, mirroring fakeEventStore/fakeSnapshotStore in
// timetravel_test.go: just enough
// of §6 to drive a Runner from the root package's own tests.
type fakeSubscriptionStore struct {
	subs map[string]catga.Subscription
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: make(map[string]catga.Subscription)}
}

func (s *fakeSubscriptionStore) Save(_ context.Context, sub catga.Subscription) error {
	s.subs[sub.Name] = sub
	return nil
}

func (s *fakeSubscriptionStore) Load(_ context.Context, name string) (catga.Subscription, bool, error) {
	sub, ok := s.subs[name]
	return sub, ok, nil
}

func (s *fakeSubscriptionStore) List(_ context.Context) ([]catga.Subscription, error) {
	out := make([]catga.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	return out, nil
}

// seedOrderStreams reproduces scenario S6 (spec.md §8): three streams,
// Order-1 and Order-2 each with two events, Customer-1 with one, appended
// in an order that interleaves the two patterns so a subscription must
// actually filter by pattern rather than happening to read a contiguous
// run of Order-* events.
func seedOrderStreams(t *testing.T, store *fakeEventStore) {
	t.Helper()
	ctx := context.Background()
	appends := []struct {
		streamID string
		event    catga.Event
	}{
		{"Order-1", counterOpened{ID: "1"}},
		{"Customer-1", counterOpened{ID: "cust-1"}},
		{"Order-1", counterIncremented{By: 1}},
		{"Order-2", counterOpened{ID: "2"}},
		{"Order-2", counterIncremented{By: 2}},
	}
	for _, a := range appends {
		if _, err := store.Append(ctx, a.streamID, []catga.Event{a.event}, nil, nil); err != nil {
			t.Fatalf("seed append to %s failed: %v", a.streamID, err)
		}
	}
}

func TestRunner_RunOnce_DeliversOnlyMatchingStreamsInGlobalOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeEventStore()
	seedOrderStreams(t, store)
	subs := newFakeSubscriptionStore()

	var seen []string
	r := &catga.Runner{
		Name:          "orders",
		StreamPattern: "Order-*",
		Store:         store,
		Subscriptions: subs,
		Handler: func(_ context.Context, env catga.EventEnvelope) error {
			seen = append(seen, env.StreamID)
			return nil
		},
	}

	if err := r.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	// Four Order-* events total (two per stream); Customer-1's single
	// event must never be delivered.
	if len(seen) != 4 {
		t.Fatalf("expected 4 delivered envelopes, got %d: %v", len(seen), seen)
	}
	for _, streamID := range seen {
		if streamID == "Customer-1" {
			t.Fatalf("Customer-1 must never be delivered to an Order-* subscription, got %v", seen)
		}
	}
	// Global-position order: Order-1, Order-1, Order-2, Order-2 (see the
	// interleaving in seedOrderStreams).
	want := []string{"Order-1", "Order-1", "Order-2", "Order-2"}
	for i, streamID := range want {
		if seen[i] != streamID {
			t.Fatalf("expected delivery order %v, got %v", want, seen)
		}
	}

	sub, ok, err := subs.Load(ctx, "orders")
	if err != nil {
		t.Fatalf("load checkpoint failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected a persisted subscription record")
	}
	// The checkpoint lands on the last delivered envelope (the second
	// Order-2 event); the skipped Customer-1 envelope at position 2 lies
	// before it.
	if sub.Position != 5 {
		t.Fatalf("expected checkpoint advanced to global position 5, got %d", sub.Position)
	}
	if sub.ProcessedCount != 4 {
		t.Fatalf("expected processedCount 4, got %d", sub.ProcessedCount)
	}
}

func TestRunner_RunOnce_IsIdempotentOnceCaughtUp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeEventStore()
	seedOrderStreams(t, store)
	subs := newFakeSubscriptionStore()

	count := 0
	r := &catga.Runner{
		Name:          "orders",
		StreamPattern: "Order-*",
		Store:         store,
		Subscriptions: subs,
		Handler: func(_ context.Context, _ catga.EventEnvelope) error {
			count++
			return nil
		},
	}

	if err := r.RunOnce(ctx); err != nil {
		t.Fatalf("first RunOnce failed: %v", err)
	}
	if err := r.RunOnce(ctx); err != nil {
		t.Fatalf("second RunOnce failed: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected each Order-* event invoked exactly once across both passes, got %d invocations", count)
	}
}

func TestRunner_RunOnce_AdvanceAndLogAdvancesPastFailingEnvelope(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeEventStore()
	seedOrderStreams(t, store)
	subs := newFakeSubscriptionStore()

	failOn := "Order-1"
	attempts := 0
	r := &catga.Runner{
		Name:          "orders",
		StreamPattern: "Order-*",
		Store:         store,
		Subscriptions: subs,
		Policy:        catga.AdvanceAndLog,
		Handler: func(_ context.Context, env catga.EventEnvelope) error {
			attempts++
			if env.StreamID == failOn {
				return errors.New("boom")
			}
			return nil
		},
	}

	if err := r.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if attempts != 4 {
		t.Fatalf("expected every Order-* envelope attempted despite failures, got %d attempts", attempts)
	}

	sub, ok, err := subs.Load(ctx, "orders")
	if err != nil || !ok {
		t.Fatalf("expected a persisted subscription record (err=%v, ok=%v)", err, ok)
	}
	if sub.Position != 5 {
		t.Fatalf("AdvanceAndLog must advance the checkpoint past the failing envelope, expected 5, got %d", sub.Position)
	}
	if sub.ProcessedCount != 4 {
		t.Fatalf("AdvanceAndLog must still count the failing envelope as processed, expected 4, got %d", sub.ProcessedCount)
	}
}

func TestRunner_RunOnce_HaltAndRetryStopsAtFailingEnvelope(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeEventStore()
	seedOrderStreams(t, store)
	subs := newFakeSubscriptionStore()

	failOn := "Order-2"
	var seen []string
	r := &catga.Runner{
		Name:          "orders",
		StreamPattern: "Order-*",
		Store:         store,
		Subscriptions: subs,
		Policy:        catga.HaltAndRetry,
		Handler: func(_ context.Context, env catga.EventEnvelope) error {
			if env.StreamID == failOn {
				return errors.New("boom")
			}
			seen = append(seen, env.StreamID)
			return nil
		},
	}

	if err := r.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	// Both Order-1 events precede the first Order-2 event in global
	// order, so they are processed before the halt.
	if len(seen) != 2 {
		t.Fatalf("expected 2 envelopes processed before the halt, got %d: %v", len(seen), seen)
	}

	sub, ok, err := subs.Load(ctx, "orders")
	if err != nil || !ok {
		t.Fatalf("expected a persisted subscription record (err=%v, ok=%v)", err, ok)
	}
	// The checkpoint sits at the last successfully processed envelope
	// (global position 3, the second Order-1 event); the failing
	// Order-2 envelope at position 4 is retried from there, not skipped.
	if sub.Position != 3 {
		t.Fatalf("HaltAndRetry must not advance past the failing envelope, expected checkpoint 3, got %d", sub.Position)
	}

	// A second RunOnce re-reads from the halted checkpoint and retries
	// the same failing envelope again rather than replaying what
	// already succeeded.
	if err := r.RunOnce(ctx); err != nil {
		t.Fatalf("second RunOnce failed: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected no additional envelopes processed on retry of a still-failing envelope, got %d: %v", len(seen), seen)
	}
}

func TestRunner_RunOnce_PausedSubscriptionDoesNotAdvance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeEventStore()
	seedOrderStreams(t, store)
	subs := newFakeSubscriptionStore()
	if err := subs.Save(ctx, catga.Subscription{Name: "orders", StreamPattern: "Order-*", State: catga.SubscriptionPaused}); err != nil {
		t.Fatalf("seed paused subscription failed: %v", err)
	}

	called := false
	r := &catga.Runner{
		Name:          "orders",
		StreamPattern: "Order-*",
		Store:         store,
		Subscriptions: subs,
		Handler: func(_ context.Context, _ catga.EventEnvelope) error {
			called = true
			return nil
		},
	}

	if err := r.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if called {
		t.Fatalf("a paused subscription must not invoke its handler")
	}
}
