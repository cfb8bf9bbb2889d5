// Package storetest holds black-box compliance suites shared by every
// catga.EventStore (and friends) adapter, so stores/mem and stores/pgx
// are checked against the exact same behavior. Pattern kept from the
// teacher's internal/storetest/storetest.go: a Factory func(t) X plus a
// Run(t, factory) that exercises it with parallel subtests.
package storetest

import (
	"errors"
	"testing"

	"github.com/catga/catga"
)

type Opened struct{ ID string }

func (Opened) EventType() string { return "Opened" }

type Added struct{ N int }

func (Added) EventType() string { return "Added" }

// Factory creates a new EventStore instance for testing. Each test
// should receive a fresh, isolated instance.
type Factory func(t *testing.T) catga.EventStore

func ptr(v int64) *int64 { return &v }

// Run executes a suite of compliance tests that verify an EventStore
// implementation adheres to §4.1/§8. Each subtest runs in parallel, so
// stores must be concurrency-safe.
func Run(t *testing.T, newStore Factory) {
	t.Run("append/read/version", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		s := newStore(t)

		streamID := "Stream-1"

		v, err := s.Append(ctx, streamID, []catga.Event{Opened{ID: "1"}}, ptr(0), nil)
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if v != 1 {
			t.Fatalf("expected version 1, got %d", v)
		}

		v, err = s.Append(ctx, streamID, []catga.Event{Added{N: 5}}, ptr(v), nil)
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if v != 2 {
			t.Fatalf("expected version 2, got %d", v)
		}

		res, err := s.Read(ctx, streamID, 1, 0)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(res.Events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(res.Events))
		}
		if res.Version != 2 {
			t.Fatalf("expected version 2, got %d", res.Version)
		}

		gv, err := s.GetStreamVersion(ctx, streamID)
		if err != nil {
			t.Fatalf("get stream version failed: %v", err)
		}
		if gv != 2 {
			t.Fatalf("expected GetStreamVersion=2, got %d", gv)
		}
	})

	t.Run("append at tail when expectedVersion is nil", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		s := newStore(t)
		streamID := "Stream-tail"

		if _, err := s.Append(ctx, streamID, []catga.Event{Opened{ID: "x"}}, nil, nil); err != nil {
			t.Fatalf("append failed: %v", err)
		}
		v, err := s.Append(ctx, streamID, []catga.Event{Added{N: 1}}, nil, nil)
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if v != 2 {
			t.Fatalf("expected version 2, got %d", v)
		}
	})

	t.Run("version conflict", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		s := newStore(t)
		streamID := "Stream-2"

		if _, err := s.Append(ctx, streamID, []catga.Event{Opened{ID: "2"}}, ptr(0), nil); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		_, err := s.Append(ctx, streamID, []catga.Event{Added{N: 1}}, ptr(0), nil)

		var vc *catga.VersionConflictError
		if !errors.As(err, &vc) {
			t.Fatalf("expected VersionConflictError, got %v", err)
		}
		if !errors.Is(err, catga.ErrConcurrencyConflict) {
			t.Fatalf("expected errors.Is(err, ErrConcurrencyConflict) to hold, got %v", err)
		}
	})

	t.Run("readAll global ordering across streams", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()
		s := newStore(t)

		if _, err := s.Append(ctx, "Order-1", []catga.Event{Opened{ID: "o1"}}, ptr(0), nil); err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if _, err := s.Append(ctx, "Order-2", []catga.Event{Opened{ID: "o2"}}, ptr(0), nil); err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if _, err := s.Append(ctx, "Order-1", []catga.Event{Added{N: 1}}, ptr(1), nil); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		envs, err := s.ReadAll(ctx, 0, 0)
		if err != nil {
			t.Fatalf("readAll failed: %v", err)
		}
		if len(envs) != 3 {
			t.Fatalf("expected 3 envelopes, got %d", len(envs))
		}
		for i := 1; i < len(envs); i++ {
			if envs[i].GlobalPosition <= envs[i-1].GlobalPosition {
				t.Fatalf("global position not monotonic: %+v", envs)
			}
		}

		rest, err := s.ReadAll(ctx, envs[0].GlobalPosition, 0)
		if err != nil {
			t.Fatalf("readAll failed: %v", err)
		}
		if len(rest) != 2 {
			t.Fatalf("expected 2 remaining envelopes, got %d", len(rest))
		}
	})
}
