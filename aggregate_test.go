package catga_test

import (
	"testing"

	"github.com/catga/catga"
)

// counterOpened and counterIncremented are the fixture events shared by
// the aggregate, timetravel and mediator tests in this package.
type counterOpened struct{ ID string }
type counterIncremented struct{ By int64 }

func (counterOpened) EventType() string      { return "CounterOpened" }
func (counterIncremented) EventType() string { return "CounterIncremented" }

// counter is a minimal catga.Aggregate fixture: an embedded Base plus a
// running total, enough to exercise Raise/Apply/Flush/Version and
// snapshot restore without pulling in a full worked example.
type counter struct {
	catga.Base
	id    string
	total int64
}

func newCounter() *counter {
	c := &counter{}
	c.Init("", c.apply)
	return c
}

func (c *counter) apply(e catga.Event) {
	switch ev := e.(type) {
	case counterOpened:
		c.id = ev.ID
	case counterIncremented:
		c.total += ev.By
	}
}

func (c *counter) Open(id string) {
	c.SetStreamID(catga.StreamID("Counter", id))
	c.Raise(counterOpened{ID: id})
}

func (c *counter) Increment(by int64) {
	c.Raise(counterIncremented{By: by})
}

type counterSnapshot struct {
	ID      string
	Total   int64
	Version int64
}

func snapshotCounter(c *counter) counterSnapshot {
	return counterSnapshot{ID: c.id, Total: c.total, Version: c.Version()}
}

func restoreCounter(c *counter, state any) {
	if state == nil {
		return
	}
	snap := state.(counterSnapshot)
	c.id = snap.ID
	c.total = snap.Total
	c.SetStreamID(catga.StreamID("Counter", snap.ID))
	c.SetVersion(snap.Version)
}

var _ catga.Aggregate = (*counter)(nil)

func TestBase_RaiseAppliesAndBuffers(t *testing.T) {
	t.Parallel()
	c := newCounter()
	c.Open("A")
	c.Increment(5)
	c.Increment(3)

	if c.Version() != 3 {
		t.Fatalf("expected version 3, got %d", c.Version())
	}
	if c.total != 8 {
		t.Fatalf("expected total 8, got %d", c.total)
	}

	events, expected := c.Flush()
	if len(events) != 3 {
		t.Fatalf("expected 3 pending events, got %d", len(events))
	}
	if expected != 0 {
		t.Fatalf("expected expectedVersion 0 (nothing committed before), got %d", expected)
	}

	// Flush clears the buffer; a second call returns nothing.
	events, _ = c.Flush()
	if len(events) != 0 {
		t.Fatalf("expected empty buffer after flush, got %d events", len(events))
	}
}

func TestBase_FlushExpectedVersionAccountsForPriorCommits(t *testing.T) {
	t.Parallel()
	c := newCounter()
	c.Open("A")
	c.Flush() // simulate a prior commit of the Open event.

	c.Increment(1)
	c.Increment(1)
	_, expected := c.Flush()
	if expected != 1 {
		t.Fatalf("expected expectedVersion 1 (one event already committed), got %d", expected)
	}
}

func TestLoadFromHistory_ReplaysWithoutBuffering(t *testing.T) {
	t.Parallel()
	c := newCounter()
	catga.LoadFromHistory(c, []catga.Event{counterOpened{ID: "A"}, counterIncremented{By: 10}})

	if c.Version() != 2 {
		t.Fatalf("expected version 2, got %d", c.Version())
	}
	if c.total != 10 {
		t.Fatalf("expected total 10, got %d", c.total)
	}
	if events, _ := c.Flush(); len(events) != 0 {
		t.Fatalf("expected replay to leave the pending buffer empty, got %d events", len(events))
	}
}
