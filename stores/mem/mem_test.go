package mem_test

import (
	"testing"

	"github.com/catga/catga"
	"github.com/catga/catga/internal/storetest"
	"github.com/catga/catga/stores/mem"
)

func TestEventStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) catga.EventStore {
		return mem.NewEventStore()
	})
}

func TestSnapshotStore(t *testing.T) {
	storetest.RunSnapshot(t, func(t *testing.T) catga.SnapshotStore {
		return mem.NewSnapshotStore()
	})
}

func TestSubscriptionStore(t *testing.T) {
	storetest.RunSubscriptionStore(t, func(t *testing.T) catga.SubscriptionStore {
		return mem.NewSubscriptionStore()
	})
}

func TestCheckpointStore(t *testing.T) {
	storetest.RunCheckpointStore(t, func(t *testing.T) catga.CheckpointStore {
		return mem.NewCheckpointStore()
	})
}

func TestIdempotencyStore(t *testing.T) {
	storetest.RunIdempotency(t, func(t *testing.T) catga.IdempotencyStore {
		return mem.NewIdempotencyStore()
	})
}

func TestInbox(t *testing.T) {
	storetest.RunInbox(t, func(t *testing.T) catga.Inbox {
		return mem.NewInbox()
	})
}

func TestOutbox(t *testing.T) {
	storetest.RunOutbox(t, func(t *testing.T) catga.Outbox {
		return mem.NewOutbox()
	})
}

func TestDeadLetterQueue(t *testing.T) {
	storetest.RunDeadLetter(t, func(t *testing.T) catga.DeadLetterQueue {
		return mem.NewDeadLetterQueue()
	})
}

func TestDistributedLock(t *testing.T) {
	storetest.RunLock(t, func(t *testing.T) catga.DistributedLock {
		return mem.NewDistributedLock()
	})
}

func TestScheduler(t *testing.T) {
	storetest.RunScheduler(t, func(t *testing.T) catga.Scheduler {
		return mem.NewScheduler()
	})
}
