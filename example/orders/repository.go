package main

import (
	"context"

	"github.com/catga/catga"
)

// Repository loads and saves Order aggregates, the same Load/Save split
// as the teacher's AccountRepository, adapted to catga's EventStore and
// (optional) SnapshotStore contracts.
type Repository struct {
	Store     catga.EventStore
	Snapshots catga.SnapshotStore // nil disables snapshot loading/saving
}

// NewRepository builds a Repository. snapshots may be nil.
func NewRepository(store catga.EventStore, snapshots catga.SnapshotStore) *Repository {
	return &Repository{Store: store, Snapshots: snapshots}
}

// Load rehydrates the Order identified by orderID: snapshot (if any)
// plus delta events on top.
func (r *Repository) Load(ctx context.Context, orderID string) (*Order, error) {
	streamID := catga.StreamID("Order", orderID)
	o := NewOrder()
	o.SetStreamID(streamID)

	fromVersion := int64(1)
	if r.Snapshots != nil {
		snap, err := r.Snapshots.LoadLatest(ctx, streamID)
		if err != nil {
			return nil, err
		}
		if snap.Found {
			restore(o, snap.State)
			fromVersion = o.Version() + 1
		}
	}

	result, err := r.Store.Read(ctx, streamID, fromVersion, 0)
	if err != nil {
		return nil, err
	}
	if result.Version == 0 {
		return nil, catga.ErrNotFound
	}
	catga.LoadFromHistory(o, result.Events)
	return o, nil
}

// Save appends the order's pending events under optimistic concurrency
// control and clears the pending buffer on success.
func (r *Repository) Save(ctx context.Context, o *Order, md catga.Metadata) error {
	events, expected := o.Flush()
	if len(events) == 0 {
		return nil
	}
	_, err := r.Store.Append(ctx, o.StreamID(), events, &expected, md)
	return err
}

// SaveSnapshot stores the order's current state, e.g. every N events, as
// an application-chosen policy; catga's SnapshotStore itself has no
// opinion on cadence.
func (r *Repository) SaveSnapshot(ctx context.Context, o *Order) error {
	if r.Snapshots == nil {
		return nil
	}
	return r.Snapshots.Save(ctx, o.StreamID(), o.Version(), snapshotOf(o))
}
