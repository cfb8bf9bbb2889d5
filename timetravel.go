package catga

import "context"

// GetStateAtVersion implements §4.3's time-travel algorithm: it starts
// from the newest snapshot with Version <= version (if any), replays
// events from snapshot.Version+1 up to min(version, current stream
// version), and returns the resulting aggregate. Versions beyond the
// stream's current version clamp down to it; an unknown stream returns
// ErrNotFound.
//
// restore is called once with the snapshot's State (nil if none was
// found) to seed the aggregate's pre-replay fields (e.g. via a
// type-asserting switch in the caller's own restore function), mirroring
// how the teacher's example/account decodes a snapshot before replay.
func GetStateAtVersion[T Aggregate](
	ctx context.Context,
	factory func() T,
	store EventStore,
	snapshots SnapshotStore,
	streamID string,
	version int64,
	restore func(agg T, snapshotState any),
) (T, error) {
	var zero T

	current, err := store.GetStreamVersion(ctx, streamID)
	if err != nil {
		return zero, err
	}
	if current == 0 {
		return zero, ErrNotFound
	}
	if version > current {
		version = current
	}

	agg := factory()

	fromVersion := int64(1)
	restored := false
	if snapshots != nil {
		snap, err := snapshots.LoadAtVersion(ctx, streamID, version)
		if err != nil {
			return zero, err
		}
		if snap.Found {
			restore(agg, snap.State)
			restored = true
			fromVersion = snap.Version + 1
		}
	}
	if !restored && restore != nil {
		restore(agg, nil)
	}

	if fromVersion > version {
		return agg, nil
	}

	result, err := store.Read(ctx, streamID, fromVersion, int(version-fromVersion+1))
	if err != nil {
		return zero, err
	}
	LoadFromHistory(agg, result.Events)
	return agg, nil
}
