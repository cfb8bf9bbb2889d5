package catga

import (
	"context"
	"time"
)

// Snapshot represents the persisted state of an aggregate at a specific
// stream version.
type Snapshot struct {
	StreamID string
	State    any       // the deserialized state
	Version  int64     // aggregate version at which the snapshot was taken
	Found    bool       // whether a snapshot exists
	At       time.Time // when it was taken
}

// SnapshotStore is the full history-aware contract (§4.2, §9 "enhanced vs
// plain" collapses into one store). LoadLatest is a facade returning only
// the newest entry; it never duplicates History's retrieval logic.
type SnapshotStore interface {
	// Save appends a new snapshot for streamID at version. Snapshots are
	// append-only: a stream may accumulate many over its lifetime.
	Save(ctx context.Context, streamID string, version int64, state any) error

	// LoadLatest returns the newest snapshot for streamID, or Found=false
	// if none exists.
	LoadLatest(ctx context.Context, streamID string) (Snapshot, error)

	// LoadAtVersion returns the newest snapshot with Version <= version,
	// or Found=false if none qualifies.
	LoadAtVersion(ctx context.Context, streamID string, version int64) (Snapshot, error)

	// History returns every snapshot for streamID, ordered by version
	// ascending.
	History(ctx context.Context, streamID string) ([]Snapshot, error)
}
