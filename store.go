package catga

import (
	"context"
)

// ReadResult is the outcome of reading a single stream: its events from
// the requested version onward, and the stream's current version.
type ReadResult struct {
	Events  []Event
	Version int64
}

// EventStore is the append-only, per-stream event log described in §4.1.
// Implementations must serialize concurrent appends to the same stream
// and must never mutate or remove a previously appended event.
type EventStore interface {
	// Append writes events to streamID.
	//
	// If expectedVersion is non-nil, the append is atomic and conditional:
	// it succeeds only if the stream's current version equals
	// *expectedVersion, otherwise it fails with a *VersionConflictError
	// (test with errors.Is(err, ErrConcurrencyConflict)). If
	// expectedVersion is nil, the events are appended at the tail
	// unconditionally. On success the new events land contiguously at
	// positions expectedVersion+1 .. expectedVersion+len(events); this
	// never partially applies.
	Append(ctx context.Context, streamID string, events []Event, expectedVersion *int64, md Metadata) (newVersion int64, err error)

	// Read returns events for streamID with version >= fromVersion (1 if
	// omitted by the caller as 0/1), up to maxCount events (all of them
	// if maxCount <= 0), ordered by version ascending, together with the
	// stream's current version.
	Read(ctx context.Context, streamID string, fromVersion int64, maxCount int) (ReadResult, error)

	// GetStreamVersion returns the current version of streamID, or 0 if
	// the stream does not exist yet.
	GetStreamVersion(ctx context.Context, streamID string) (int64, error)

	// ReadAll returns envelopes in global append order starting strictly
	// after fromPosition, up to maxCount (all of them if maxCount <= 0).
	// It is the primitive catch-up subscriptions poll.
	ReadAll(ctx context.Context, fromPosition int64, maxCount int) ([]EventEnvelope, error)

	// StreamHash returns a stable hash over the ordered, canonicalised
	// bytes of every event in streamID, for integrity verification
	// (§4.1). Two calls against an unmodified stream must agree.
	StreamHash(ctx context.Context, streamID string) (string, error)
}
