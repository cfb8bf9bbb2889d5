// Package mem is the in-memory reference backbone for every catga
// contract: event store, snapshot store, subscription/checkpoint
// stores, idempotency store, inbox, outbox, dead-letter queue,
// distributed lock and scheduler. It is concurrency-safe and suitable
// for tests, prototypes and single-process deployments; state is lost on
// restart (§1 non-goals — durable on-disk storage is an adapter's job,
// see stores/pgx).
package mem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/catga/catga"
)

// EventStore is an in-memory catga.EventStore. Appends to every stream
// are serialized under a single per-store lock (the teacher's
// mem_store.go takes the same approach); reads take the shared read
// side of that lock, so they run concurrently with each other but not
// with an append.
type EventStore struct {
	mu        sync.RWMutex
	streams   map[string][]catga.EventEnvelope
	all       []catga.EventEnvelope // global append order, shared slice
	extractor catga.MetadataExtractor
}

// Option configures EventStore.
type Option func(*EventStore)

// WithMetadataExtractor sets a function that builds Metadata from
// context; Append merges it under any explicit md (explicit wins).
func WithMetadataExtractor(ex catga.MetadataExtractor) Option {
	return func(s *EventStore) { s.extractor = ex }
}

// NewEventStore creates an empty in-memory EventStore.
func NewEventStore(opts ...Option) *EventStore {
	s := &EventStore{streams: make(map[string][]catga.EventEnvelope)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EventStore) Append(
	ctx context.Context,
	streamID string,
	events []catga.Event,
	expectedVersion *int64,
	md catga.Metadata,
) (int64, error) {
	if ctx.Err() != nil {
		return 0, &catga.Error{Code: catga.CodeCancelled, Message: "append cancelled", Cause: ctx.Err()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.extractor != nil {
		md = s.extractor(ctx).Merge(md)
	}

	seq := s.streams[streamID]
	currentVersion := int64(len(seq))
	if expectedVersion != nil && currentVersion != *expectedVersion {
		return 0, (&catga.VersionConflictError{
			StreamID:        streamID,
			ExpectedVersion: *expectedVersion,
			ActualVersion:   currentVersion,
		}).AsError()
	}

	if len(events) == 0 {
		return currentVersion, nil
	}

	now := time.Now()
	for _, e := range events {
		currentVersion++
		env := catga.EventEnvelope{
			MessageID:      catga.NextMessageID(),
			StreamID:       streamID,
			Version:        currentVersion,
			GlobalPosition: int64(len(s.all)) + 1,
			RecordedAt:     now,
			Event:          e,
			Metadata:       md,
		}
		seq = append(seq, env)
		s.all = append(s.all, env)
	}
	s.streams[streamID] = seq
	return currentVersion, nil
}

func (s *EventStore) Read(_ context.Context, streamID string, fromVersion int64, maxCount int) (catga.ReadResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.streams[streamID]
	version := int64(len(seq))

	if fromVersion < 1 {
		fromVersion = 1
	}
	start := fromVersion - 1
	if start < 0 {
		start = 0
	}
	if start > int64(len(seq)) {
		start = int64(len(seq))
	}

	var out []catga.Event
	for i := start; i < int64(len(seq)); i++ {
		if maxCount > 0 && len(out) >= maxCount {
			break
		}
		out = append(out, seq[i].Event)
	}
	return catga.ReadResult{Events: out, Version: version}, nil
}

func (s *EventStore) GetStreamVersion(_ context.Context, streamID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.streams[streamID])), nil
}

func (s *EventStore) ReadAll(_ context.Context, fromPosition int64, maxCount int) ([]catga.EventEnvelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}
	start := fromPosition
	if start > int64(len(s.all)) {
		start = int64(len(s.all))
	}

	var out []catga.EventEnvelope
	for i := start; i < int64(len(s.all)); i++ {
		if maxCount > 0 && len(out) >= maxCount {
			break
		}
		out = append(out, s.all[i])
	}
	return out, nil
}

// StreamHash computes a stable hash over the ordered, canonicalised JSON
// encoding of every event in streamID (§4.1 integrity check). Two calls
// against an unmodified stream always agree; any mutation of history
// (impossible through the public API, but checked by adapters that
// store events durably) would change it.
func (s *EventStore) StreamHash(_ context.Context, streamID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := sha256.New()
	for _, env := range s.streams[streamID] {
		h.Write([]byte(catga.EventType(env.Event)))
		b, err := json.Marshal(env.Event)
		if err != nil {
			return "", err
		}
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

var _ catga.EventStore = (*EventStore)(nil)
