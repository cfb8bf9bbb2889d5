// Package pgx is the PostgreSQL-backed adapter for catga's event store,
// snapshot store and outbox, kept and extended from the teacher's
// transaction-scoped optimistic-append idiom (pgx_store.go), now
// speaking the mediator-era contracts in catga/store.go,
// catga/snapshot.go and catga/outbox.go instead of its own ad-hoc
// Load/Save methods. A durable adapter must still preserve §8's
// invariants; it is free to add further guarantees (crash recovery is
// explicitly an Open Question the core leaves to adapters).
package pgx

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/catga/catga"
)

// Schema is the DDL this adapter expects. Applications are expected to
// run it through their own migration tool; EnsureSchema below exists
// for tests and quick-start use, not as a substitute for one.
const Schema = `
CREATE TABLE IF NOT EXISTS catga_events (
	global_position BIGSERIAL PRIMARY KEY,
	stream_id       TEXT NOT NULL,
	version         BIGINT NOT NULL,
	message_id      BIGINT NOT NULL,
	event_type      TEXT NOT NULL,
	payload         JSONB NOT NULL,
	metadata        JSONB,
	recorded_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (stream_id, version)
);

CREATE TABLE IF NOT EXISTS catga_snapshots (
	id         BIGSERIAL PRIMARY KEY,
	stream_id  TEXT NOT NULL,
	version    BIGINT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS catga_snapshots_stream_version ON catga_snapshots (stream_id, version);

CREATE TABLE IF NOT EXISTS catga_outbox (
	id           TEXT PRIMARY KEY,
	type         TEXT NOT NULL,
	payload      BYTEA NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	state        TEXT NOT NULL,
	published_at TIMESTAMPTZ
);
`

// EnsureSchema creates catga's tables if they do not already exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}

// EventStore is a catga.EventStore backed by PostgreSQL (pgx), kept from
// the teacher's transaction-scoped append/version-check shape and
// extended with a global_position column so ReadAll can serve catch-up
// subscriptions.
type EventStore struct {
	pool      *pgxpool.Pool
	registry  map[string]catga.EventCodec
	extractor catga.MetadataExtractor
}

// Option configures EventStore.
type Option func(*EventStore)

// WithTypeRegistry sets the registry mapping event type names to codecs,
// consulted on both encode (Append) and decode (Read/ReadAll).
func WithTypeRegistry(reg map[string]catga.EventCodec) Option {
	return func(s *EventStore) { s.registry = reg }
}

// WithMetadataExtractor sets a function that builds Metadata from
// context; Append merges it with the explicit md (explicit wins).
func WithMetadataExtractor(ex catga.MetadataExtractor) Option {
	return func(s *EventStore) { s.extractor = ex }
}

// NewEventStore creates a Postgres-backed EventStore.
func NewEventStore(pool *pgxpool.Pool, opts ...Option) *EventStore {
	s := &EventStore{pool: pool, registry: map[string]catga.EventCodec{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EventStore) Append(ctx context.Context, streamID string, events []catga.Event, expectedVersion *int64, md catga.Metadata) (int64, error) {
	if s.extractor != nil {
		md = s.extractor(ctx).Merge(md)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("catga/pgx: could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var currentVersion int64
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM catga_events WHERE stream_id = $1`,
		streamID,
	).Scan(&currentVersion); err != nil {
		return 0, fmt.Errorf("catga/pgx: could not read current version: %w", err)
	}

	if expectedVersion != nil && currentVersion != *expectedVersion {
		return 0, (&catga.VersionConflictError{
			StreamID:        streamID,
			ExpectedVersion: *expectedVersion,
			ActualVersion:   currentVersion,
		}).AsError()
	}

	if len(events) == 0 {
		if err := tx.Commit(ctx); err != nil {
			return 0, fmt.Errorf("catga/pgx: could not commit transaction: %w", err)
		}
		return currentVersion, nil
	}

	metaBytes, err := json.Marshal(md)
	if err != nil {
		return 0, fmt.Errorf("catga/pgx: could not encode metadata: %w", err)
	}

	for _, e := range events {
		eventType := catga.EventType(e)
		codec := s.registry[eventType]
		if codec == nil {
			return 0, fmt.Errorf("catga/pgx: no codec registered for event type %q", eventType)
		}
		payload, err := codec.Encode(e)
		if err != nil {
			return 0, fmt.Errorf("catga/pgx: could not encode event: %w", err)
		}

		currentVersion++
		if _, err := tx.Exec(ctx,
			`INSERT INTO catga_events (stream_id, version, message_id, event_type, payload, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			streamID, currentVersion, int64(catga.NextMessageID()), eventType, payload, metaBytes,
		); err != nil {
			if isUniqueViolation(err) {
				return 0, (&catga.VersionConflictError{
					StreamID:        streamID,
					ExpectedVersion: currentVersion - 1,
					ActualVersion:   currentVersion,
				}).AsError()
			}
			return 0, fmt.Errorf("catga/pgx: could not insert event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("catga/pgx: could not commit transaction: %w", err)
	}
	return currentVersion, nil
}

func (s *EventStore) Read(ctx context.Context, streamID string, fromVersion int64, maxCount int) (catga.ReadResult, error) {
	if fromVersion < 1 {
		fromVersion = 1
	}

	var version int64
	if err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM catga_events WHERE stream_id = $1`,
		streamID,
	).Scan(&version); err != nil {
		return catga.ReadResult{}, fmt.Errorf("catga/pgx: could not read current version: %w", err)
	}

	query := `SELECT event_type, payload FROM catga_events WHERE stream_id = $1 AND version >= $2 ORDER BY version ASC`
	args := []any{streamID, fromVersion}
	if maxCount > 0 {
		query += ` LIMIT $3`
		args = append(args, maxCount)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return catga.ReadResult{}, fmt.Errorf("catga/pgx: could not query events: %w", err)
	}
	defer rows.Close()

	var out []catga.Event
	for rows.Next() {
		var eventType string
		var payload []byte
		if err := rows.Scan(&eventType, &payload); err != nil {
			return catga.ReadResult{}, fmt.Errorf("catga/pgx: could not scan event: %w", err)
		}
		ev, err := s.decode(eventType, payload)
		if err != nil {
			return catga.ReadResult{}, err
		}
		out = append(out, ev)
	}
	return catga.ReadResult{Events: out, Version: version}, rows.Err()
}

func (s *EventStore) GetStreamVersion(ctx context.Context, streamID string) (int64, error) {
	var version int64
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM catga_events WHERE stream_id = $1`,
		streamID,
	).Scan(&version)
	return version, err
}

func (s *EventStore) ReadAll(ctx context.Context, fromPosition int64, maxCount int) ([]catga.EventEnvelope, error) {
	query := `SELECT global_position, stream_id, version, message_id, event_type, payload, metadata, recorded_at
	          FROM catga_events WHERE global_position > $1 ORDER BY global_position ASC`
	args := []any{fromPosition}
	if maxCount > 0 {
		query += ` LIMIT $2`
		args = append(args, maxCount)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catga/pgx: could not query events: %w", err)
	}
	defer rows.Close()

	var out []catga.EventEnvelope
	for rows.Next() {
		var pos, version, messageID int64
		var streamID, eventType string
		var payload, metaBytes []byte
		var recordedAt time.Time
		if err := rows.Scan(&pos, &streamID, &version, &messageID, &eventType, &payload, &metaBytes, &recordedAt); err != nil {
			return nil, fmt.Errorf("catga/pgx: could not scan event: %w", err)
		}
		ev, err := s.decode(eventType, payload)
		if err != nil {
			return nil, err
		}
		var md catga.Metadata
		if len(metaBytes) > 0 {
			_ = json.Unmarshal(metaBytes, &md)
		}
		out = append(out, catga.EventEnvelope{
			MessageID:      catga.MessageID(messageID),
			StreamID:       streamID,
			Version:        version,
			GlobalPosition: pos,
			RecordedAt:     recordedAt,
			Event:          ev,
			Metadata:       md,
		})
	}
	return out, rows.Err()
}

// StreamHash recomputes the §4.1 integrity hash over a stream's ordered
// events: each event type name followed by its payload as Postgres
// returns it from the JSONB column. JSONB normalises the stored text, so
// the result is stable across calls but is not byte-comparable with
// stores/mem's hash of json.Marshal output.
func (s *EventStore) StreamHash(ctx context.Context, streamID string) (string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT event_type, payload FROM catga_events WHERE stream_id = $1 ORDER BY version ASC`,
		streamID,
	)
	if err != nil {
		return "", fmt.Errorf("catga/pgx: could not query events: %w", err)
	}
	defer rows.Close()

	h := sha256.New()
	for rows.Next() {
		var eventType string
		var payload []byte
		if err := rows.Scan(&eventType, &payload); err != nil {
			return "", err
		}
		h.Write([]byte(eventType))
		h.Write(payload)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *EventStore) decode(eventType string, payload []byte) (catga.Event, error) {
	codec := s.registry[eventType]
	if codec == nil {
		return nil, fmt.Errorf("catga/pgx: unknown event type %q", eventType)
	}
	ev, err := codec.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("catga/pgx: could not decode event %q: %w", eventType, err)
	}
	return ev, nil
}

var _ catga.EventStore = (*EventStore)(nil)

// SnapshotStore is a catga.SnapshotStore backed by PostgreSQL: every
// Save is a new row, so History and LoadAtVersion are real queries
// rather than a single-row cache, unlike the teacher's original
// upsert-one-row SaveSnapshot/LoadSnapshot pair.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a Postgres-backed SnapshotStore.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

func (s *SnapshotStore) Save(ctx context.Context, streamID string, version int64, state any) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("catga/pgx: could not encode snapshot: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO catga_snapshots (stream_id, version, payload) VALUES ($1, $2, $3)`,
		streamID, version, payload,
	)
	return err
}

func (s *SnapshotStore) LoadLatest(ctx context.Context, streamID string) (catga.Snapshot, error) {
	return s.loadWhere(ctx, `stream_id = $1 ORDER BY version DESC LIMIT 1`, streamID)
}

func (s *SnapshotStore) LoadAtVersion(ctx context.Context, streamID string, version int64) (catga.Snapshot, error) {
	return s.loadWhere(ctx, `stream_id = $1 AND version <= $2 ORDER BY version DESC LIMIT 1`, streamID, version)
}

func (s *SnapshotStore) loadWhere(ctx context.Context, where string, args ...any) (catga.Snapshot, error) {
	row := s.pool.QueryRow(ctx, `SELECT version, payload, created_at FROM catga_snapshots WHERE `+where, args...)

	var version int64
	var payload []byte
	var at time.Time
	if err := row.Scan(&version, &payload, &at); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catga.Snapshot{Found: false}, nil
		}
		return catga.Snapshot{}, fmt.Errorf("catga/pgx: could not scan snapshot: %w", err)
	}

	var state map[string]any
	if err := json.Unmarshal(payload, &state); err != nil {
		return catga.Snapshot{}, fmt.Errorf("catga/pgx: could not decode snapshot: %w", err)
	}
	return catga.Snapshot{StreamID: args[0].(string), State: state, Version: version, Found: true, At: at}, nil
}

func (s *SnapshotStore) History(ctx context.Context, streamID string) ([]catga.Snapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT version, payload, created_at FROM catga_snapshots WHERE stream_id = $1 ORDER BY version ASC`,
		streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("catga/pgx: could not query snapshot history: %w", err)
	}
	defer rows.Close()

	var out []catga.Snapshot
	for rows.Next() {
		var version int64
		var payload []byte
		var at time.Time
		if err := rows.Scan(&version, &payload, &at); err != nil {
			return nil, err
		}
		var state map[string]any
		if err := json.Unmarshal(payload, &state); err != nil {
			return nil, fmt.Errorf("catga/pgx: could not decode snapshot: %w", err)
		}
		out = append(out, catga.Snapshot{StreamID: streamID, State: state, Version: version, Found: true, At: at})
	}
	return out, rows.Err()
}

var _ catga.SnapshotStore = (*SnapshotStore)(nil)
