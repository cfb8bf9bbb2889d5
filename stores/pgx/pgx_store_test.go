package pgx_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/catga/catga"
	"github.com/catga/catga/internal/storetest"
	pgxstore "github.com/catga/catga/stores/pgx"
)

// codecRegistry maps the storetest fixture event types to JSON codecs
// for pgxstore.WithTypeRegistry.
func codecRegistry() map[string]catga.EventCodec {
	return map[string]catga.EventCodec{
		"Opened": catga.JSONCodec[storetest.Opened](),
		"Added":  catga.JSONCodec[storetest.Added](),
	}
}

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres compliance suite")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pgxstore.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `TRUNCATE catga_events, catga_snapshots, catga_outbox`)
	})
	return pool
}

func TestEventStore_Compliance(t *testing.T) {
	pool := testPool(t)

	storetest.Run(t, func(t *testing.T) catga.EventStore {
		t.Helper()
		return pgxstore.NewEventStore(pool, pgxstore.WithTypeRegistry(codecRegistry()))
	})
}

func TestSnapshotStore(t *testing.T) {
	pool := testPool(t)
	ctx := t.Context()
	store := pgxstore.NewSnapshotStore(pool)

	if err := store.Save(ctx, "Order-1", 3, map[string]any{"total": 30}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save(ctx, "Order-1", 6, map[string]any{"total": 200}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	latest, err := store.LoadLatest(ctx, "Order-1")
	if err != nil || !latest.Found || latest.Version != 6 {
		t.Fatalf("expected latest snapshot at version 6, got %+v (err=%v)", latest, err)
	}

	at3, err := store.LoadAtVersion(ctx, "Order-1", 4)
	if err != nil || !at3.Found || at3.Version != 3 {
		t.Fatalf("expected snapshot at version<=4 to be version 3, got %+v (err=%v)", at3, err)
	}

	history, err := store.History(ctx, "Order-1")
	if err != nil || len(history) != 2 {
		t.Fatalf("expected 2 snapshots in history, got %d (err=%v)", len(history), err)
	}
}

func TestOutbox(t *testing.T) {
	pool := testPool(t)
	ctx := t.Context()
	box := pgxstore.NewOutbox(pool)

	entry := catga.OutboxEntry{ID: "evt-1", Type: "OrderOpened", PayloadBytes: []byte(`{}`), CreatedAt: time.Now()}
	if err := box.Add(ctx, entry); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	pending, err := box.GetPending(ctx, 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected 1 pending entry, got %d (err=%v)", len(pending), err)
	}

	if err := box.MarkPublished(ctx, "evt-1"); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}

	pending, err = box.GetPending(ctx, 10)
	if err != nil || len(pending) != 0 {
		t.Fatalf("expected 0 pending entries after publish, got %d (err=%v)", len(pending), err)
	}
}
