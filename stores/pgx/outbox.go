package pgx

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/catga/catga"
)

// Outbox is a catga.Outbox backed by PostgreSQL, generalizing the same
// transactional-insert idiom the teacher's pgx_store.go uses for events
// into a second table so an application can commit an aggregate's
// events and its outbound notifications in one place.
type Outbox struct {
	pool *pgxpool.Pool
}

// NewOutbox creates a Postgres-backed Outbox.
func NewOutbox(pool *pgxpool.Pool) *Outbox {
	return &Outbox{pool: pool}
}

func (o *Outbox) Add(ctx context.Context, entry catga.OutboxEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.State == "" {
		entry.State = catga.OutboxPending
	}
	_, err := o.pool.Exec(ctx,
		`INSERT INTO catga_outbox (id, type, payload, created_at, state, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.Type, entry.PayloadBytes, entry.CreatedAt, entry.State, entry.PublishedAt,
	)
	return err
}

func (o *Outbox) GetPending(ctx context.Context, limit int) ([]catga.OutboxEntry, error) {
	query := `SELECT id, type, payload, created_at, state, published_at FROM catga_outbox
	          WHERE state = $1 ORDER BY created_at ASC`
	args := []any{catga.OutboxPending}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := o.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catga/pgx: could not query outbox: %w", err)
	}
	defer rows.Close()

	var out []catga.OutboxEntry
	for rows.Next() {
		var e catga.OutboxEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.PayloadBytes, &e.CreatedAt, &e.State, &e.PublishedAt); err != nil {
			return nil, fmt.Errorf("catga/pgx: could not scan outbox entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (o *Outbox) MarkPublished(ctx context.Context, id string) error {
	now := time.Now()
	tag, err := o.pool.Exec(ctx,
		`UPDATE catga_outbox SET state = $1, published_at = $2 WHERE id = $3`,
		catga.OutboxPublished, now, id,
	)
	if err != nil {
		return fmt.Errorf("catga/pgx: could not mark outbox entry published: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return catga.ErrNotFound
	}
	return nil
}

var _ catga.Outbox = (*Outbox)(nil)
