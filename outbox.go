package catga

import (
	"context"
	"time"
)

// OutboxState is the lifecycle stage of an OutboxEntry. Published is
// terminal (§3).
type OutboxState string

const (
	OutboxPending   OutboxState = "pending"
	OutboxPublished OutboxState = "published"
)

// OutboxEntry is a message staged for at-least-once publication.
type OutboxEntry struct {
	ID            string
	Type          string
	PayloadBytes  []byte
	CreatedAt     time.Time
	State         OutboxState
	PublishedAt   *time.Time
}

// Outbox stages messages for a separate publisher process/goroutine to
// drain (§4.7). Operations on a single entry are atomic.
type Outbox interface {
	Add(ctx context.Context, entry OutboxEntry) error
	GetPending(ctx context.Context, limit int) ([]OutboxEntry, error)
	MarkPublished(ctx context.Context, id string) error
}

// OutboxPublisher polls an Outbox for pending entries and hands each to
// publish, the separate "publisher process/goroutine" named in §4.7.
// It mirrors SchedulerWorker's poll-tick-drain shape.
type OutboxPublisher struct {
	outbox   Outbox
	publish  func(ctx context.Context, entry OutboxEntry) error
	interval time.Duration
	batch    int
	logger   interface {
		Error(msg string, kv ...any)
	}
}

// NewOutboxPublisher builds a publisher that drains up to batch pending
// entries every interval.
func NewOutboxPublisher(outbox Outbox, publish func(ctx context.Context, entry OutboxEntry) error, interval time.Duration, batch int, logger interface {
	Error(msg string, kv ...any)
}) *OutboxPublisher {
	if batch <= 0 {
		batch = 100
	}
	return &OutboxPublisher{outbox: outbox, publish: publish, interval: interval, batch: batch, logger: logger}
}

// Run blocks, polling until ctx is cancelled.
func (p *OutboxPublisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *OutboxPublisher) tick(ctx context.Context) {
	pending, err := p.outbox.GetPending(ctx, p.batch)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("outbox: getPending failed", "error", err.Error())
		}
		return
	}
	for _, entry := range pending {
		if err := p.publish(ctx, entry); err != nil {
			if p.logger != nil {
				p.logger.Error("outbox: publish failed", "entry_id", entry.ID, "error", err.Error())
			}
			continue
		}
		if err := p.outbox.MarkPublished(ctx, entry.ID); err != nil && p.logger != nil {
			p.logger.Error("outbox: markPublished failed", "entry_id", entry.ID, "error", err.Error())
		}
	}
}
