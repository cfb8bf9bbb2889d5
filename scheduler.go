package catga

import (
	"context"
	"time"
)

// ScheduledMessage is a message staged for delivery no earlier than
// DueAt.
type ScheduledMessage struct {
	ID      string
	Payload any
	DueAt   time.Time
}

// Scheduler is a time-keyed message queue (§4.8). GetDue never returns
// messages with DueAt after now; ties are broken by insertion order.
type Scheduler interface {
	Schedule(ctx context.Context, payload any, dueAt time.Time) (id string, err error)
	Cancel(ctx context.Context, id string) (bool, error)
	GetDue(ctx context.Context, now time.Time) ([]ScheduledMessage, error)
}

// SchedulerWorker polls a Scheduler for due messages and republishes
// each as an event via publish. It is the worker loop described in
// §4.8: "a worker loop consumes due messages and re-enqueues them to
// the mediator as publish".
type SchedulerWorker struct {
	scheduler Scheduler
	publish   func(ctx context.Context, payload any) error
	interval  time.Duration
	logger    interface {
		Error(msg string, kv ...any)
	}
}

// NewSchedulerWorker builds a worker that polls every interval.
func NewSchedulerWorker(scheduler Scheduler, publish func(ctx context.Context, payload any) error, interval time.Duration, logger interface {
	Error(msg string, kv ...any)
}) *SchedulerWorker {
	return &SchedulerWorker{scheduler: scheduler, publish: publish, interval: interval, logger: logger}
}

// Run blocks, polling until ctx is cancelled.
func (w *SchedulerWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SchedulerWorker) tick(ctx context.Context) {
	due, err := w.scheduler.GetDue(ctx, time.Now())
	if err != nil {
		if w.logger != nil {
			w.logger.Error("scheduler: GetDue failed", "error", err.Error())
		}
		return
	}
	for _, msg := range due {
		if err := w.publish(ctx, msg.Payload); err != nil && w.logger != nil {
			w.logger.Error("scheduler: publish failed", "message_id", msg.ID, "error", err.Error())
		}
	}
}
