package catga

import (
	"context"
	"sync"
	"time"

	"github.com/catga/catga/log"
)

// SubscriptionState is whether a catch-up subscription is actively
// consuming.
type SubscriptionState string

const (
	SubscriptionActive SubscriptionState = "active"
	SubscriptionPaused SubscriptionState = "paused"
)

// Subscription is a persisted catch-up consumer of a stream pattern
// (§3, §4.4).
type Subscription struct {
	Name           string
	StreamPattern  string
	Position       int64
	ProcessedCount int64
	State          SubscriptionState
}

// SubscriptionStore persists Subscriptions across process restarts
// (§6).
type SubscriptionStore interface {
	Save(ctx context.Context, sub Subscription) error
	Load(ctx context.Context, name string) (Subscription, bool, error)
	List(ctx context.Context) ([]Subscription, error)
}

// Handle detaches a live in-process subscription registered via
// SubscriptionManager.Subscribe.
type Handle interface {
	Unsubscribe()
}

// EventEnvelopeHandler processes one delivered envelope.
type EventEnvelopeHandler func(ctx context.Context, env EventEnvelope) error

// FailurePolicy decides what a Runner does when a handler invocation
// fails (§9 Open Question: resolved as a per-Runner configurable, with
// AdvanceAndLog as the default).
type FailurePolicy int

const (
	// AdvanceAndLog logs the failure and advances the checkpoint past the
	// failing envelope anyway, so one handler bug cannot stall the
	// system (§4.4 step 5).
	AdvanceAndLog FailurePolicy = iota
	// HaltAndRetry stops advancing the checkpoint at the failing
	// envelope; the next RunOnce retries it from the same position.
	HaltAndRetry
)

// Runner implements the catch-up loop of §4.4 against a store and a
// SubscriptionStore. It is safe to run at most one Runner per
// subscription name in a given process (§5); enforcing that across
// processes is left to the SubscriptionStore's adapter.
type Runner struct {
	Name          string
	StreamPattern string
	Store         EventStore
	Subscriptions SubscriptionStore
	Handler       EventEnvelopeHandler
	BatchSize     int
	Policy        FailurePolicy
	Logger        log.Logger
}

// RunOnce performs a single catch-up pass: load checkpoint, read one
// batch from ReadAll, deliver matching envelopes in global-position
// order, persist the advanced checkpoint.
func (r *Runner) RunOnce(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}

	sub, ok, err := r.Subscriptions.Load(ctx, r.Name)
	if err != nil {
		return err
	}
	if !ok {
		sub = Subscription{Name: r.Name, StreamPattern: r.StreamPattern, State: SubscriptionActive}
	}
	if sub.State == SubscriptionPaused {
		return nil
	}

	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	envs, err := r.Store.ReadAll(ctx, sub.Position, batchSize)
	if err != nil {
		return err
	}

	for _, env := range envs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !MatchStreamPattern(r.StreamPattern, env.StreamID) {
			continue
		}

		if err := r.Handler(ctx, env); err != nil {
			logger.Error("subscription handler failed", "subscription", r.Name, "stream_id", env.StreamID, "position", env.GlobalPosition, "error", err.Error())
			if r.Policy == HaltAndRetry {
				// sub.Position already reflects every envelope processed
				// earlier in this batch; they are not replayed on retry,
				// only the failing envelope and anything after it.
				return r.Subscriptions.Save(ctx, sub)
			}
			// AdvanceAndLog: fall through and advance anyway.
		}

		sub.Position = env.GlobalPosition
		sub.ProcessedCount++
	}

	return r.Subscriptions.Save(ctx, sub)
}

// SubscriptionManager is the in-process live-subscribe surface of §6:
// Subscribe(streamPattern, handler) -> Handle. It is a thin wrapper that
// registers the handler to be driven by some Runner loop (e.g. a
// SchedulerWorker-style ticker) rather than a new delivery mechanism.
type SubscriptionManager struct {
	mu      sync.Mutex
	runners map[string]*Runner
}

// NewSubscriptionManager creates an empty manager.
func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{runners: make(map[string]*Runner)}
}

// Subscribe registers handler against streamPattern under name, driven
// by store/subs. The caller is responsible for periodically invoking the
// returned Runner's RunOnce (directly, or via RunLoop).
func (m *SubscriptionManager) Subscribe(name, streamPattern string, store EventStore, subs SubscriptionStore, handler EventEnvelopeHandler) (*Runner, Handle) {
	r := &Runner{Name: name, StreamPattern: streamPattern, Store: store, Subscriptions: subs, Handler: handler}
	m.mu.Lock()
	m.runners[name] = r
	m.mu.Unlock()
	return r, handleFunc(func() {
		m.mu.Lock()
		delete(m.runners, name)
		m.mu.Unlock()
	})
}

type handleFunc func()

func (h handleFunc) Unsubscribe() { h() }

// RunLoop drives r.RunOnce every interval until ctx is cancelled.
func RunLoop(ctx context.Context, r *Runner, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := r.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
