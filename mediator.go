package catga

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/catga/catga/log"
	"github.com/catga/catga/metrics"
)

// Mediator is the typed dispatcher for commands, queries and events
// (§4.5). It is safe for concurrent use; there is no ordering guarantee
// across concurrent Send/Publish calls (§5).
type Mediator struct {
	registry *Registry
	logger   log.Logger
	metrics  *metrics.Registry
}

// Option configures a Mediator.
type Option func(*Mediator)

// WithLogger overrides the Mediator's Logger (log.Default() otherwise).
func WithLogger(l log.Logger) Option {
	return func(m *Mediator) { m.logger = l }
}

// WithMetrics attaches a metrics.Registry; dispatches are instrumented
// once one is set.
func WithMetrics(reg *metrics.Registry) Option {
	return func(m *Mediator) { m.metrics = reg }
}

// New creates a Mediator over the given Registry.
func New(registry *Registry, opts ...Option) *Mediator {
	m := &Mediator{registry: registry, logger: log.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send dispatches req to the unique handler registered for TReq,
// wrapping the call in the registered behavior chain. Panics inside a
// behavior or handler are recovered and converted to a CodeUnhandled
// Error, matching the "exception becomes failure(Unhandled)" policy of
// §3/§7 for targets where throwing is idiomatic; in Go this covers
// handlers that panic instead of returning an error.
func Send[TReq any, TResp any](ctx context.Context, m *Mediator, req TReq) (resp TResp, err error) {
	reqType := reflect.TypeOf((*TReq)(nil)).Elem()
	start := time.Now()
	defer func() {
		if m.metrics == nil {
			return
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		m.metrics.DispatchTotal.WithLabelValues(reqType.String(), outcome).Inc()
		m.metrics.DispatchDuration.WithLabelValues(reqType.String()).Observe(time.Since(start).Seconds())
	}()

	entry, behaviors, ok := m.registry.lookupRequest(reqType)
	if !ok {
		return resp, &Error{Code: CodeNoHandler, Message: fmt.Sprintf("no handler registered for %s", reqType)}
	}

	terminal := func(ctx context.Context, req any) (out any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &Error{Code: CodeUnhandled, Message: fmt.Sprintf("panic: %v", r)}
			}
		}()
		return entry.invoke(ctx, req)
	}

	out, err := compose(behaviors, terminal)(ctx, req)
	if err != nil {
		return resp, err
	}
	if out == nil {
		return resp, nil
	}
	typed, ok := out.(TResp)
	if !ok {
		return resp, &Error{Code: CodeUnhandled, Message: fmt.Sprintf("handler for %s returned %T, expected %T", reqType, out, resp)}
	}
	return typed, nil
}

// SendBatch dispatches every request in reqs and returns one result per
// request, in the same order (§4.5, §4.9 "adapters may parallelise
// provided they preserve per-request result ordering").
func SendBatch[TReq any, TResp any](ctx context.Context, m *Mediator, reqs []TReq) ([]TResp, []error) {
	resps := make([]TResp, len(reqs))
	errs := make([]error, len(reqs))
	for i, req := range reqs {
		resps[i], errs[i] = Send[TReq, TResp](ctx, m, req)
	}
	return resps, errs
}

// Publish resolves every handler registered for the event's concrete
// type and invokes them all, fanning out so a slow or failing handler
// never blocks the others. Every handler receives the same, uncancelled
// ctx: a context-independent group is used (not errgroup.WithContext)
// so that one handler's failure can never cancel a sibling handler that
// honors cancellation at its next suspension point (§5) — the exact
// outcome "a failing handler must not prevent others from running"
// forbids. Errors from every handler are joined into a single
// multi-error and logged, never returned to the caller, per the default
// policy of §4.5; adapters that need "fail the publish" can register a
// single handler that does its own error propagation.
func Publish[TEvent any](ctx context.Context, m *Mediator, event TEvent) error {
	evType := reflect.TypeOf((*TEvent)(nil)).Elem()
	handlers := m.registry.lookupEvent(evType)
	if len(handlers) == 0 {
		return nil
	}

	errs := make([]error, len(handlers))
	var g errgroup.Group
	for i, h := range handlers {
		i, h := i, h
		g.Go(func() (_ error) {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("panic in event handler for %s: %v", evType, r)
				}
			}()
			errs[i] = h(ctx, event)
			return nil
		})
	}
	_ = g.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
		}
	}
	if failures > 0 {
		joined := errors.Join(errs...)
		m.logger.Error("event handler failed", "event_type", evType.String(), "failures", failures, "error", joined.Error())
		if m.metrics != nil {
			m.metrics.EventHandlerFailures.WithLabelValues(evType.String()).Add(float64(failures))
		}
	}
	// Publish itself never fails the caller (§4.5 default policy).
	return nil
}

// PublishBatch publishes every event in events; semantically N
// independent Publish calls (§4.5).
func PublishBatch[TEvent any](ctx context.Context, m *Mediator, events []TEvent) {
	for _, e := range events {
		_ = Publish(ctx, m, e)
	}
}
