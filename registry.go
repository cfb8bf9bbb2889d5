package catga

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// RequestHandler handles a single command/query type TReq and produces a
// TResp. Exactly one handler may be registered per TReq (§4.5).
type RequestHandler[TReq any, TResp any] interface {
	Handle(ctx context.Context, req TReq) (TResp, error)
}

// RequestHandlerFunc adapts a plain function to a RequestHandler.
type RequestHandlerFunc[TReq any, TResp any] func(ctx context.Context, req TReq) (TResp, error)

func (f RequestHandlerFunc[TReq, TResp]) Handle(ctx context.Context, req TReq) (TResp, error) {
	return f(ctx, req)
}

// EventHandler handles a fact. Zero or more may be registered per event
// type; all are invoked on Publish (§4.5).
type EventHandler[TEvent any] interface {
	Handle(ctx context.Context, event TEvent) error
}

// EventHandlerFunc adapts a plain function to an EventHandler.
type EventHandlerFunc[TEvent any] func(ctx context.Context, event TEvent) error

func (f EventHandlerFunc[TEvent]) Handle(ctx context.Context, event TEvent) error {
	return f(ctx, event)
}

// requestEntry stores a registered request handler and its behaviors
// type-erased, keyed by the concrete request type.
type requestEntry struct {
	respType reflect.Type
	invoke   func(ctx context.Context, req any) (any, error)
}

// Registry resolves handlers and behaviors by message type. It mirrors
// the teacher's "type identity as tag" strategy from spec.md §9 instead
// of runtime reflection-based lookup beyond a single map keyed by
// reflect.Type — the map itself is built once, at registration time, not
// walked per dispatch.
type Registry struct {
	mu         sync.RWMutex
	requests   map[reflect.Type]*requestEntry
	eventHs    map[reflect.Type][]func(ctx context.Context, event any) error
	behaviors  map[reflect.Type][]Behavior // keyed by request type
	globalBhvs []Behavior                  // applied to every request type
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		requests: make(map[reflect.Type]*requestEntry),
		eventHs:  make(map[reflect.Type][]func(ctx context.Context, event any) error),
	}
}

// RegisterRequest registers the unique handler for TReq. Registering a
// second handler for the same TReq is a configuration error, detected
// immediately rather than at first dispatch (§4.5).
func RegisterRequest[TReq any, TResp any](r *Registry, h RequestHandler[TReq, TResp]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reqType := reflect.TypeOf((*TReq)(nil)).Elem()
	if _, exists := r.requests[reqType]; exists {
		return fmt.Errorf("catga: duplicate handler registered for request type %s", reqType)
	}
	r.requests[reqType] = &requestEntry{
		respType: reflect.TypeOf((*TResp)(nil)).Elem(),
		invoke: func(ctx context.Context, req any) (any, error) {
			return h.Handle(ctx, req.(TReq))
		},
	}
	return nil
}

// RegisterEvent adds one more handler for TEvent. Ordering across
// handlers for the same event type is unspecified by design (§9).
func RegisterEvent[TEvent any](r *Registry, h EventHandler[TEvent]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	evType := reflect.TypeOf((*TEvent)(nil)).Elem()
	r.eventHs[evType] = append(r.eventHs[evType], func(ctx context.Context, event any) error {
		return h.Handle(ctx, event.(TEvent))
	})
}

// RegisterBehavior adds a pipeline behavior scoped to TReq.
func RegisterBehavior[TReq any](r *Registry, b Behavior) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.behaviors == nil {
		r.behaviors = make(map[reflect.Type][]Behavior)
	}
	reqType := reflect.TypeOf((*TReq)(nil)).Elem()
	r.behaviors[reqType] = append(r.behaviors[reqType], b)
}

// RegisterGlobalBehavior adds a behavior applied to every request type,
// ahead of any type-scoped behaviors, in registration order.
func (r *Registry) RegisterGlobalBehavior(b Behavior) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globalBhvs = append(r.globalBhvs, b)
}

func (r *Registry) lookupRequest(reqType reflect.Type) (*requestEntry, []Behavior, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.requests[reqType]
	if !ok {
		return nil, nil, false
	}
	chain := make([]Behavior, 0, len(r.globalBhvs)+len(r.behaviors[reqType]))
	chain = append(chain, r.globalBhvs...)
	chain = append(chain, r.behaviors[reqType]...)
	return entry, chain, true
}

func (r *Registry) lookupEvent(evType reflect.Type) []func(ctx context.Context, event any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]func(ctx context.Context, event any) error(nil), r.eventHs[evType]...)
}
