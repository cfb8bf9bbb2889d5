package catga

import "context"

// Next invokes the remainder of the pipeline (the next behavior, or
// finally the handler) and returns its result.
type Next func(ctx context.Context, req any) (any, error)

// Behavior is one link of the mediator's pipeline (§4.5). It receives the
// request and a Next to continue the chain; it must call next at most
// once, or short-circuit by returning its own result without calling it.
// Short-circuiting is how validation, authorization, idempotency-cache
// hits and rate limiting are implemented.
type Behavior func(ctx context.Context, req any, next Next) (any, error)

// compose builds a single Next out of an ordered behavior chain plus the
// terminal handler invocation, so that:
//
//	behaviors[0] -> behaviors[1] -> ... -> behaviors[n-1] -> handler
//
// Behaviors execute in registration order for a single pipeline
// invocation (§5).
func compose(behaviors []Behavior, terminal Next) Next {
	next := terminal
	for i := len(behaviors) - 1; i >= 0; i-- {
		b := behaviors[i]
		captured := next
		next = func(ctx context.Context, req any) (any, error) {
			return b(ctx, req, captured)
		}
	}
	return next
}
