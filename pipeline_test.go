package catga_test

import (
	"context"
	"errors"
	"testing"

	"github.com/catga/catga"
)

func behaviorMarking(label string, trail *[]string) catga.Behavior {
	return func(ctx context.Context, req any, next catga.Next) (any, error) {
		*trail = append(*trail, label+":before")
		out, err := next(ctx, req)
		*trail = append(*trail, label+":after")
		return out, err
	}
}

func TestRegistry_GlobalBehaviorsRunBeforeTypeScopedOnes(t *testing.T) {
	t.Parallel()
	r := catga.NewRegistry()
	var trail []string
	r.RegisterGlobalBehavior(behaviorMarking("global", &trail))
	catga.RegisterBehavior[pingCmd](r, behaviorMarking("scoped", &trail))
	if err := catga.RegisterRequest[pingCmd, pongResp](r, catga.RequestHandlerFunc[pingCmd, pongResp](func(_ context.Context, req pingCmd) (pongResp, error) {
		trail = append(trail, "handler")
		return pongResp{Greeting: req.Name}, nil
	})); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	m := catga.New(r)
	if _, err := catga.Send[pingCmd, pongResp](context.Background(), m, pingCmd{Name: "x"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	want := []string{"global:before", "scoped:before", "handler", "scoped:after", "global:after"}
	if len(trail) != len(want) {
		t.Fatalf("expected trail %v, got %v", want, trail)
	}
	for i := range want {
		if trail[i] != want[i] {
			t.Fatalf("expected trail %v, got %v", want, trail)
		}
	}
}

func TestBehavior_ShortCircuitSkipsHandler(t *testing.T) {
	t.Parallel()
	r := catga.NewRegistry()
	handlerCalled := false
	r.RegisterGlobalBehavior(func(_ context.Context, _ any, _ catga.Next) (any, error) {
		return nil, errors.New("denied before reaching the handler")
	})
	if err := catga.RegisterRequest[pingCmd, pongResp](r, catga.RequestHandlerFunc[pingCmd, pongResp](func(_ context.Context, req pingCmd) (pongResp, error) {
		handlerCalled = true
		return pongResp{}, nil
	})); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	m := catga.New(r)
	if _, err := catga.Send[pingCmd, pongResp](context.Background(), m, pingCmd{Name: "x"}); err == nil {
		t.Fatalf("expected the short-circuiting behavior's error to surface")
	}
	if handlerCalled {
		t.Fatalf("expected the handler to never run after a short circuit")
	}
}
