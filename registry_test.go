package catga_test

import (
	"context"
	"testing"

	"github.com/catga/catga"
)

type pingCmd struct{ Name string }
type pongResp struct{ Greeting string }

type pingHandler struct{}

func (pingHandler) Handle(_ context.Context, req pingCmd) (pongResp, error) {
	return pongResp{Greeting: "hello " + req.Name}, nil
}

func TestRegisterRequest_DuplicateIsRejected(t *testing.T) {
	t.Parallel()
	r := catga.NewRegistry()
	if err := catga.RegisterRequest[pingCmd, pongResp](r, pingHandler{}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := catga.RegisterRequest[pingCmd, pongResp](r, pingHandler{}); err == nil {
		t.Fatalf("expected an error registering a second handler for the same request type")
	}
}

func TestRegisterEvent_AllowsMultipleHandlers(t *testing.T) {
	t.Parallel()
	r := catga.NewRegistry()
	var calls int
	catga.RegisterEvent[counterOpened](r, catga.EventHandlerFunc[counterOpened](func(_ context.Context, _ counterOpened) error {
		calls++
		return nil
	}))
	catga.RegisterEvent[counterOpened](r, catga.EventHandlerFunc[counterOpened](func(_ context.Context, _ counterOpened) error {
		calls++
		return nil
	}))

	m := catga.New(r)
	if err := catga.Publish[counterOpened](context.Background(), m, counterOpened{ID: "A"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected both handlers invoked, got %d calls", calls)
	}
}
