package catga_test

import (
	"context"
	"errors"
	"testing"

	"github.com/catga/catga"
)

func TestSend_DispatchesToRegisteredHandler(t *testing.T) {
	t.Parallel()
	r := catga.NewRegistry()
	if err := catga.RegisterRequest[pingCmd, pongResp](r, pingHandler{}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	m := catga.New(r)

	resp, err := catga.Send[pingCmd, pongResp](context.Background(), m, pingCmd{Name: "world"})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if resp.Greeting != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", resp.Greeting)
	}
}

func TestSend_NoHandlerReturnsCodeNoHandler(t *testing.T) {
	t.Parallel()
	m := catga.New(catga.NewRegistry())

	_, err := catga.Send[pingCmd, pongResp](context.Background(), m, pingCmd{Name: "world"})
	var catErr *catga.Error
	if !errors.As(err, &catErr) || catErr.Code != catga.CodeNoHandler {
		t.Fatalf("expected a CodeNoHandler error, got %v", err)
	}
}

type panickyHandler struct{}

func (panickyHandler) Handle(_ context.Context, _ pingCmd) (pongResp, error) {
	panic("boom")
}

func TestSend_PanicIsRecoveredAsCodeUnhandled(t *testing.T) {
	t.Parallel()
	r := catga.NewRegistry()
	if err := catga.RegisterRequest[pingCmd, pongResp](r, panickyHandler{}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	m := catga.New(r)

	_, err := catga.Send[pingCmd, pongResp](context.Background(), m, pingCmd{Name: "world"})
	var catErr *catga.Error
	if !errors.As(err, &catErr) || catErr.Code != catga.CodeUnhandled {
		t.Fatalf("expected a CodeUnhandled error from the recovered panic, got %v", err)
	}
}

func TestSendBatch_PreservesOrder(t *testing.T) {
	t.Parallel()
	r := catga.NewRegistry()
	if err := catga.RegisterRequest[pingCmd, pongResp](r, pingHandler{}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	m := catga.New(r)

	reqs := []pingCmd{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	resps, errs := catga.SendBatch[pingCmd, pongResp](context.Background(), m, reqs)
	for i, want := range []string{"hello a", "hello b", "hello c"} {
		if errs[i] != nil {
			t.Fatalf("unexpected error at index %d: %v", i, errs[i])
		}
		if resps[i].Greeting != want {
			t.Fatalf("expected %q at index %d, got %q", want, i, resps[i].Greeting)
		}
	}
}

func TestPublish_NoHandlersIsNotAnError(t *testing.T) {
	t.Parallel()
	m := catga.New(catga.NewRegistry())
	if err := catga.Publish[counterOpened](context.Background(), m, counterOpened{ID: "A"}); err != nil {
		t.Fatalf("expected publish with no handlers to succeed, got %v", err)
	}
}

func TestPublish_HandlerFailureIsLoggedNotReturned(t *testing.T) {
	t.Parallel()
	r := catga.NewRegistry()
	catga.RegisterEvent[counterOpened](r, catga.EventHandlerFunc[counterOpened](func(_ context.Context, _ counterOpened) error {
		return errors.New("handler exploded")
	}))
	m := catga.New(r)

	if err := catga.Publish[counterOpened](context.Background(), m, counterOpened{ID: "A"}); err != nil {
		t.Fatalf("expected publish to swallow the handler error per the default policy, got %v", err)
	}
}

func TestPublishBatch_PublishesEveryEvent(t *testing.T) {
	t.Parallel()
	r := catga.NewRegistry()
	var seen []string
	catga.RegisterEvent[counterOpened](r, catga.EventHandlerFunc[counterOpened](func(_ context.Context, e counterOpened) error {
		seen = append(seen, e.ID)
		return nil
	}))
	m := catga.New(r)

	catga.PublishBatch[counterOpened](context.Background(), m, []counterOpened{{ID: "A"}, {ID: "B"}})
	if len(seen) != 2 {
		t.Fatalf("expected 2 events published, got %d", len(seen))
	}
}
