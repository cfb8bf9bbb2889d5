// Command orders is catga's worked example: it runs scenario S1 from
// the spec end to end through the real mediator and pipeline instead of
// calling the aggregate directly, then drives a catch-up subscription
// to rebuild a totals projection, the same shape as the teacher's
// example/account/main.go wiring a repository + service pair.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/catga/catga"
	catgalog "github.com/catga/catga/log"
	"github.com/catga/catga/stores/mem"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "orders: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	logger := catgalog.Development()

	store := mem.NewEventStore()
	snapshots := mem.NewSnapshotStore()
	checkpoints := mem.NewCheckpointStore()
	repo := NewRepository(store, snapshots)

	registry := catga.NewRegistry()
	if err := catga.RegisterRequest[OpenOrderCommand, Ack](registry, &OpenOrderHandler{Repo: repo}); err != nil {
		return err
	}
	if err := catga.RegisterRequest[AddItemCommand, Ack](registry, &AddItemHandler{Repo: repo}); err != nil {
		return err
	}
	if err := catga.RegisterRequest[GetOrderTotalQuery, OrderTotal](registry, &GetOrderTotalHandler{Repo: repo}); err != nil {
		return err
	}

	cfg := catga.ProductionProfile()
	profile := catga.NewResilienceProfile("orders", cfg.Resilience)
	registry.RegisterGlobalBehavior(profile.Behavior())

	mediator := catga.New(registry, catga.WithLogger(logger))

	// Scenario S1: OrderCreated, then two ItemAdded events.
	if _, err := catga.Send[OpenOrderCommand, Ack](ctx, mediator, OpenOrderCommand{OrderID: "A"}); err != nil {
		return err
	}
	if _, err := catga.Send[AddItemCommand, Ack](ctx, mediator, AddItemCommand{OrderID: "A", Price: 50, Qty: 2}); err != nil {
		return err
	}
	if _, err := catga.Send[AddItemCommand, Ack](ctx, mediator, AddItemCommand{OrderID: "A", Price: 100, Qty: 1}); err != nil {
		return err
	}

	total, err := catga.Send[GetOrderTotalQuery, OrderTotal](ctx, mediator, GetOrderTotalQuery{OrderID: "A"})
	if err != nil {
		return err
	}
	fmt.Printf("order A: total=%d items=%d (expect total=200 items=2)\n", total.TotalAmount, total.ItemCount)

	// Catch-up subscription + projection rebuild over every Order-* stream.
	projection := NewOrderTotalsProjection()
	runner := &catga.ProjectionRunner{
		Projection:    projection,
		StreamPattern: "Order-*",
		Store:         store,
		Checkpoints:   checkpoints,
	}
	if err := runner.RunOnce(ctx); err != nil {
		return err
	}
	projTotal, projCount := projection.Total("A")
	fmt.Printf("projection: total=%d items=%d\n", projTotal, projCount)

	// Snapshot + time travel (scenario S3 shape): snapshot at version 2
	// (after the first item), then confirm GetStateAtVersion reproduces
	// the state as of that point even after later events are appended.
	streamID := catga.StreamID("Order", "A")
	if err := snapshots.Save(ctx, streamID, 2, snapshotOf(loadAtVersion(ctx, store, "A", 2))); err != nil {
		return err
	}

	atV2, err := catga.GetStateAtVersion[*Order](ctx, NewOrder, store, snapshots, streamID, 2, restore)
	if err != nil {
		return err
	}
	fmt.Printf("time travel v2: total=%d items=%d (expect total=100 items=1)\n", atV2.TotalAmount(), atV2.ItemCount())

	return nil
}

// loadAtVersion is a tiny helper for the snapshot demo above: replay
// exactly the first n events of stream "Order-A" into a fresh Order.
func loadAtVersion(ctx context.Context, store catga.EventStore, orderID string, n int64) *Order {
	result, err := store.Read(ctx, catga.StreamID("Order", orderID), 1, int(n))
	if err != nil {
		panic(err)
	}
	o := NewOrder()
	o.SetStreamID(catga.StreamID("Order", orderID))
	catga.LoadFromHistory(o, result.Events)
	return o
}
