package main

import (
	"fmt"

	"github.com/catga/catga"
)

// Order is the aggregate root for scenario S1: OrderCreated followed by
// any number of ItemAdded events, reduced to a running total and item
// count. It embeds catga.Base for the uncommitted-event buffer and
// version bookkeeping (§4.3), the same way the teacher's Account embeds
// its own hand-rolled equivalent.
type Order struct {
	catga.Base

	id          string
	opened      bool
	totalAmount int64
	itemCount   int64
}

// NewOrder wires Base's applier to Order.apply, following the pattern
// catga.Base.Init expects: callers construct a zero aggregate, call
// Init once, then either LoadFromHistory or domain methods.
func NewOrder() *Order {
	o := &Order{}
	o.Base.Init("", o.apply)
	return o
}

func (o *Order) TotalAmount() int64 { return o.totalAmount }
func (o *Order) ItemCount() int64   { return o.itemCount }

// Open records OrderCreated for a not-yet-opened order.
func (o *Order) Open(orderID string) error {
	if o.opened {
		return &catga.Error{Code: catga.CodeValidation, Message: "order already opened"}
	}
	if orderID == "" {
		return &catga.Error{Code: catga.CodeValidation, Message: "empty order id"}
	}
	o.SetStreamID(catga.StreamID("Order", orderID))
	o.Raise(OrderCreated{OrderID: orderID})
	return nil
}

// AddItem records ItemAdded for an already-opened order.
func (o *Order) AddItem(price, qty int64) error {
	if !o.opened {
		return &catga.Error{Code: catga.CodeValidation, Message: "order not opened"}
	}
	if qty <= 0 {
		return &catga.Error{Code: catga.CodeValidation, Message: "item quantity must be positive"}
	}
	o.Raise(ItemAdded{Price: price, Qty: qty})
	return nil
}

// apply mutates state for both replay and freshly raised events; it is
// the switch-over-tagged-variant dispatch spec.md §9 prescribes in
// place of reflection-based pattern matching.
func (o *Order) apply(e catga.Event) {
	switch ev := e.(type) {
	case OrderCreated:
		o.id = ev.OrderID
		o.opened = true
	case ItemAdded:
		o.totalAmount += ev.Price * ev.Qty
		o.itemCount++
	default:
		panic(fmt.Sprintf("orders: unknown event type %T", e))
	}
}

var _ catga.Aggregate = (*Order)(nil)
