package main

import "context"

// OpenOrderCommand opens a new order. Ack is the empty response type: the
// mediator still requires a typed response per §4.5, even when a command
// has nothing interesting to return.
type OpenOrderCommand struct {
	OrderID string
}

// Ack is a handler response carrying nothing beyond dispatch success.
type Ack struct{}

// AddItemCommand records a line item on an already-open order.
type AddItemCommand struct {
	OrderID string
	Price   int64
	Qty     int64
}

// OpenOrderHandler implements catga.RequestHandler[OpenOrderCommand, Ack].
type OpenOrderHandler struct {
	Repo *Repository
}

func (h *OpenOrderHandler) Handle(ctx context.Context, cmd OpenOrderCommand) (Ack, error) {
	o := NewOrder()
	if err := o.Open(cmd.OrderID); err != nil {
		return Ack{}, err
	}
	if err := h.Repo.Save(ctx, o, nil); err != nil {
		return Ack{}, err
	}
	return Ack{}, nil
}

// AddItemHandler implements catga.RequestHandler[AddItemCommand, Ack].
type AddItemHandler struct {
	Repo *Repository
}

func (h *AddItemHandler) Handle(ctx context.Context, cmd AddItemCommand) (Ack, error) {
	o, err := h.Repo.Load(ctx, cmd.OrderID)
	if err != nil {
		return Ack{}, err
	}
	if err := o.AddItem(cmd.Price, cmd.Qty); err != nil {
		return Ack{}, err
	}
	if err := h.Repo.Save(ctx, o, nil); err != nil {
		return Ack{}, err
	}
	return Ack{}, nil
}
