package main

import "context"

// GetOrderTotalQuery asks for an order's current total and item count.
type GetOrderTotalQuery struct {
	OrderID string
}

// OrderTotal is the response to GetOrderTotalQuery.
type OrderTotal struct {
	TotalAmount int64
	ItemCount   int64
}

// GetOrderTotalHandler implements
// catga.RequestHandler[GetOrderTotalQuery, OrderTotal] by rehydrating
// the aggregate directly; a read-heavy deployment would instead read
// from OrderTotalsProjection (projection.go).
type GetOrderTotalHandler struct {
	Repo *Repository
}

func (h *GetOrderTotalHandler) Handle(ctx context.Context, q GetOrderTotalQuery) (OrderTotal, error) {
	o, err := h.Repo.Load(ctx, q.OrderID)
	if err != nil {
		return OrderTotal{}, err
	}
	return OrderTotal{TotalAmount: o.TotalAmount(), ItemCount: o.ItemCount()}, nil
}
