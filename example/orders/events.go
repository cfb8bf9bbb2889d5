package main

// OrderCreated is emitted when a new order is opened. Amount and item
// count both start at zero; ItemAdded events accumulate them.
type OrderCreated struct {
	OrderID string
}

func (OrderCreated) EventType() string { return "OrderCreated" }

// ItemAdded is emitted each time a line item is added to an open order.
type ItemAdded struct {
	Price int64
	Qty   int64
}

func (ItemAdded) EventType() string { return "ItemAdded" }
