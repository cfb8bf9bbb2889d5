package main

import (
	"context"
	"strings"
	"sync"

	"github.com/catga/catga"
)

// OrderTotalsProjection reduces ItemAdded events across every Order-*
// stream into a per-order running total, driven by a
// catga.ProjectionRunner against the "Order-*" pattern (§4.4).
type OrderTotalsProjection struct {
	mu      sync.RWMutex
	totals  map[string]int64
	counts  map[string]int64
}

// NewOrderTotalsProjection creates an empty projection.
func NewOrderTotalsProjection() *OrderTotalsProjection {
	return &OrderTotalsProjection{totals: map[string]int64{}, counts: map[string]int64{}}
}

func (p *OrderTotalsProjection) Name() string { return "order-totals" }

func (p *OrderTotalsProjection) Handle(_ context.Context, env catga.EventEnvelope) error {
	item, ok := env.Event.(ItemAdded)
	if !ok {
		return nil
	}
	orderID := strings.TrimPrefix(env.StreamID, "Order-")

	p.mu.Lock()
	defer p.mu.Unlock()
	p.totals[orderID] += item.Price * item.Qty
	p.counts[orderID]++
	return nil
}

func (p *OrderTotalsProjection) Reset(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totals = map[string]int64{}
	p.counts = map[string]int64{}
	return nil
}

// Total returns the derived total and item count for an order id.
func (p *OrderTotalsProjection) Total(orderID string) (total, count int64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.totals[orderID], p.counts[orderID]
}

var _ catga.Projection = (*OrderTotalsProjection)(nil)
