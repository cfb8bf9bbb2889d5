package main

import "encoding/json"

// OrderSnapshot is the persisted state shape stored by SnapshotStore.Save
// and restored by Repository.Load / GetStateAtVersion (§4.2, §4.3). It
// carries its own Version so restore can seed Base's counter correctly:
// the snapshot store's Snapshot.Version is not itself passed to restore.
type OrderSnapshot struct {
	OrderID     string `json:"order_id"`
	TotalAmount int64  `json:"total_amount"`
	ItemCount   int64  `json:"item_count"`
	Version     int64  `json:"version"`
}

func snapshotOf(o *Order) OrderSnapshot {
	return OrderSnapshot{OrderID: o.id, TotalAmount: o.totalAmount, ItemCount: o.itemCount, Version: o.Version()}
}

// restore seeds a freshly constructed Order from a decoded snapshot
// state before the remaining events are replayed on top. state is nil
// when no snapshot was found.
func restore(o *Order, state any) {
	if state == nil {
		return
	}
	snap, ok := asOrderSnapshot(state)
	if !ok {
		return
	}
	o.id = snap.OrderID
	o.opened = snap.OrderID != ""
	o.totalAmount = snap.TotalAmount
	o.itemCount = snap.ItemCount
	o.SetVersion(snap.Version)
}

// asOrderSnapshot accepts either the concrete OrderSnapshot (stores/mem
// round-trips values in-process) or a map[string]any (stores/pgx
// round-trips through JSON).
func asOrderSnapshot(state any) (OrderSnapshot, bool) {
	switch v := state.(type) {
	case OrderSnapshot:
		return v, true
	case map[string]any:
		raw, err := json.Marshal(v)
		if err != nil {
			return OrderSnapshot{}, false
		}
		var out OrderSnapshot
		if err := json.Unmarshal(raw, &out); err != nil {
			return OrderSnapshot{}, false
		}
		return out, true
	default:
		return OrderSnapshot{}, false
	}
}
