package catga

import (
	"sync/atomic"
	"time"
)

// MessageID is a process-monotonic identifier assigned to every request
// and event handed to the mediator.
type MessageID int64

var messageSeq atomic.Int64

func init() {
	// Seed from wall-clock milliseconds so ids do not collide with a
	// previous process run within the same second.
	messageSeq.Store(time.Now().UnixMilli())
}

// NextMessageID returns a fresh, strictly increasing MessageID.
func NextMessageID() MessageID {
	return MessageID(messageSeq.Add(1))
}
