package mem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/catga/catga"
)

// SnapshotStore is an in-memory, history-keeping catga.SnapshotStore
// (§4.2, §9 "enhanced vs plain"). Grounded on the teacher's
// SaveSnapshot/LoadSnapshot pair, extended to keep every snapshot ever
// saved for a stream rather than overwriting.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string][]catga.Snapshot // ordered by version ascending
}

// NewSnapshotStore creates an empty in-memory SnapshotStore.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[string][]catga.Snapshot)}
}

func (s *SnapshotStore) Save(_ context.Context, streamID string, version int64, state any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[streamID] = append(s.snapshots[streamID], catga.Snapshot{
		StreamID: streamID,
		State:    state,
		Version:  version,
		Found:    true,
		At:       time.Now(),
	})
	sort.SliceStable(s.snapshots[streamID], func(i, j int) bool {
		return s.snapshots[streamID][i].Version < s.snapshots[streamID][j].Version
	})
	return nil
}

func (s *SnapshotStore) LoadLatest(ctx context.Context, streamID string) (catga.Snapshot, error) {
	s.mu.RLock()
	history := s.snapshots[streamID]
	s.mu.RUnlock()

	if len(history) == 0 {
		return catga.Snapshot{Found: false}, nil
	}
	return history[len(history)-1], nil
}

func (s *SnapshotStore) LoadAtVersion(_ context.Context, streamID string, version int64) (catga.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best catga.Snapshot
	found := false
	for _, snap := range s.snapshots[streamID] {
		if snap.Version <= version && (!found || snap.Version > best.Version) {
			best = snap
			found = true
		}
	}
	if !found {
		return catga.Snapshot{Found: false}, nil
	}
	return best, nil
}

func (s *SnapshotStore) History(_ context.Context, streamID string) ([]catga.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catga.Snapshot, len(s.snapshots[streamID]))
	copy(out, s.snapshots[streamID])
	return out, nil
}

var _ catga.SnapshotStore = (*SnapshotStore)(nil)
