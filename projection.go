package catga

import "context"

// CheckpointStore maps a projection (or subscription) name to the last
// global position it has processed (§6).
type CheckpointStore interface {
	GetCheckpoint(ctx context.Context, name string) (int64, error)
	SaveCheckpoint(ctx context.Context, name string, position int64) error
}

// Projection reduces events to a named derived state. Reset clears the
// derived state and rewinds the checkpoint to 0, enabling a full rebuild
// (§4.4).
type Projection interface {
	Name() string
	Handle(ctx context.Context, env EventEnvelope) error
	Reset(ctx context.Context) error
}

// ProjectionRunner drives a Projection the same way a Runner drives a
// plain subscription, but advances a CheckpointStore keyed by the
// projection's own name instead of a Subscription record.
type ProjectionRunner struct {
	Projection    Projection
	StreamPattern string
	Store         EventStore
	Checkpoints   CheckpointStore
	BatchSize     int
}

// RunOnce reads one batch past the projection's checkpoint and feeds
// matching envelopes to Projection.Handle, advancing the checkpoint past
// every envelope it attempted (success or failure), matching the
// AdvanceAndLog default (§4.4 step 5). An error from Projection.Handle is
// discarded; ProjectionRunner has no halt-and-retry mode.
func (r *ProjectionRunner) RunOnce(ctx context.Context) error {
	name := r.Projection.Name()

	position, err := r.Checkpoints.GetCheckpoint(ctx, name)
	if err != nil {
		return err
	}

	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	envs, err := r.Store.ReadAll(ctx, position, batchSize)
	if err != nil {
		return err
	}

	for _, env := range envs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if r.StreamPattern != "" && !MatchStreamPattern(r.StreamPattern, env.StreamID) {
			continue
		}
		_ = r.Projection.Handle(ctx, env)
		position = env.GlobalPosition
	}

	return r.Checkpoints.SaveCheckpoint(ctx, name, position)
}

// Rebuild resets the projection and replays the entire store from the
// beginning.
func Rebuild(ctx context.Context, r *ProjectionRunner) error {
	if err := r.Projection.Reset(ctx); err != nil {
		return err
	}
	if err := r.Checkpoints.SaveCheckpoint(ctx, r.Projection.Name(), 0); err != nil {
		return err
	}
	for {
		before, err := r.Checkpoints.GetCheckpoint(ctx, r.Projection.Name())
		if err != nil {
			return err
		}
		if err := r.RunOnce(ctx); err != nil {
			return err
		}
		after, err := r.Checkpoints.GetCheckpoint(ctx, r.Projection.Name())
		if err != nil {
			return err
		}
		if after == before {
			return nil
		}
	}
}
