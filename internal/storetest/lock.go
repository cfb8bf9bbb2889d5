package storetest

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/catga/catga"
)

// LockFactory creates a new DistributedLock instance for testing.
type LockFactory func(t *testing.T) catga.DistributedLock

// RunLock exercises §8 invariant: among N concurrent TryAcquire calls
// for the same resource, exactly one succeeds, and a stale Release
// (presenting a superseded token) must not clear a later holder's lock.
// Fencing assertions use testify/require instead of bare t.Fatalf: the
// three-way acquired/token/err shape reads noisier without it.
func RunLock(t *testing.T, newStore LockFactory) {
	t.Run("concurrent TryAcquire has exactly one winner", func(t *testing.T) {
		ctx := t.Context()
		l := newStore(t)

		var wins int64
		const n = 10
		var g errgroup.Group
		for i := 0; i < n; i++ {
			g.Go(func() error {
				_, acquired, err := l.TryAcquire(ctx, "resource-1", time.Minute)
				if err != nil {
					return err
				}
				if acquired {
					atomic.AddInt64(&wins, 1)
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())
		require.EqualValues(t, 1, wins, "expected exactly one winner among %d concurrent acquires", n)
	})

	t.Run("release then reacquire", func(t *testing.T) {
		ctx := t.Context()
		l := newStore(t)

		token, acquired, err := l.TryAcquire(ctx, "resource-2", time.Minute)
		require.NoError(t, err)
		require.True(t, acquired, "expected initial acquire to succeed")

		require.NoError(t, l.Release(ctx, "resource-2", token))

		_, acquired, err = l.TryAcquire(ctx, "resource-2", time.Minute)
		require.NoError(t, err)
		require.True(t, acquired, "expected reacquire after release to succeed")
	})

	t.Run("stale release does not clear the new holder", func(t *testing.T) {
		ctx := t.Context()
		l := newStore(t)

		staleToken, acquired, err := l.TryAcquire(ctx, "resource-3", -time.Millisecond)
		require.NoError(t, err)
		require.True(t, acquired, "expected initial acquire to succeed")

		newToken, acquired, err := l.TryAcquire(ctx, "resource-3", time.Minute)
		require.NoError(t, err)
		require.True(t, acquired, "expected acquire after expiry to succeed")
		require.NotEqual(t, staleToken, newToken, "fencing token must change across acquisitions")

		require.NoError(t, l.Release(ctx, "resource-3", staleToken))

		_, acquired, err = l.TryAcquire(ctx, "resource-3", time.Minute)
		require.NoError(t, err)
		require.False(t, acquired, "stale release must not have cleared the new holder's lock")

		require.NoError(t, l.Release(ctx, "resource-3", newToken))

		_, acquired, err = l.TryAcquire(ctx, "resource-3", time.Minute)
		require.NoError(t, err)
		require.True(t, acquired, "expected acquire after genuine release to succeed")
	})
}
