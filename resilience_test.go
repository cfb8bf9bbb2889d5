package catga_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/catga/catga"
)

// Circuit breaker transitions read noisier as bare if/t.Fatalf chains
// given how many state fields back each assertion, so this file alone
// uses testify/require, matching internal/storetest/lock.go.

func TestCircuitBreaker_OpensAfterThresholdFailures(t *testing.T) {
	t.Parallel()
	cb := catga.NewCircuitBreaker(catga.CircuitBreakerConfig{Threshold: 3, Window: time.Minute, Cooldown: time.Millisecond})

	for i := 0; i < 2; i++ {
		allowed, _ := cb.Allow()
		require.True(t, allowed)
		cb.RecordFailure()
	}
	require.Equal(t, catga.CircuitClosed, cb.State(), "breaker should remain closed before the threshold is reached")

	allowed, _ := cb.Allow()
	require.True(t, allowed)
	cb.RecordFailure()
	require.Equal(t, catga.CircuitOpen, cb.State(), "breaker should open on the threshold-th consecutive failure")
}

func TestCircuitBreaker_DeniesCallsWhileOpenThenProbesAfterCooldown(t *testing.T) {
	t.Parallel()
	cb := catga.NewCircuitBreaker(catga.CircuitBreakerConfig{Threshold: 1, Window: time.Minute, Cooldown: 10 * time.Millisecond})

	allowed, _ := cb.Allow()
	require.True(t, allowed)
	cb.RecordFailure()
	require.Equal(t, catga.CircuitOpen, cb.State())

	allowed, probe := cb.Allow()
	require.False(t, allowed, "calls during cooldown must be denied")
	require.False(t, probe)

	time.Sleep(15 * time.Millisecond)
	allowed, probe = cb.Allow()
	require.True(t, allowed, "exactly one probe call should be allowed after cooldown")
	require.True(t, probe)

	allowed, _ = cb.Allow()
	require.False(t, allowed, "a second concurrent half-open call must be denied")
}

func TestCircuitBreaker_SuccessClosesFromHalfOpen(t *testing.T) {
	t.Parallel()
	cb := catga.NewCircuitBreaker(catga.CircuitBreakerConfig{Threshold: 1, Window: time.Minute, Cooldown: time.Millisecond})

	cb.Allow()
	cb.RecordFailure()
	time.Sleep(2 * time.Millisecond)
	allowed, probe := cb.Allow()
	require.True(t, allowed)
	require.True(t, probe)

	cb.RecordSuccess()
	require.Equal(t, catga.CircuitClosed, cb.State())
}

func TestResilienceProfile_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()
	profile := catga.NewResilienceProfile("retry-test", catga.ResilienceConfig{MaxAttempts: 3, Timeout: 0})

	attempts := 0
	behavior := profile.Behavior()
	_, err := behavior(context.Background(), pingCmd{}, func(ctx context.Context, req any) (any, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient")
		}
		return pongResp{Greeting: "ok"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestResilienceProfile_ExhaustsAttemptsAndReportsCount(t *testing.T) {
	t.Parallel()
	profile := catga.NewResilienceProfile("retry-test", catga.ResilienceConfig{MaxAttempts: 2, Timeout: 0})

	attempts := 0
	behavior := profile.Behavior()
	_, err := behavior(context.Background(), pingCmd{}, func(ctx context.Context, req any) (any, error) {
		attempts++
		return nil, errors.New("permanent")
	})
	require.Error(t, err)
	require.Equal(t, 2, attempts)

	var catErr *catga.Error
	require.ErrorAs(t, err, &catErr)
	require.Equal(t, 2, catErr.Attempts)
}

func TestResilienceProfile_TimeoutClassifiesAsCodeTimeout(t *testing.T) {
	t.Parallel()
	profile := catga.NewResilienceProfile("timeout-test", catga.ResilienceConfig{MaxAttempts: 1, Timeout: 5 * time.Millisecond})

	behavior := profile.Behavior()
	_, err := behavior(context.Background(), pingCmd{}, func(ctx context.Context, req any) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	var catErr *catga.Error
	require.ErrorAs(t, err, &catErr)
	require.Equal(t, catga.CodeTimeout, catErr.Code)
}
