package catga

import (
	"context"
	"sync"
	"time"

	"github.com/catga/catga/metrics"
)

// CircuitState is the state of a CircuitBreaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitHalfOpen
	CircuitOpen
)

// CircuitBreakerConfig tunes a CircuitBreaker (§4.6): it opens after
// Threshold consecutive failures observed within Window, and probes a
// single half-open request after Cooldown.
type CircuitBreakerConfig struct {
	Threshold int
	Window    time.Duration
	Cooldown  time.Duration
}

// CircuitBreaker implements the closed -> open -> half-open -> closed
// state machine described in §4.6.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu            sync.Mutex
	state         CircuitState
	failures      int
	windowStart   time.Time
	openedAt      time.Time
	halfOpenInUse bool
}

// NewCircuitBreaker builds a closed CircuitBreaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, state: CircuitClosed}
}

// Allow reports whether a call may proceed, and if so whether it is the
// single half-open probe. Callers that are denied must not invoke the
// wrapped handler.
func (cb *CircuitBreaker) Allow() (allowed bool, probe bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true, false
	case CircuitOpen:
		if time.Since(cb.openedAt) < cb.cfg.Cooldown {
			return false, false
		}
		cb.state = CircuitHalfOpen
		cb.halfOpenInUse = true
		return true, true
	case CircuitHalfOpen:
		if cb.halfOpenInUse {
			return false, false
		}
		cb.halfOpenInUse = true
		return true, true
	}
	return false, false
}

// RecordSuccess closes the breaker (from any state) and resets counters.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = CircuitClosed
	cb.failures = 0
	cb.halfOpenInUse = false
}

// RecordFailure increments the consecutive-failure count within Window
// and opens the breaker at Threshold, or immediately re-opens from
// half-open.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitHalfOpen {
		cb.state = CircuitOpen
		cb.openedAt = time.Now()
		cb.halfOpenInUse = false
		return
	}

	now := time.Now()
	if cb.windowStart.IsZero() || now.Sub(cb.windowStart) > cb.cfg.Window {
		cb.windowStart = now
		cb.failures = 0
	}
	cb.failures++
	if cb.failures >= cb.cfg.Threshold {
		cb.state = CircuitOpen
		cb.openedAt = now
	}
}

// State returns the breaker's current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// ResilienceProfile wraps handler invocation with retry, timeout and an
// optional circuit breaker (§4.6). Retries and timeouts are transparent
// to the handler; on final failure Error.Attempts records how many
// attempts were made.
type ResilienceProfile struct {
	Name        string
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Timeout     time.Duration
	Breaker     *CircuitBreaker

	Metrics *metrics.Registry
}

// Behavior adapts the profile into a pipeline Behavior.
func (p *ResilienceProfile) Behavior() Behavior {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return func(ctx context.Context, req any, next Next) (any, error) {
		var lastErr error
		made := 0
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			if p.Breaker != nil {
				allowed, _ := p.Breaker.Allow()
				if !allowed {
					return nil, &Error{Code: CodeDependencyFailed, Message: "circuit breaker open", Attempts: attempt - 1}
				}
			}

			callCtx := ctx
			var cancel context.CancelFunc
			if p.Timeout > 0 {
				callCtx, cancel = context.WithTimeout(ctx, p.Timeout)
			}

			out, err := next(callCtx, req)
			made = attempt
			if err != nil {
				// Classify before cancel(): afterwards callCtx always
				// reports Canceled.
				err = classifyTimeout(callCtx, err)
			}
			if cancel != nil {
				cancel()
			}

			if err == nil {
				if p.Breaker != nil {
					p.Breaker.RecordSuccess()
				}
				p.reportBreakerState()
				return out, nil
			}

			lastErr = err
			if p.Breaker != nil {
				p.Breaker.RecordFailure()
			}
			p.reportBreakerState()

			if ctx.Err() != nil {
				break
			}
			if attempt < maxAttempts && p.Backoff != nil {
				select {
				case <-time.After(p.Backoff(attempt)):
				case <-ctx.Done():
					lastErr = &Error{Code: CodeCancelled, Message: "cancelled during backoff"}
					attempt = maxAttempts
				}
			}
		}

		if e, ok := lastErr.(*Error); ok {
			e.Attempts = made
			return nil, e
		}
		return nil, &Error{Code: CodeUnhandled, Message: lastErr.Error(), Attempts: made, Cause: lastErr}
	}
}

func (p *ResilienceProfile) reportBreakerState() {
	if p.Metrics == nil || p.Breaker == nil {
		return
	}
	p.Metrics.CircuitBreakerState.WithLabelValues(p.Name).Set(float64(p.Breaker.State()))
}

// classifyTimeout converts a context deadline/cancellation into the
// matching catga error code (§5's cancellation/timeout contract).
func classifyTimeout(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return &Error{Code: CodeTimeout, Message: "handler deadline exceeded", Cause: err}
	}
	if ctx.Err() == context.Canceled {
		return &Error{Code: CodeCancelled, Message: "context cancelled", Cause: err}
	}
	return err
}
