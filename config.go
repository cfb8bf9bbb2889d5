package catga

import "time"

// Config enumerates the tunables named in §6. Construct one via
// DevelopmentProfile or ProductionProfile, then override individual
// fields as needed.
type Config struct {
	// BatchSize is the number of events a subscription poll reads per
	// ReadAll call.
	BatchSize int

	// IdempotencyTTL is the default expiry for idempotency entries.
	IdempotencyTTL time.Duration

	Resilience ResilienceConfig
}

// ResilienceConfig mirrors ResilienceProfile's tunables as plain config
// values (no CircuitBreaker instance), so a profile can be built fresh
// per registered request type.
type ResilienceConfig struct {
	MaxAttempts    int
	Timeout        time.Duration
	CircuitBreaker *CircuitBreakerConfig // nil disables the breaker
}

// DevelopmentProfile sets liberal TTLs, no circuit breaker, and is meant
// to be paired with log.Development() (§6).
func DevelopmentProfile() Config {
	return Config{
		BatchSize:      100,
		IdempotencyTTL: 30 * time.Minute,
		Resilience: ResilienceConfig{
			MaxAttempts:    1,
			Timeout:        0,
			CircuitBreaker: nil,
		},
	}
}

// ProductionProfile enables retries, a per-handler timeout, and a
// circuit breaker, meant to be paired with log.Production (§6).
func ProductionProfile() Config {
	return Config{
		BatchSize:      256,
		IdempotencyTTL: 5 * time.Minute,
		Resilience: ResilienceConfig{
			MaxAttempts: 3,
			Timeout:     5 * time.Second,
			CircuitBreaker: &CircuitBreakerConfig{
				Threshold: 5,
				Window:    30 * time.Second,
				Cooldown:  10 * time.Second,
			},
		},
	}
}

// NewResilienceProfile builds a ResilienceProfile from ResilienceConfig,
// with exponential backoff starting at 50ms, capped at 2s.
func NewResilienceProfile(name string, cfg ResilienceConfig) *ResilienceProfile {
	var breaker *CircuitBreaker
	if cfg.CircuitBreaker != nil {
		breaker = NewCircuitBreaker(*cfg.CircuitBreaker)
	}
	return &ResilienceProfile{
		Name:        name,
		MaxAttempts: cfg.MaxAttempts,
		Timeout:     cfg.Timeout,
		Breaker:     breaker,
		Backoff: func(attempt int) time.Duration {
			d := 50 * time.Millisecond * time.Duration(1<<uint(attempt-1))
			if d > 2*time.Second {
				d = 2 * time.Second
			}
			return d
		},
	}
}
