// Package metrics instruments the mediator and resilience pipeline with
// Prometheus collectors, the way cuemby/warren's scheduler and
// reconciler packages instrument their own work loops.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles the collectors catga components publish to. Callers
// register it against their own *prometheus.Registry (or the default
// one) via MustRegisterOn.
type Registry struct {
	DispatchTotal        *prometheus.CounterVec
	DispatchDuration     *prometheus.HistogramVec
	EventHandlerFailures *prometheus.CounterVec
	CircuitBreakerState  *prometheus.GaugeVec
	OutboxBacklog        prometheus.Gauge
}

// NewRegistry builds an unregistered Registry.
func NewRegistry() *Registry {
	return &Registry{
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catga",
			Name:      "dispatch_total",
			Help:      "Total Send dispatches, by request type and outcome.",
		}, []string{"message_type", "outcome"}),
		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catga",
			Name:      "dispatch_duration_seconds",
			Help:      "Dispatch latency from Send entry to result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"message_type"}),
		EventHandlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catga",
			Name:      "event_handler_failures_total",
			Help:      "Event handler failures, by event type.",
		}, []string{"event_type"}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "catga",
			Name:      "circuit_breaker_state",
			Help:      "0=closed, 1=half-open, 2=open, by resilience profile name.",
		}, []string{"profile"}),
		OutboxBacklog: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "catga",
			Name:      "outbox_pending",
			Help:      "Number of pending outbox entries at last poll.",
		}),
	}
}

// MustRegisterOn registers every collector in r on reg, panicking on a
// duplicate-registration error (mirrors prometheus's own MustRegister).
func (r *Registry) MustRegisterOn(reg *prometheus.Registry) {
	reg.MustRegister(
		r.DispatchTotal,
		r.DispatchDuration,
		r.EventHandlerFailures,
		r.CircuitBreakerState,
		r.OutboxBacklog,
	)
}
