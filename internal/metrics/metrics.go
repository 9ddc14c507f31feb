// Package metrics exposes counters for model calls and local fallbacks.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Model call outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeCancelled = "cancelled"
)

type Metrics struct {
	ModelCalls *prometheus.CounterVec
	Fallbacks  *prometheus.CounterVec
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ModelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "canteen",
			Name:      "model_calls_total",
			Help:      "Outbound model calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "canteen",
			Name:      "fallbacks_total",
			Help:      "Results computed locally instead of by the model, by operation and reason.",
		}, []string{"operation", "reason"}),
	}
	reg.MustRegister(m.ModelCalls, m.Fallbacks)
	return m
}

func (m *Metrics) ModelCall(operation, outcome string) {
	m.ModelCalls.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) Fallback(operation, reason string) {
	m.Fallbacks.WithLabelValues(operation, reason).Inc()
}
