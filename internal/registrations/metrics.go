package registrations

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts webhook outcomes.
type Metrics struct {
	outcomes *prometheus.CounterVec
}

// NewMetrics registers the outcome counter on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registration_outcomes_total",
				Help: "Registration webhook events by outcome.",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.outcomes)
	for _, k := range Kinds {
		m.outcomes.WithLabelValues(string(k))
	}
	return m
}

// Observe counts one outcome. A nil Metrics is a no-op.
func (m *Metrics) Observe(kind Kind) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(string(kind)).Inc()
}
