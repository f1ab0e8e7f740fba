package workflow

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/garyjia/hr-portal/internal/domain/entity"
)

// Metrics counts committed workflow transitions
type Metrics struct {
	transitions *prometheus.CounterVec
}

// NewMetrics registers the workflow collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrportal",
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "Committed workflow transitions by request type and action.",
		}, []string{"type", "action"}),
	}
	reg.MustRegister(m.transitions)
	return m
}

func (m *Metrics) observe(t entity.RequestType, action string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(t), action).Inc()
}
