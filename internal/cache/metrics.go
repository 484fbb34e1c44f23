package cache

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Read outcomes.
const (
	OutcomeHit         = "hit"
	OutcomeMiss        = "miss"
	OutcomeCorrupt     = "corrupt"
	OutcomeUnavailable = "unavailable"
)

// Metrics holds the Prometheus collectors of the cache layer.
type Metrics struct {
	Reads         *prometheus.CounterVec
	Writes        *prometheus.CounterVec
	Invalidations *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "estate",
			Subsystem: "cache",
			Name:      "reads_total",
			Help:      "Read-through cache lookups by namespace and outcome.",
		}, []string{"namespace", "outcome"}),
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "estate",
			Subsystem: "cache",
			Name:      "writes_total",
			Help:      "Cache population attempts by namespace and result.",
		}, []string{"namespace", "result"}),
		Invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "estate",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Invalidation targets applied by kind and result.",
		}, []string{"kind", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Reads, m.Writes, m.Invalidations)
	}
	return m
}

// metricNamespace keeps label cardinality bounded: scoped namespaces such as
// "favorites:<userID>" collapse to their first segment.
func metricNamespace(key string) string {
	if i := strings.Index(key, Separator); i >= 0 {
		return key[:i]
	}
	return key
}

func (m *Metrics) read(key, outcome string) {
	if m != nil {
		m.Reads.WithLabelValues(metricNamespace(key), outcome).Inc()
	}
}

func (m *Metrics) write(key string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Writes.WithLabelValues(metricNamespace(key), result).Inc()
}

func (m *Metrics) invalidation(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Invalidations.WithLabelValues(kind, result).Inc()
}
