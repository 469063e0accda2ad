package allocator

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the daemon's collectors on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	resources *prometheus.GaugeVec
	persisted prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wfplan_allocator_requests_total",
				Help: "Allocation API requests by operation and result.",
			},
			[]string{"op", "result"},
		),
		resources: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wfplan_allocator_resources",
				Help: "Resources by allocation state.",
			},
			[]string{"state"},
		),
		persisted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wfplan_allocator_persisted_generation",
			Help: "Registry generation last written to disk.",
		}),
	}
	m.registry.MustRegister(m.requests, m.resources, m.persisted)
	return m
}

func (m *Metrics) observe(op, result string) {
	m.requests.WithLabelValues(op, result).Inc()
}

func (m *Metrics) setStatus(s Status) {
	m.resources.WithLabelValues("total").Set(float64(s.Total))
	m.resources.WithLabelValues("used").Set(float64(s.Used))
	m.resources.WithLabelValues("available").Set(float64(s.Available))
}

// SetPersisted records the generation last written to disk.
func (m *Metrics) SetPersisted(gen uint64) {
	m.persisted.Set(float64(gen))
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
