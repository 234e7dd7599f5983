package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the gateway.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nextgen",
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Requests sent to the backend services by outcome",
			},
			[]string{"service", "method", "outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "nextgen",
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Latency of requests sent to the backend services",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "method"},
		),
	}
}

// Register adds the collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observe(service Service, method string, outcome Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(string(service), method, outcome.String()).Inc()
	m.requestDuration.WithLabelValues(string(service), method).Observe(elapsed.Seconds())
}
