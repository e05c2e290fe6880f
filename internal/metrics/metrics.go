// Package metrics collects and exposes Prometheus metrics for the auth flows.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records flow events as Prometheus counters. It satisfies the
// flow package's EventRecorder.
type Collector struct {
	flowEvents   *prometheus.CounterVec
	loginLatency prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	collector := &Collector{
		flowEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillstream_auth_events_total",
			Help: "Auth flow events by name (login.main, signup.created, signout.forced, ...).",
		}, []string{"event"}),
		loginLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillstream_login_latency_seconds",
			Help:    "End-to-end latency of login submissions.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(collector.flowEvents, collector.loginLatency)
	return collector
}

// Increment counts one flow event.
func (collector *Collector) Increment(event string) {
	collector.flowEvents.WithLabelValues(event).Inc()
}

// ObserveLoginLatency records one login submission's duration.
func (collector *Collector) ObserveLoginLatency(duration time.Duration) {
	collector.loginLatency.Observe(duration.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
