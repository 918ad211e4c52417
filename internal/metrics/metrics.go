package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RABMetrics tracks Remote Access Broker traffic: one counter per
// direction/outcome, plus an in-flight gauge for the inbound worker pool.
type RABMetrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsInFlight prometheus.Gauge
	ResponseSeconds  prometheus.Histogram
}

// NewRABMetrics registers a RABMetrics against reg (pass a fresh
// prometheus.NewRegistry() in tests, or prometheus.DefaultRegisterer in
// production) under namespace/rab.
func NewRABMetrics(reg prometheus.Registerer, namespace string) *RABMetrics {
	factory := promauto.With(reg)
	return &RABMetrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rab",
			Name:      "requests_total",
			Help:      "Remote capability requests handled, by direction and outcome.",
		}, []string{"direction", "outcome"}),
		RequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rab",
			Name:      "requests_in_flight",
			Help:      "Inbound remote requests currently being serviced by the worker pool.",
		}),
		ResponseSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rab",
			Name:      "response_seconds",
			Help:      "Remote request latency: outbound, from sending a fetch_remote request to receiving its response; inbound, from starting to service a peer's request to sending the response.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// OrchestratorMetrics tracks per-run component outcomes.
type OrchestratorMetrics struct {
	ComponentStatus *prometheus.GaugeVec
	RunsTotal       *prometheus.CounterVec
}

// NewOrchestratorMetrics registers an OrchestratorMetrics against reg under
// namespace/orchestrator.
func NewOrchestratorMetrics(reg prometheus.Registerer, namespace string) *OrchestratorMetrics {
	factory := promauto.With(reg)
	return &OrchestratorMetrics{
		ComponentStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "component_status",
			Help:      "Terminal status of each component in the most recent run (0=pending, 1=success, 2=failure).",
		}, []string{"component"}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "runs_total",
			Help:      "Completed orchestrator runs, by outcome.",
		}, []string{"outcome"}),
	}
}
