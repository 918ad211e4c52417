// Package metrics defines the Prometheus instrumentation for the Remote
// Access Broker and the Orchestrator, following the struct-of-collectors,
// promauto-registered-per-instance style used across the retrieval pack
// (e.g. ipiton-alert-history-service's internal/realtime metrics). Each
// constructor takes a prometheus.Registerer rather than registering against
// the global default registry, so tests can spin up multiple RABs/
// Orchestrators in one process without colliding on metric names.
package metrics
