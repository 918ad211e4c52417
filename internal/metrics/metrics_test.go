package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestNewRABMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRABMetrics(reg, "cassandra")

	assert.NotNil(t, m.RequestsTotal)
	assert.NotNil(t, m.RequestsInFlight)
	assert.NotNil(t, m.ResponseSeconds)

	// Should not panic, and should be visible to the registry it was built
	// against.
	m.RequestsTotal.WithLabelValues("outbound", "ok").Inc()
	m.RequestsInFlight.Inc()
	m.ResponseSeconds.Observe(0.01)

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewOrchestratorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrchestratorMetrics(reg, "cassandra")

	assert.NotNil(t, m.ComponentStatus)
	assert.NotNil(t, m.RunsTotal)

	m.ComponentStatus.WithLabelValues("A").Set(1)
	m.RunsTotal.WithLabelValues("success").Inc()

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewMetrics_NilRegistererSkipsRegistration(t *testing.T) {
	// A nil Registerer (the CLI's default when no registry is wired in) must
	// not panic: promauto only registers when given a non-nil Registerer.
	assert.NotPanics(t, func() {
		NewRABMetrics(nil, "cassandra")
		NewOrchestratorMetrics(nil, "cassandra")
	})
}
