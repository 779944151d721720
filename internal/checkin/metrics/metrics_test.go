package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncConflict(ResourceCode)
		m.ObserveCreated(ResourceCode, 1)
		m.ObserveResolved(ResourceOccurrence, 2)
		m.IncExhausted(ResourceOccurrence)
		m.IncCheckin("recorded")
		m.ObserveCheckinLatency(0)
		m.IncAuthzDenial("person")
		m.IncSearch("miss")
	})
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncConflict(ResourceCode)
	m.IncConflict(ResourceCode)
	m.ObserveCreated(ResourceOccurrence, 1)
	m.IncExhausted(ResourceCode)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Conflicts.WithLabelValues(ResourceCode)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Created.WithLabelValues(ResourceOccurrence)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exhausted.WithLabelValues(ResourceCode)))
}
