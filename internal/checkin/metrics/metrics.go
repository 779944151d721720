// Package metrics provides observability for check-in coordination.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resource labels for coordinator metrics.
const (
	ResourceOccurrence = "occurrence"
	ResourceCode       = "code"
)

// Metrics provides observability for the check-in module. All methods are nil-safe.
type Metrics struct {
	// Insert attempts that hit a unique index, by resource.
	Conflicts *prometheus.CounterVec

	// Rows created by the coordinator, by resource.
	Created *prometheus.CounterVec

	// Retry budgets exhausted, by resource.
	Exhausted *prometheus.CounterVec

	// Attempts needed per coordinator call, by resource.
	Attempts *prometheus.HistogramVec

	// Check-in outcomes: recorded, already_checked_in, not_authorized, busy, error.
	Checkins *prometheus.CounterVec

	CheckinLatency prometheus.Histogram

	// Authorization denials by failing check.
	AuthzDenials *prometheus.CounterVec

	// Kiosk search outcomes: hit, miss, throttled, error.
	Searches *prometheus.CounterVec
}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Conflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checkin_unique_conflicts_total",
			Help: "Inserts rejected by a unique index, by resource",
		}, []string{"resource"}),

		Created: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checkin_rows_created_total",
			Help: "Occurrence and code rows created by the coordinator",
		}, []string{"resource"}),

		Exhausted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checkin_concurrency_exhausted_total",
			Help: "Coordinator calls that ran out of retry attempts",
		}, []string{"resource"}),

		Attempts: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "checkin_coordinator_attempts",
			Help:    "Attempts used per successful coordinator call",
			Buckets: []float64{1, 2, 3, 4, 5, 7, 10},
		}, []string{"resource"}),

		Checkins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checkin_attendance_outcomes_total",
			Help: "Check-in outcomes",
		}, []string{"outcome"}),

		CheckinLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkin_attendance_duration_seconds",
			Help:    "Duration of a full check-in including retries",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		AuthzDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checkin_authorization_denials_total",
			Help: "Authorization failures by failing check",
		}, []string{"check"}),

		Searches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checkin_kiosk_searches_total",
			Help: "Kiosk family searches by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncConflict(resource string) {
	if m != nil {
		m.Conflicts.WithLabelValues(resource).Inc()
	}
}

// ObserveCreated records a successful coordinator call and how many attempts it took.
func (m *Metrics) ObserveCreated(resource string, attempts int) {
	if m != nil {
		m.Created.WithLabelValues(resource).Inc()
		m.Attempts.WithLabelValues(resource).Observe(float64(attempts))
	}
}

// ObserveResolved records an occurrence found by read-back after a conflict.
func (m *Metrics) ObserveResolved(resource string, attempts int) {
	if m != nil {
		m.Attempts.WithLabelValues(resource).Observe(float64(attempts))
	}
}

func (m *Metrics) IncExhausted(resource string) {
	if m != nil {
		m.Exhausted.WithLabelValues(resource).Inc()
	}
}

func (m *Metrics) IncCheckin(outcome string) {
	if m != nil {
		m.Checkins.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveCheckinLatency(d time.Duration) {
	if m != nil {
		m.CheckinLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncAuthzDenial(check string) {
	if m != nil {
		m.AuthzDenials.WithLabelValues(check).Inc()
	}
}

func (m *Metrics) IncSearch(outcome string) {
	if m != nil {
		m.Searches.WithLabelValues(outcome).Inc()
	}
}
