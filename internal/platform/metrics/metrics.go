package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RegistrationsCreated prometheus.Counter
	RegistrationsDeleted prometheus.Counter
	EmailsSent           prometheus.Counter
	EmailFailures        prometheus.Counter
	ListDurationMs       prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_registrations_created_total",
			Help: "Total number of registrations written to the store",
		}),
		RegistrationsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_registrations_deleted_total",
			Help: "Total number of registrations deleted from the store",
		}),
		EmailsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_confirmation_emails_sent_total",
			Help: "Total number of confirmation emails accepted by the provider",
		}),
		EmailFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_confirmation_email_failures_total",
			Help: "Total number of confirmation emails that failed to send",
		}),
		ListDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "intake_registration_list_duration_ms",
			Help:    "Latency of the full-scan registration listing in milliseconds",
			Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

// ObserveListDuration records one listing latency sample.
func (m *Metrics) ObserveListDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.ListDurationMs.Observe(float64(d.Microseconds()) / 1000.0)
}

// IncrementRegistrationsCreated increments the created counter by 1.
func (m *Metrics) IncrementRegistrationsCreated() {
	if m == nil {
		return
	}
	m.RegistrationsCreated.Inc()
}

// IncrementRegistrationsDeleted increments the deleted counter by 1.
func (m *Metrics) IncrementRegistrationsDeleted() {
	if m == nil {
		return
	}
	m.RegistrationsDeleted.Inc()
}

// IncrementEmailsSent increments the sent-email counter by 1.
func (m *Metrics) IncrementEmailsSent() {
	if m == nil {
		return
	}
	m.EmailsSent.Inc()
}

// IncrementEmailFailures increments the failed-email counter by 1.
func (m *Metrics) IncrementEmailFailures() {
	if m == nil {
		return
	}
	m.EmailFailures.Inc()
}
