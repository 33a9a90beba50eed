package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the listing module.
// Tracks creation counts, lifecycle outcomes, and validation failures.
type Metrics struct {
	ListingsCreated    prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	SubmitDuration     prometheus.Histogram
}

// New creates a new Metrics instance with all listing module metrics registered.
func New() *Metrics {
	return &Metrics{
		ListingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "marketdesk_listings_created_total",
			Help: "Total number of listings created",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "marketdesk_listing_status_transitions_total",
			Help: "Total listing status transitions by target status",
		}, []string{"to"}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "marketdesk_listing_validation_failures_total",
			Help: "Total submission validation failures by listing type",
		}, []string{"type"}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketdesk_listing_submit_duration_seconds",
			Help:    "Duration of Submit operations including full validation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCreated records a successful listing creation.
func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.ListingsCreated.Inc()
	}
}

// IncrementTransition records a status transition.
func (m *Metrics) IncrementTransition(to string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(to).Inc()
	}
}

// IncrementValidationFailure records a failed submission validation.
func (m *Metrics) IncrementValidationFailure(listingType string) {
	if m != nil {
		m.ValidationFailures.WithLabelValues(listingType).Inc()
	}
}

// ObserveSubmit records the duration of a Submit operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	if m != nil {
		m.SubmitDuration.Observe(time.Since(start).Seconds())
	}
}
