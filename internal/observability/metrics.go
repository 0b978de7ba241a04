package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelsia_api_requests_total",
			Help: "Total number of backend API requests",
		},
		[]string{"operation", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelsia_api_request_duration_seconds",
			Help:    "Backend API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	sessionInvalidationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "travelsia_session_invalidations_total",
			Help: "Number of times a 401 de-authenticated the client",
		},
	)
)

// RegisterMetrics registers the client metrics with the given registerer.
// Pass prometheus.DefaultRegisterer for the usual global registry.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		apiRequestsTotal,
		apiRequestDuration,
		sessionInvalidationsTotal,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// RecordAPIRequest records one backend call outcome.
func RecordAPIRequest(operation, status string, duration time.Duration) {
	apiRequestsTotal.WithLabelValues(operation, status).Inc()
	apiRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSessionInvalidation records a 401-triggered de-authentication.
func RecordSessionInvalidation() {
	sessionInvalidationsTotal.Inc()
}
