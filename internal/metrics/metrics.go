package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_api_requests_total",
			Help: "Total outbound requests to the hospital backend.",
		},
		[]string{"method", "endpoint", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_api_request_duration_seconds",
			Help:    "Outbound request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	authRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_auth_rejections_total",
		Help: "Responses that invalidated the local session.",
	})

	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_exports_total",
			Help: "CSV export attempts by outcome.",
		},
		[]string{"type", "status"},
	)
)

// Init registers all metrics in the default registry.
func Init() {
	prometheus.MustRegister(apiRequestsTotal, apiRequestDuration, authRejectionsTotal, exportsTotal)
}

// ObserveRequest records one outbound API call.
func ObserveRequest(method, endpoint string, status int, duration time.Duration) {
	apiRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	apiRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// AuthRejected counts a session-invalidating response.
func AuthRejected() {
	authRejectionsTotal.Inc()
}

// ExportResult counts a CSV export attempt.
func ExportResult(exportType, status string) {
	exportsTotal.WithLabelValues(exportType, status).Inc()
}
