package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	complaintsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaints_created_total",
			Help: "Total number of complaints filed",
		},
		[]string{"category"},
	)

	complaintStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_status_changes_total",
			Help: "Total number of complaint status changes",
		},
		[]string{"status"},
	)

	reportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_reports_total",
			Help: "Total number of complaint PDF reports rendered",
		},
		[]string{"result"},
	)

	sosAlertsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sos_alerts_created_total",
			Help: "Total number of SOS alerts raised",
		},
		[]string{"priority"},
	)

	sosStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sos_status_changes_total",
			Help: "Total number of SOS alert status changes",
		},
		[]string{"status"},
	)

	smsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_dispatch_total",
			Help: "Total number of SOS dispatch texts attempted",
		},
		[]string{"provider", "result"},
	)

	authAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of login and registration attempts",
		},
		[]string{"action", "result"},
	)

	evidenceUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evidence_uploads_total",
			Help: "Total number of evidence files stored",
		},
		[]string{"provider", "result"},
	)

	// Realtime metrics
	wsConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Number of connected realtime clients",
		},
	)

	wsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of realtime messages dropped",
		},
		[]string{"reason"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RequestStarted marks a request in flight and returns the func that records it.
// path should be the route template so label cardinality stays bounded.
func RequestStarted() func(method, path string, status int) {
	start := time.Now()
	httpRequestsInFlight.Inc()
	return func(method, path string, status int) {
		httpRequestsInFlight.Dec()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// --- Business metric helpers ---

func RecordComplaintCreated(category string) {
	complaintsCreated.WithLabelValues(category).Inc()
}

func RecordComplaintStatusChange(status string) {
	complaintStatusChanges.WithLabelValues(status).Inc()
}

// RecordReport records a PDF render, ok is false when rendering failed
func RecordReport(ok bool) {
	reportsGenerated.WithLabelValues(result(ok)).Inc()
}

func RecordSOSCreated(priority string) {
	sosAlertsCreated.WithLabelValues(priority).Inc()
}

func RecordSOSStatusChange(status string) {
	sosStatusChanges.WithLabelValues(status).Inc()
}

func RecordSMS(provider string, ok bool) {
	smsSent.WithLabelValues(provider, result(ok)).Inc()
}

// RecordAuth records a login or register attempt
func RecordAuth(action string, ok bool) {
	authAttempts.WithLabelValues(action, result(ok)).Inc()
}

func RecordEvidenceUpload(provider string, ok bool) {
	evidenceUploads.WithLabelValues(provider, result(ok)).Inc()
}

func SetWebSocketConnections(n int) {
	wsConnections.Set(float64(n))
}

func RecordWebSocketDrop(reason string) {
	wsDropped.WithLabelValues(reason).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
