package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics
	LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobtracker_login_attempts_total",
		Help: "Total number of login attempts by result (success, invalid, misconfigured, bad_request)",
	}, []string{"result"})
	GateDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobtracker_gate_decisions_total",
		Help: "Session gate decisions by outcome (pass/challenge) and reason",
	}, []string{"outcome", "reason"})
	Logouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobtracker_logouts_total",
		Help: "Total number of logout requests",
	})

	// Rate limiting
	RateLimitRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobtracker_ratelimit_rejections_total",
		Help: "Requests rejected with 429 by limiter name",
	}, []string{"limiter"})
	RateLimitStoreErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobtracker_ratelimit_store_errors_total",
		Help: "Counter store failures; the limiter fails open on these",
	}, []string{"limiter"})

	// API endpoint metrics
	APIEndpointRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobtracker_api_endpoint_requests_total",
		Help: "Total number of API requests by endpoint",
	}, []string{"endpoint"})
	APIEndpointErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobtracker_api_endpoint_errors_total",
		Help: "Total number of API responses with status >= 400 by endpoint and status",
	}, []string{"endpoint", "status"})
	APIEndpointDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jobtracker_api_endpoint_duration_seconds",
		Help:    "API request latency by endpoint",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// Audit pipeline
	AuditEventsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobtracker_audit_events_processed_total",
		Help: "Audit events successfully written to the sink",
	})
	AuditEventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobtracker_audit_events_dropped_total",
		Help: "Audit events dropped because the queue was full or closed",
	})
	AuditSinkErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobtracker_audit_sink_errors_total",
		Help: "Audit sink write failures by sink name",
	}, []string{"sink"})
)

func init() {
	prometheus.MustRegister(LoginAttempts)
	prometheus.MustRegister(GateDecisions)
	prometheus.MustRegister(Logouts)
	prometheus.MustRegister(RateLimitRejections)
	prometheus.MustRegister(RateLimitStoreErrors)
	prometheus.MustRegister(APIEndpointRequests)
	prometheus.MustRegister(APIEndpointErrors)
	prometheus.MustRegister(APIEndpointDuration)
	prometheus.MustRegister(AuditEventsProcessed)
	prometheus.MustRegister(AuditEventsDropped)
	prometheus.MustRegister(AuditSinkErrors)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
