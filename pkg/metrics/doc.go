// Package metrics defines Prometheus metrics for the jobtracker server,
// covering login attempts, session gate decisions, rate limiting, API
// endpoints and the audit pipeline.
package metrics
