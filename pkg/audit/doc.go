// Package audit records security-relevant events of the jobtracker server
// (logins, logouts, session gate challenges, rate-limit rejections and data
// changes) and forwards them asynchronously to a structured log and,
// optionally, a Kafka topic.
package audit
