package audit

import (
	"time"
)

// EventType represents the type of audit event.
type EventType string

const (
	// === Authentication events ===
	EventLoginSucceeded     EventType = "auth.login.succeeded"
	EventLoginFailed        EventType = "auth.login.failed"
	EventLoginMisconfigured EventType = "auth.login.misconfigured"
	EventLogout             EventType = "auth.logout"

	// === Session gate events ===
	EventAccessChallenged EventType = "gate.challenged"

	// === Rate limiting ===
	EventRateLimited EventType = "ratelimit.exceeded"

	// === Tracker data changes ===
	EventResourceCreated EventType = "resource.created"
	EventResourceUpdated EventType = "resource.updated"
	EventResourceDeleted EventType = "resource.deleted"
)

// Severity represents the severity level of an audit event
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event represents a single audit event
type Event struct {
	// ID is a unique identifier for this event
	ID string `json:"id"`

	Type      EventType `json:"type"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`

	// Actor is who triggered the event. There is a single operator, so the
	// actor is identified by network origin only.
	Actor Actor `json:"actor"`

	// Target is what was affected by the event
	Target Target `json:"target"`

	// Details contains event-specific information
	Details map[string]any `json:"details,omitempty"`

	RequestContext *RequestContext `json:"requestContext,omitempty"`
}

// Actor represents who triggered an audit event
type Actor struct {
	SourceIP  string `json:"sourceIP,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// Target represents what was affected by an audit event
type Target struct {
	// Kind is "session", "application", "interview", "skill" or a limiter name.
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
}

// RequestContext contains correlation information
type RequestContext struct {
	// CorrelationID is the X-Request-ID of the originating request.
	CorrelationID string `json:"correlationId,omitempty"`
	Method        string `json:"method,omitempty"`
	Path          string `json:"path,omitempty"`
}

// SeverityForEventType returns the default severity for an event type
func SeverityForEventType(eventType EventType) Severity {
	switch eventType {
	case EventLoginMisconfigured:
		return SeverityCritical
	case EventLoginFailed, EventRateLimited, EventAccessChallenged, EventResourceDeleted:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// IsSensitiveEvent returns true if this event type concerns credentials.
// Sensitive events are logged at warn level by the log sink.
func IsSensitiveEvent(eventType EventType) bool {
	switch eventType {
	case EventLoginFailed, EventLoginMisconfigured, EventRateLimited:
		return true
	default:
		return false
	}
}
