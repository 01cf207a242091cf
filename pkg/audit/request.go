package audit

import "net/http"

// RequestIDHeader carries the correlation ID assigned by the gateway.
const RequestIDHeader = "X-Request-ID"

// FromRequest builds the actor and request context of an event. clientIP is
// the address resolved by the gateway (honoring trusted proxies), not the raw
// socket peer.
func FromRequest(r *http.Request, clientIP string) (Actor, *RequestContext) {
	actor := Actor{
		SourceIP:  clientIP,
		UserAgent: r.UserAgent(),
	}
	rc := &RequestContext{
		CorrelationID: r.Header.Get(RequestIDHeader),
		Method:        r.Method,
	}
	if r.URL != nil {
		rc.Path = r.URL.Path
	}
	return actor, rc
}
