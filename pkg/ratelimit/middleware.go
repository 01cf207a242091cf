package ratelimit

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jobtracker/jobtracker/pkg/apiresponses"
	"github.com/jobtracker/jobtracker/pkg/audit"
	"github.com/jobtracker/jobtracker/pkg/metrics"
	"github.com/jobtracker/jobtracker/pkg/system"
)

// Header names.
const (
	HeaderPolicy     = "RateLimit-Policy"
	HeaderLimit      = "RateLimit-Limit"
	HeaderRemaining  = "RateLimit-Remaining"
	HeaderReset      = "RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// Middleware returns a gin middleware keyed by c.ClientIP(). Rejected
// requests never reach later handlers. If the store fails, the request is
// answered with 503 when the limiter fails closed and let through otherwise.
func (l *FixedWindow) Middleware() gin.HandlerFunc {
	policy := strconv.Itoa(l.cfg.Max) + ";w=" + strconv.Itoa(int(l.cfg.Window/time.Second))

	return func(c *gin.Context) {
		ip := c.ClientIP()
		d, err := l.Allow(c.Request.Context(), ip)
		if err != nil {
			metrics.RateLimitStoreErrors.WithLabelValues(l.cfg.Name).Inc()
			reqLog := system.GetReqLogger(c, l.log)
			if l.cfg.FailClosed {
				reqLog.Errorw("Rate limit store failed, rejecting request",
					"limiter", l.cfg.Name, "error", err)
				apiresponses.RespondServiceUnavailable(c, "Service temporarily unavailable, please try again later")
				c.Abort()
				return
			}
			reqLog.Warnw("Rate limit store failed, allowing request",
				"limiter", l.cfg.Name, "error", err)
			c.Next()
			return
		}

		resetIn := secondsUntil(l.now(), d.ResetAt)
		c.Header(HeaderPolicy, policy)
		c.Header(HeaderLimit, strconv.Itoa(d.Limit))
		c.Header(HeaderRemaining, strconv.Itoa(d.Remaining))
		c.Header(HeaderReset, strconv.Itoa(resetIn))

		if !d.Allowed {
			c.Header(HeaderRetryAfter, strconv.Itoa(resetIn))
			metrics.RateLimitRejections.WithLabelValues(l.cfg.Name).Inc()
			system.GetReqLogger(c, l.log).Infow("Rate limit exceeded",
				"limiter", l.cfg.Name, "limit", d.Limit, "resetIn", resetIn)
			actor, rc := audit.FromRequest(c.Request, ip)
			l.audit.RateLimited(c.Request.Context(), actor, rc, l.cfg.Name, d.Limit)
			apiresponses.RespondTooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// secondsUntil rounds up so clients never retry before the window ends.
func secondsUntil(now, t time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
