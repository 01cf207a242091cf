package system

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ReqLoggerKey is the context key used to store request-scoped logger in gin context.
	ReqLoggerKey = "reqLogger"
	// RequestIDKey is the context key holding the request ID.
	RequestIDKey = "requestID"
	// RequestIDHeader is read from incoming requests and echoed on responses.
	RequestIDHeader = "X-Request-ID"
)

const maxRequestIDLength = 128

// GetReqLogger returns the request-scoped sugared logger from gin.Context if present,
// otherwise returns the fallback.
func GetReqLogger(c *gin.Context, fallback *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return fallback
	}
	if v, ok := c.Get(ReqLoggerKey); ok {
		if l, ok2 := v.(*zap.SugaredLogger); ok2 {
			return l
		}
	}
	return fallback
}

// RequestID returns the request ID assigned by RequestContext, or "".
func RequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(RequestIDKey)
}

// RequestContext assigns every request an ID and a request-scoped logger.
// A client-supplied X-Request-ID is kept when it is reasonably short;
// otherwise a UUID is generated. The ID is echoed on the response and
// written back to the request header so downstream code sees one value.
func RequestContext(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Request.Header.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Set(RequestIDKey, id)
		c.Set(ReqLoggerKey, base.With(
			"requestID", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"clientIP", c.ClientIP(),
		))
		c.Next()
	}
}
