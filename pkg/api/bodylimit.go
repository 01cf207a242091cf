package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobtracker/jobtracker/pkg/apiresponses"
	"github.com/jobtracker/jobtracker/pkg/config"
)

// BodyLimit caps request bodies at limit bytes. Requests that declare a
// larger Content-Length are answered with 413 before any handler runs;
// others are read through http.MaxBytesReader, and handlers map the
// resulting *http.MaxBytesError with apiresponses.RespondBindError.
func BodyLimit(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		limit = config.DefaultMaxBodyBytes
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			apiresponses.RespondPayloadTooLarge(c, limit)
			c.Abort()
			return
		}
		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
