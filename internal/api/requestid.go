package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-Id"

// RequestIDMiddleware preserves an incoming request id or generates one, and
// echoes it back to the client for log correlation.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("requestId", rid)
		c.Writer.Header().Set(headerRequestID, rid)
		c.Next()
	}
}
