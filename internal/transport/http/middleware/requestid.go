package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// KeyRequestID is both the header and the gin context key for the request id.
const KeyRequestID = "X-Request-ID"

// RequestID tags every request with an id so log lines can be correlated. A
// caller-supplied header value is kept, letting ids follow a request across
// services; otherwise a fresh uuid is minted. The id is echoed back in the
// response and stashed in the context for the access log.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(KeyRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}
