package reqid

import (
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

const (
	HeaderName = "X-Request-ID"
	CtxKey     = "request_id"
)

// New returns a middleware that tags every request with a ULID.
// A client-supplied X-Request-ID is kept so retries stay correlatable.
func New() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderName)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(CtxKey, id)
		c.Header(HeaderName, id)
		c.Next()
	}
}
