package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the HTTP header carrying the request identifier.
	RequestIDHeader = "X-Request-ID"

	// RequestIDKey is the gin.Context key under which the request ID is stored.
	RequestIDKey = "request_id"

	// maxRequestIDLength bounds identifiers accepted from upstream proxies.
	maxRequestIDLength = 128
)

// RequestIDMiddleware ensures every request carries an identifier, reusing the
// X-Request-ID set by an upstream proxy when it looks sane and generating a
// UUID otherwise. The ID is stored under RequestIDKey and echoed back in the
// response so page errors can be correlated with log entries.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.New().String()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}

// validRequestID accepts printable ASCII without spaces so forwarded values
// cannot inject content into log lines or response headers.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

// RequestID returns the identifier of the current request, or "".
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
