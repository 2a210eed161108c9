// Package middleware provides the gin middleware of the hub web front-end:
// request identification, metrics, security headers, rate limiting, login
// gating and control panel audit logging. internal/web/router.go registers
// them in order.
package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/telemetry"
)

// noRoute labels requests that matched no registered route.
const noRoute = "<no-route>"

// MetricsMiddleware records telemetry.HTTPRequestsTotal and
// telemetry.HTTPRequestDuration for every request. The path label is the
// matched route template (/packages/:kind/:repo/:name) rather than the raw
// URL so package names do not explode label cardinality. Requests whose path
// starts with one of skipPrefixes (static assets, probes) are not recorded.
//
// Register after gin.Recovery() so the status written by the recovery
// handler is the one observed.
func MetricsMiddleware(skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range skipPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, p) {
				c.Next()
				return
			}
		}

		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = noRoute
		}
		method := c.Request.Method

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
