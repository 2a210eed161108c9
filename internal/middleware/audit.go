package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/session"
)

// AuditMiddleware logs every state-changing control panel request with the
// acting user and organization context. Reads are not logged. Failed actions
// are logged at warn level.
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		sc := session.FromGin(c)
		user := ""
		if u := sc.User(); u != nil {
			user = u.Alias
		}
		action := c.FullPath()
		if action == "" {
			action = c.Request.URL.Path
		}
		status := c.Writer.Status()

		attrs := []any{
			"action", c.Request.Method + " " + action,
			"path", c.Request.URL.Path,
			"status", status,
			"user", user,
			"org", sc.SelectedOrg(),
			"ip", c.ClientIP(),
			"request_id", RequestID(c),
		}
		if status >= http.StatusBadRequest {
			slog.Warn("control panel action failed", attrs...)
			return
		}
		slog.Info("control panel action", attrs...)
	}
}
