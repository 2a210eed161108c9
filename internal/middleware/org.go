package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/session"
)

// RequireOrgContext sends the user to fallback unless the control panel is
// scoped to an organization. Membership itself is enforced by the hub API,
// which answers 403 for organizations the user does not belong to.
func RequireOrgContext(fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.FromGin(c).SelectedOrg() != "" {
			c.Next()
			return
		}
		c.Redirect(http.StatusSeeOther, fallback)
		c.Abort()
	}
}
