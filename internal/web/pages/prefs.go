package pages

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/middleware"
	"github.com/packagehub/hub-web/internal/session"
)

// SetTheme stores the theme preference and returns to the page it was
// changed from. For "automatic" the effective theme follows the browser's
// Sec-CH-Prefers-Color-Scheme hint.
// POST /prefs/theme
func (h *Handlers) SetTheme() gin.HandlerFunc {
	return func(c *gin.Context) {
		prefs := session.FromGin(c).Prefs
		prefersDark := c.GetHeader("Sec-CH-Prefers-Color-Scheme") == "dark"
		if err := prefs.SetTheme(c.PostForm("theme"), prefersDark); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		h.savePrefs(c, prefs)
	}
}

// SetSearchLimit stores the search page size preference.
// POST /prefs/search-limit
func (h *Handlers) SetSearchLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		prefs := session.FromGin(c).Prefs
		limit, err := strconv.Atoi(c.PostForm("limit"))
		if err == nil {
			err = prefs.SetSearchLimit(limit)
		}
		if err != nil {
			c.String(http.StatusBadRequest, "invalid search limit")
			return
		}
		h.savePrefs(c, prefs)
	}
}

func (h *Handlers) savePrefs(c *gin.Context, prefs session.Prefs) {
	if err := h.Sessions.SavePrefs(c, prefs); err != nil {
		slog.Error("failed to save preferences", "error", err, "request_id", middleware.RequestID(c))
		c.String(http.StatusInternalServerError, "failed to save preferences")
		return
	}
	c.Redirect(http.StatusSeeOther, middleware.SafeRedirect(c.PostForm("redirect"), "/"))
}
