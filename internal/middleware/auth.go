package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/session"
)

// LoginPath is the sign in page.
const LoginPath = "/login"

// LoginRedirect returns the login page link that sends the user back to
// target after signing in.
func LoginRedirect(target string) string {
	if !IsLocalPath(target) || target == "/" {
		return LoginPath
	}
	return LoginPath + "?redirect=" + url.QueryEscape(target)
}

// IsLocalPath reports whether target is a path on this site. Protocol
// relative ("//host") and backslash variants are rejected so redirect
// parameters cannot send users elsewhere.
func IsLocalPath(target string) bool {
	if target == "" || target[0] != '/' {
		return false
	}
	if len(target) > 1 && (target[1] == '/' || target[1] == '\\') {
		return false
	}
	return !strings.ContainsAny(target, "\r\n")
}

// SafeRedirect returns target when it is a local path and fallback otherwise.
func SafeRedirect(target, fallback string) string {
	if IsLocalPath(target) {
		return target
	}
	return fallback
}

// RequireLogin redirects anonymous visitors to the login page. It relies on
// session.Manager.Middleware having run.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.FromGin(c).IsLoggedIn() {
			c.Next()
			return
		}
		target := c.Request.URL.RequestURI()
		if c.Request.Method != http.MethodGet {
			target = c.Request.URL.Path
		}
		c.Redirect(http.StatusSeeOther, LoginRedirect(target))
		c.Abort()
	}
}
