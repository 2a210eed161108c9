package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIsLocalPath(t *testing.T) {
	tests := []struct {
		target string
		want   bool
	}{
		{"/", true},
		{"/control-panel/repositories?page=2", true},
		{"", false},
		{"https://evil.example.com", false},
		{"//evil.example.com", false},
		{"/\\evil.example.com", false},
		{"control-panel", false},
		{"/x\r\nSet-Cookie: a=b", false},
	}
	for _, tt := range tests {
		if got := IsLocalPath(tt.target); got != tt.want {
			t.Errorf("IsLocalPath(%q) = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestLoginRedirect(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"/control-panel/repositories?page=2", "/login?redirect=%2Fcontrol-panel%2Frepositories%3Fpage%3D2"},
		{"/", "/login"},
		{"", "/login"},
		{"//evil.example.com", "/login"},
	}
	for _, tt := range tests {
		if got := LoginRedirect(tt.target); got != tt.want {
			t.Errorf("LoginRedirect(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/packages/search", SafeRedirect("/packages/search", "/"))
	assert.Equal(t, "/", SafeRedirect("https://evil.example.com", "/"))
	assert.Equal(t, "/", SafeRedirect("", "/"))
}

// ---------------------------------------------------------------------------
// RequireLogin
// ---------------------------------------------------------------------------

func newProtectedRouter(f *sessionFixture) *gin.Engine {
	r := f.router()
	cp := r.Group("/control-panel", RequireLogin())
	cp.GET("/repositories", func(c *gin.Context) { c.String(http.StatusOK, "repositories") })
	cp.POST("/repositories", func(c *gin.Context) { c.String(http.StatusOK, "added") })
	return r
}

func TestRequireLogin_RedirectsAnonymous(t *testing.T) {
	r := newProtectedRouter(newSessionFixture())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/control-panel/repositories?page=2", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?redirect=%2Fcontrol-panel%2Frepositories%3Fpage%3D2", w.Header().Get("Location"))
}

func TestRequireLogin_PostRedirectDropsQuery(t *testing.T) {
	r := newProtectedRouter(newSessionFixture())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/control-panel/repositories?x=1", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?redirect=%2Fcontrol-panel%2Frepositories", w.Header().Get("Location"))
}

func TestRequireLogin_AllowsSignedIn(t *testing.T) {
	f := newSessionFixture()
	r := newProtectedRouter(f)

	req := httptest.NewRequest(http.MethodGet, "/control-panel/repositories", nil)
	req.AddCookie(f.login(t, "jdoe"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "repositories", w.Body.String())
}
