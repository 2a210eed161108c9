package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// applySecurityHeaders runs a GET / through SecurityHeadersMiddleware and
// returns the recorder so callers can inspect headers.
func applySecurityHeaders(cfg SecurityHeadersConfig) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestDefaultSecurityHeadersConfig(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig()

	if cfg.EnableHSTS {
		t.Error("EnableHSTS = true, want false until TLS is known")
	}
	if cfg.FrameOptions != "DENY" {
		t.Errorf("FrameOptions = %q, want DENY", cfg.FrameOptions)
	}
	for _, directive := range []string{"default-src 'self'", "form-action 'self'", "frame-ancestors 'none'"} {
		if !strings.Contains(cfg.ContentSecurityPolicy, directive) {
			t.Errorf("ContentSecurityPolicy missing %q: %s", directive, cfg.ContentSecurityPolicy)
		}
	}
}

func TestSecurityHeadersMiddleware_HSTS(t *testing.T) {
	tests := []struct {
		name string
		cfg  SecurityHeadersConfig
		want string
	}{
		{"disabled", SecurityHeadersConfig{}, ""},
		{"max-age only", SecurityHeadersConfig{EnableHSTS: true, HSTSMaxAge: 3600}, "max-age=3600"},
		{"with subdomains", SecurityHeadersConfig{EnableHSTS: true, HSTSMaxAge: 31536000, HSTSIncludeSubdomains: true}, "max-age=31536000; includeSubDomains"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := applySecurityHeaders(tt.cfg)
			if got := w.Header().Get("Strict-Transport-Security"); got != tt.want {
				t.Errorf("Strict-Transport-Security = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSecurityHeadersMiddleware_DefaultHeaders(t *testing.T) {
	w := applySecurityHeaders(DefaultSecurityHeadersConfig())

	want := map[string]string{
		"X-Frame-Options":            "DENY",
		"X-Content-Type-Options":     "nosniff",
		"Referrer-Policy":            "strict-origin-when-cross-origin",
		"Cross-Origin-Opener-Policy": "same-origin",
		"Content-Security-Policy":    pageCSP,
	}
	for header, value := range want {
		if got := w.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
}

func TestSecurityHeadersMiddleware_EmptyValuesOmitted(t *testing.T) {
	w := applySecurityHeaders(SecurityHeadersConfig{})

	for _, header := range []string{"X-Frame-Options", "Content-Security-Policy", "Referrer-Policy", "Permissions-Policy"} {
		if got := w.Header().Get(header); got != "" {
			t.Errorf("%s = %q, want it omitted", header, got)
		}
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}
