// Package web wires together the routes of the hub web front-end.
//
// Route grouping:
//   - Public pages (home, search, package detail, sign in) render for
//     anonymous visitors; the session middleware still runs so the navbar
//     knows who is signed in.
//   - /control-panel/ requires a session. Pages acting on an organization
//     additionally require one to be selected in the preferences cookie.
//   - /health, /ready and /version are JSON probes for the orchestrator and
//     skip the page metrics.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/packagehub/hub-web/internal/config"
	"github.com/packagehub/hub-web/internal/middleware"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/view"
	"github.com/packagehub/hub-web/internal/web/controlpanel"
	"github.com/packagehub/hub-web/internal/web/handler"
	"github.com/packagehub/hub-web/internal/web/pages"
	"github.com/packagehub/hub-web/internal/web/static"
	"github.com/packagehub/hub-web/pkg/urlutil"
)

// Version is the build version reported by /version. Set with
// -ldflags "-X github.com/packagehub/hub-web/internal/web.Version=...".
var Version = "0.1.0"

const notFoundMessage = "Sorry, the page you are looking for could not be found."

// Dependencies are the collaborators the router needs. Redis is only
// required when the rate limiter backend is "redis".
type Dependencies struct {
	API           handler.HubAPI
	Sessions      *session.Manager
	Redis         redis.UniversalClient
	SampleQueries urlutil.SampleQueries
}

// BackgroundServices holds references to background resources that must be
// stopped during graceful shutdown. The caller (cmd/server) is responsible
// for calling Shutdown when the process receives a termination signal.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the
// HTTP server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, *BackgroundServices, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, nil, fmt.Errorf("loading page templates: %w", err)
	}
	samples := deps.SampleQueries
	if len(samples) == 0 {
		samples = urlutil.DefaultSampleQueries()
	}

	bg := &BackgroundServices{}
	pageLimiter, authLimiter, err := newRateLimiters(cfg, deps.Redis, bg)
	if err != nil {
		return nil, nil, err
	}

	router := gin.New()
	router.HTMLRender = renderer

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware("/static/", "/health", "/ready", "/version"))
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	headers := middleware.DefaultSecurityHeadersConfig()
	headers.EnableHSTS = cfg.Security.TLS.Enabled
	router.Use(middleware.SecurityHeadersMiddleware(headers))

	// Probes and assets are served before the session is loaded
	router.GET("/health", healthCheckHandler())
	router.GET("/ready", readinessHandler(deps.API))
	router.GET("/version", versionHandler())
	router.Group(static.Prefix, staticCacheHeaders()).StaticFS("/", static.FileSystem())

	base := &handler.Base{API: deps.API, Sessions: deps.Sessions}
	pageHandlers := pages.NewHandlers(base, samples, cfg.UI.SampleQueriesCount)
	cpHandlers := controlpanel.NewHandlers(base, cfg.UI.RepositoriesLimit)

	site := router.Group("/")
	site.Use(deps.Sessions.Middleware())
	if pageLimiter != nil {
		site.Use(middleware.RateLimitMiddleware(pageLimiter))
	}

	router.NoRoute(deps.Sessions.Middleware(), func(c *gin.Context) {
		base.RenderError(c, http.StatusNotFound, notFoundMessage)
	})

	// Public pages
	{
		site.GET("/", pageHandlers.Home())
		site.GET("/packages/search", pageHandlers.Search())
		site.GET("/packages/:kind/:repo/:name", pageHandlers.Package())
		site.GET("/packages/:kind/:repo/:name/:version", pageHandlers.Package())
		site.POST("/packages/star", middleware.RequireLogin(), pageHandlers.ToggleStar())
		site.POST("/packages/subscriptions", middleware.RequireLogin(), pageHandlers.ToggleSubscription())

		site.POST("/prefs/theme", pageHandlers.SetTheme())
		site.POST("/prefs/search-limit", pageHandlers.SetSearchLimit())
	}

	// Authentication
	{
		authForms := []gin.HandlerFunc{}
		if authLimiter != nil {
			authForms = append(authForms, middleware.RateLimitMiddleware(authLimiter))
		}
		site.GET("/login", pageHandlers.LoginPage())
		site.POST("/login", append(authForms, pageHandlers.Login())...)
		site.POST("/logout", pageHandlers.Logout())
		site.GET("/signup", pageHandlers.SignupPage())
		site.POST("/signup", append(authForms, pageHandlers.Signup())...)
		site.GET("/verify-email", pageHandlers.VerifyEmail())
	}

	// Control panel
	cp := site.Group("/control-panel")
	cp.Use(middleware.RequireLogin())
	cp.Use(middleware.AuditMiddleware())
	{
		cp.GET("", func(c *gin.Context) {
			c.Redirect(http.StatusSeeOther, "/control-panel/repositories")
		})

		cp.GET("/repositories", cpHandlers.Repositories())
		cp.POST("/repositories", cpHandlers.AddRepository())
		cp.POST("/repositories/claim", cpHandlers.ClaimRepository())
		cp.POST("/repositories/:name/delete", cpHandlers.DeleteRepository())
		cp.POST("/repositories/:name/transfer", cpHandlers.TransferRepository())

		cp.GET("/organizations", cpHandlers.Organizations())
		cp.POST("/organizations", cpHandlers.AddOrganization())
		cp.POST("/organizations/:name/accept", cpHandlers.AcceptInvitation())
		cp.POST("/context", cpHandlers.SwitchContext())

		cp.GET("/settings/profile", cpHandlers.Profile())
		cp.POST("/settings/profile", cpHandlers.UpdateProfile())
		cp.POST("/settings/password", cpHandlers.UpdatePassword())

		cp.GET("/webhooks", cpHandlers.Webhooks())
		cp.POST("/webhooks", cpHandlers.AddWebhook())
		cp.POST("/webhooks/:id/delete", cpHandlers.DeleteWebhook())

		cp.GET("/api-keys", cpHandlers.APIKeys())
		cp.POST("/api-keys", cpHandlers.AddAPIKey())
		cp.POST("/api-keys/:id/delete", cpHandlers.DeleteAPIKey())

		cp.GET("/subscriptions", cpHandlers.Subscriptions())
		cp.POST("/subscriptions/delete", cpHandlers.DeleteSubscription())
	}

	// Organization scoped pages
	orgCP := cp.Group("")
	orgCP.Use(middleware.RequireOrgContext("/control-panel/organizations"))
	{
		orgCP.GET("/members", cpHandlers.Members())
		orgCP.POST("/members", cpHandlers.AddMember())
		orgCP.POST("/members/:alias/delete", cpHandlers.RemoveMember())

		orgCP.GET("/settings/org", cpHandlers.OrgSettings())
		orgCP.POST("/settings/org", cpHandlers.UpdateOrganization())
		orgCP.POST("/settings/org/delete", cpHandlers.DeleteOrganization())
	}

	return router, bg, nil
}

// newRateLimiters builds the page and sign in limiters. Both are nil when
// rate limiting is disabled. In-memory limiters are registered on bg so their
// cleanup goroutines stop on shutdown.
func newRateLimiters(cfg *config.Config, rdb redis.UniversalClient, bg *BackgroundServices) (pageLimiter, authLimiter middleware.Limiter, err error) {
	rl := cfg.Security.RateLimiting
	if !rl.Enabled {
		return nil, nil, nil
	}

	pageCfg := middleware.DefaultRateLimitConfig()
	if rl.RequestsPerMinute > 0 {
		pageCfg.RequestsPerMinute = rl.RequestsPerMinute
	}
	if rl.Burst > 0 {
		pageCfg.BurstSize = rl.Burst
	}
	authCfg := middleware.AuthRateLimitConfig()

	if rl.Backend == "redis" {
		if rdb == nil {
			return nil, nil, fmt.Errorf("rate limiting backend redis requires a redis client")
		}
		prefix := cfg.Session.Redis.KeyPrefix + "ratelimit:"
		return middleware.NewRedisRateLimiter(rdb, pageCfg, prefix+"pages:"),
			middleware.NewRedisRateLimiter(rdb, authCfg, prefix+"auth:"), nil
	}

	pages := middleware.NewRateLimiter(pageCfg)
	auth := middleware.NewRateLimiter(authCfg)
	bg.rateLimiters = append(bg.rateLimiters, pages, auth)
	return pages, auth, nil
}

// staticCacheHeaders lets browsers keep fingerprinted asset URLs forever.
func staticCacheHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("v") != "" {
			c.Header("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			c.Header("Cache-Control", "public, max-age=3600")
		}
		c.Next()
	}
}

// healthCheckHandler returns the liveness of the process. It does not call
// the hub API so a slow upstream never restarts the front-end.
func healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// readinessHandler reports whether pages can be served, probing the hub API
// with the cheapest anonymous call.
func readinessHandler(api handler.HubAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if _, err := api.GetStats(ctx); err != nil {
			checks["hub_api"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "hub api not ready",
			})
			return
		}
		checks["hub_api"] = "healthy"

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler returns the build version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version": Version,
		})
	}
}

// LoggerMiddleware emits one structured record per request. The record goes
// through the global slog handler, which telemetry.SetupLogger configures for
// JSON or text output.
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.LogAttrs(
			c.Request.Context(),
			level,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", middleware.RequestID(c)),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.String("service", cfg.Telemetry.ServiceName),
		)
	}
}

// CORSMiddleware handles CORS
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
			}
			methods := "GET, POST, OPTIONS"
			if len(cfg.Security.CORS.AllowedMethods) > 0 {
				methods = strings.Join(cfg.Security.CORS.AllowedMethods, ", ")
			}
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
