package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/safego"
)

// contextKey is the gin context key holding the request's *Context.
const contextKey = "hubweb.session"

// prefsMaxAge is how long the preferences cookie lives in the browser.
const prefsMaxAge = 365 * 24 * time.Hour

// Context is the ambient user context of one request.
type Context struct {
	// Session is nil for anonymous visitors.
	Session *Session
	Prefs   Prefs
}

// IsLoggedIn reports whether the request carries a valid session.
func (c *Context) IsLoggedIn() bool {
	return c != nil && c.Session != nil
}

// User returns the cached profile of the logged-in user, or nil.
func (c *Context) User() *hubapi.Profile {
	if !c.IsLoggedIn() {
		return nil
	}
	return c.Session.User
}

// SelectedOrg returns the organization the control panel is scoped to.
func (c *Context) SelectedOrg() string {
	if c == nil {
		return ""
	}
	return c.Prefs.ControlPanel.SelectedOrg
}

// ManagerConfig configures cookie handling.
type ManagerConfig struct {
	CookieName         string
	PrefsCookie        string
	TTL                time.Duration
	Secure             bool
	DefaultSearchLimit int
}

// Manager loads and persists the session context of browser requests.
type Manager struct {
	store    Store
	codec    *PrefsCodec
	cfg      ManagerConfig
	defaults Prefs
}

// NewManager creates a manager backed by store.
func NewManager(store Store, codec *PrefsCodec, cfg ManagerConfig) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Manager{
		store:    store,
		codec:    codec,
		cfg:      cfg,
		defaults: DefaultPrefs(cfg.DefaultSearchLimit),
	}
}

// Middleware attaches the session context to every request. Unknown or
// expired session cookies are cleared; a tampered preferences cookie falls
// back to the defaults.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sc := &Context{Prefs: m.loadPrefs(c)}

		if id, err := c.Cookie(m.cfg.CookieName); err == nil && id != "" {
			sess, err := m.store.Get(c.Request.Context(), id)
			switch {
			case err == nil:
				sc.Session = sess
			case errors.Is(err, ErrNotFound), errors.Is(err, ErrExpired):
				m.clearCookie(c, m.cfg.CookieName)
			default:
				slog.Warn("failed to load session", "error", err, "request_id", c.GetString("request_id"))
			}
		}

		c.Set(contextKey, sc)
		c.Next()
	}
}

func (m *Manager) loadPrefs(c *gin.Context) Prefs {
	raw, err := c.Cookie(m.cfg.PrefsCookie)
	if err != nil || raw == "" {
		return m.defaults
	}
	prefs, err := m.codec.Decode(raw)
	if err != nil {
		slog.Debug("ignoring invalid preferences cookie", "error", err)
		return m.defaults
	}
	prefs.Normalize(m.defaults)
	return prefs
}

// FromGin returns the session context of the request. Requests that did not
// pass through the middleware get an anonymous context with default prefs.
func FromGin(c *gin.Context) *Context {
	if v, ok := c.Get(contextKey); ok {
		if sc, ok := v.(*Context); ok {
			return sc
		}
	}
	sc := &Context{Prefs: DefaultPrefs(0)}
	c.Set(contextKey, sc)
	return sc
}

// APIContext returns the request context carrying the hub session, ready to
// be passed to hubapi.Client methods.
func APIContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if sc := FromGin(c); sc.IsLoggedIn() {
		ctx = hubapi.WithSession(ctx, sc.Session.HubSessionID)
	}
	return ctx
}

// Login starts a session for the hub session id returned by the API.
func (m *Manager) Login(c *gin.Context, hubSessionID string, user *hubapi.Profile) error {
	sess, err := New(hubSessionID, user, m.cfg.TTL)
	if err != nil {
		return err
	}
	if err := m.store.Set(c.Request.Context(), sess); err != nil {
		return err
	}
	m.setCookie(c, m.cfg.CookieName, sess.ID, m.cfg.TTL, true)
	FromGin(c).Session = sess
	return nil
}

// Logout ends the current session, if any. The organization context is reset
// so the next user of the browser starts on their own resources.
func (m *Manager) Logout(c *gin.Context) error {
	sc := FromGin(c)
	var err error
	if sc.Session != nil {
		err = m.store.Delete(c.Request.Context(), sc.Session.ID)
		sc.Session = nil
	}
	m.clearCookie(c, m.cfg.CookieName)
	if sc.Prefs.ControlPanel.SelectedOrg != "" {
		sc.Prefs.ControlPanel.SelectedOrg = ""
		if perr := m.SavePrefs(c, sc.Prefs); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

// UpdateUser replaces the cached profile of the current session.
func (m *Manager) UpdateUser(c *gin.Context, user *hubapi.Profile) error {
	sc := FromGin(c)
	if sc.Session == nil {
		return ErrNotFound
	}
	updated := *sc.Session
	updated.User = user
	if err := m.store.Set(c.Request.Context(), &updated); err != nil {
		return err
	}
	sc.Session = &updated
	return nil
}

// SavePrefs persists prefs in the preferences cookie and in the request context.
func (m *Manager) SavePrefs(c *gin.Context, prefs Prefs) error {
	prefs.Normalize(m.defaults)
	value, err := m.codec.Encode(prefs)
	if err != nil {
		return err
	}
	m.setCookie(c, m.cfg.PrefsCookie, value, prefsMaxAge, false)
	FromGin(c).Prefs = prefs
	return nil
}

// StartCleanup sweeps expired sessions every interval until ctx is done.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	safego.Every(ctx, "session-cleanup", interval, func(ctx context.Context) {
		if err := m.store.Cleanup(ctx); err != nil {
			slog.Warn("session cleanup failed", "error", err)
		}
	})
}

// SecureCookies reports whether cookies are restricted to HTTPS.
func (m *Manager) SecureCookies() bool {
	return m.cfg.Secure
}

func (m *Manager) setCookie(c *gin.Context, name, value string, maxAge time.Duration, httpOnly bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(maxAge.Seconds()), "/", "", m.cfg.Secure, httpOnly)
}

func (m *Manager) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", m.cfg.Secure, true)
}
