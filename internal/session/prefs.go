package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Theme values.
const (
	ThemeLight     = "light"
	ThemeDark      = "dark"
	ThemeAutomatic = "automatic"
)

// SearchLimits are the page sizes a user can pick for search results.
var SearchLimits = []int{20, 40, 60}

// Prefs are the per-browser user preferences.
type Prefs struct {
	ControlPanel  ControlPanelPrefs  `json:"controlPanel"`
	Search        SearchPrefs        `json:"search"`
	Theme         ThemePrefs         `json:"theme"`
	Notifications NotificationsPrefs `json:"notifications"`
}

// ControlPanelPrefs holds the control panel context. An empty SelectedOrg
// means the user is acting on their own resources.
type ControlPanelPrefs struct {
	SelectedOrg string `json:"selectedOrg,omitempty"`
}

// SearchPrefs holds search page options.
type SearchPrefs struct {
	Limit int `json:"limit"`
}

// ThemePrefs holds the configured theme and the one actually applied.
type ThemePrefs struct {
	Configured string `json:"configured"`
	Effective  string `json:"effective"`
}

// NotificationsPrefs tracks the in-app notifications already shown.
type NotificationsPrefs struct {
	LastDisplayedTime int64    `json:"lastDisplayedTime,omitempty"`
	Enabled           bool     `json:"enabled"`
	Displayed         []string `json:"displayed,omitempty"`
}

// DefaultPrefs returns the preferences of a first-time visitor.
func DefaultPrefs(searchLimit int) Prefs {
	if !slices.Contains(SearchLimits, searchLimit) {
		searchLimit = 60
	}
	return Prefs{
		Search:        SearchPrefs{Limit: searchLimit},
		Theme:         ThemePrefs{Configured: ThemeLight, Effective: ThemeLight},
		Notifications: NotificationsPrefs{Enabled: true},
	}
}

// Normalize replaces out of range values with the given defaults.
func (p *Prefs) Normalize(defaults Prefs) {
	if !slices.Contains(SearchLimits, p.Search.Limit) {
		p.Search.Limit = defaults.Search.Limit
	}
	switch p.Theme.Configured {
	case ThemeLight, ThemeDark, ThemeAutomatic:
	default:
		p.Theme = defaults.Theme
	}
	if p.Theme.Effective != ThemeLight && p.Theme.Effective != ThemeDark {
		p.Theme.Effective = ThemeLight
	}
}

// SetTheme updates the configured theme. For ThemeAutomatic the effective
// theme follows the browser's color scheme preference.
func (p *Prefs) SetTheme(configured string, prefersDark bool) error {
	switch configured {
	case ThemeLight, ThemeDark:
		p.Theme = ThemePrefs{Configured: configured, Effective: configured}
	case ThemeAutomatic:
		effective := ThemeLight
		if prefersDark {
			effective = ThemeDark
		}
		p.Theme = ThemePrefs{Configured: configured, Effective: effective}
	default:
		return fmt.Errorf("unknown theme %q", configured)
	}
	return nil
}

// SetSearchLimit updates the search page size.
func (p *Prefs) SetSearchLimit(limit int) error {
	if !slices.Contains(SearchLimits, limit) {
		return fmt.Errorf("search limit must be one of %v", SearchLimits)
	}
	p.Search.Limit = limit
	return nil
}

// MarkNotificationDisplayed records that a notification was shown.
func (p *Prefs) MarkNotificationDisplayed(id string, at time.Time) {
	if !slices.Contains(p.Notifications.Displayed, id) {
		p.Notifications.Displayed = append(p.Notifications.Displayed, id)
	}
	p.Notifications.LastDisplayedTime = at.UnixMilli()
}

// prefsClaims is the JWT payload of the preferences cookie.
type prefsClaims struct {
	Prefs Prefs `json:"prefs"`
	jwt.RegisteredClaims
}

const prefsIssuer = "hub-web"

// PrefsCodec signs and verifies the preferences cookie value.
type PrefsCodec struct {
	secret []byte
}

// NewPrefsCodec returns a codec for secret. An empty secret is replaced by a
// random one, which means preferences do not survive a restart.
func NewPrefsCodec(secret string) *PrefsCodec {
	if secret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			secret = fmt.Sprintf("dev-fallback-%d", time.Now().UnixNano())
		} else {
			secret = hex.EncodeToString(b)
		}
		slog.Warn("session.prefs_secret not set, using a random secret; preferences will reset on restart")
	}
	return &PrefsCodec{secret: []byte(secret)}
}

// Encode returns the signed cookie value for p.
func (c *PrefsCodec) Encode(p Prefs) (string, error) {
	claims := &prefsClaims{
		Prefs: p,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   prefsIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies a cookie value and returns the preferences it carries.
func (c *PrefsCodec) Decode(value string) (Prefs, error) {
	token, err := jwt.ParseWithClaims(value, &prefsClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithIssuer(prefsIssuer))
	if err != nil {
		return Prefs{}, err
	}

	claims, ok := token.Claims.(*prefsClaims)
	if !ok || !token.Valid {
		return Prefs{}, errors.New("invalid preferences token")
	}
	return claims.Prefs, nil
}
