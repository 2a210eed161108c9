// Package handler holds what every page handler shares: the hub API surface
// they call, page rendering with the session context, the auth error
// escalation and flash notices.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/middleware"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/telemetry"
	"github.com/packagehub/hub-web/internal/view"
)

// HubAPI is the part of the hub API client used by the pages.
type HubAPI interface {
	GetCSRFToken(ctx context.Context) (string, error)

	GetStats(ctx context.Context) (*hubapi.Stats, error)
	GetPackagesUpdates(ctx context.Context) (*hubapi.PackagesUpdates, error)
	SearchPackages(ctx context.Context, q hubapi.SearchQuery) (*hubapi.SearchResults, error)
	GetPackage(ctx context.Context, ref hubapi.PackageRef) (*hubapi.PackageDetail, error)
	GetStars(ctx context.Context, packageID string) (*hubapi.PackageStars, error)
	ToggleStar(ctx context.Context, packageID string) error
	GetPackageSubscriptions(ctx context.Context, packageID string) ([]hubapi.Subscription, error)
	GetUserSubscriptions(ctx context.Context) ([]hubapi.Subscription, error)
	AddSubscription(ctx context.Context, packageID string, eventKind int) error
	DeleteSubscription(ctx context.Context, packageID string, eventKind int) error

	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, u hubapi.UserRegistration) error
	VerifyEmail(ctx context.Context, code string) error
	CheckAvailability(ctx context.Context, resourceKind, value string) (bool, error)
	GetUserProfile(ctx context.Context) (*hubapi.Profile, error)
	UpdateUserProfile(ctx context.Context, p hubapi.ProfileUpdate) error
	UpdatePassword(ctx context.Context, oldPassword, newPassword string) error

	SearchRepositories(ctx context.Context, q hubapi.RepositoriesQuery) (*hubapi.RepositoriesPage, error)
	AddRepository(ctx context.Context, r hubapi.Repository, org string) error
	DeleteRepository(ctx context.Context, name, org string) error
	TransferRepository(ctx context.Context, name, fromOrg, toOrg string) error
	ClaimRepositoryOwnership(ctx context.Context, name, org string) error

	GetUserOrganizations(ctx context.Context) ([]hubapi.Organization, error)
	GetOrganization(ctx context.Context, name string) (*hubapi.Organization, error)
	AddOrganization(ctx context.Context, org hubapi.Organization) error
	UpdateOrganization(ctx context.Context, org hubapi.Organization, currentName string) error
	DeleteOrganization(ctx context.Context, name string) error
	ConfirmOrganizationMembership(ctx context.Context, org string) error
	GetOrganizationMembers(ctx context.Context, org string) ([]hubapi.Member, error)
	AddOrganizationMember(ctx context.Context, org, alias string) error
	DeleteOrganizationMember(ctx context.Context, org, alias string) error

	GetWebhooks(ctx context.Context, org string) ([]hubapi.Webhook, error)
	AddWebhook(ctx context.Context, hook hubapi.Webhook, org string) error
	DeleteWebhook(ctx context.Context, id, org string) error
	TriggerWebhookTest(ctx context.Context, hook hubapi.Webhook) error

	GetAPIKeys(ctx context.Context) ([]hubapi.APIKey, error)
	AddAPIKey(ctx context.Context, name string) (*hubapi.APIKeyCreated, error)
	DeleteAPIKey(ctx context.Context, id string) error
}

var _ HubAPI = (*hubapi.Client)(nil)

// FlashCookie carries a one-shot notice across a post/redirect/get cycle.
const FlashCookie = "hubweb_flash"

// Base is embedded by the page handler groups.
type Base struct {
	API      HubAPI
	Sessions *session.Manager
}

// Render writes the named page inside the site layout.
func (b *Base) Render(c *gin.Context, status int, name, title string, data any) {
	sc := session.FromGin(c)
	c.HTML(status, name, view.Page{
		Title:       title,
		Path:        c.Request.URL.RequestURI(),
		User:        sc.User(),
		Theme:       sc.Prefs.Theme.Effective,
		SelectedOrg: sc.SelectedOrg(),
		Notice:      b.takeFlash(c),
		Data:        data,
	})
}

// RenderError renders the error page with the given status.
func (b *Base) RenderError(c *gin.Context, status int, message string) {
	b.Render(c, status, view.PageError, http.StatusText(status), view.ErrorData{
		Status:  status,
		Message: message,
	})
}

// AuthFailed is the escalation for an Unauthorized answer from the hub API:
// the local session is dropped and the user is sent to the login page,
// coming back to the current page afterwards.
func (b *Base) AuthFailed(c *gin.Context) {
	if err := b.Sessions.Logout(c); err != nil {
		slog.Warn("failed to clear session after auth error",
			"error", err, "request_id", middleware.RequestID(c))
	}
	telemetry.AuthRedirectsTotal.Inc()

	target := c.Request.URL.RequestURI()
	if c.Request.Method != http.MethodGet {
		target = returnPath(c)
	}
	c.Redirect(http.StatusSeeOther, middleware.LoginRedirect(target))
	c.Abort()
}

// MutationContext returns the API context for a state-changing call: the hub
// session plus a fresh CSRF token.
func (b *Base) MutationContext(c *gin.Context) (context.Context, error) {
	ctx := session.APIContext(c)
	token, err := b.API.GetCSRFToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting csrf token: %w", err)
	}
	return hubapi.WithCSRFToken(ctx, token), nil
}

// Mutate runs fn with a mutation context. When the hub API answers
// Unauthorized the request is escalated through AuthFailed and handled is
// true; any other error is returned for the caller to show.
func (b *Base) Mutate(c *gin.Context, fn func(ctx context.Context) error) (handled bool, err error) {
	ctx, err := b.MutationContext(c)
	if err == nil {
		err = fn(ctx)
	}
	if hubapi.IsUnauthorized(err) {
		b.AuthFailed(c)
		return true, err
	}
	if err != nil {
		slog.Warn("hub api mutation failed",
			"path", c.Request.URL.Path, "kind", hubapi.KindOf(err).String(),
			"error", err, "request_id", middleware.RequestID(c))
	}
	return false, err
}

// RedirectWithNotice redirects to target after a successful form post and
// shows notice on the next page.
func (b *Base) RedirectWithNotice(c *gin.Context, target, notice string) {
	if notice != "" {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(FlashCookie, notice, 60, "/", "", b.secureCookies(), true)
	}
	c.Redirect(http.StatusSeeOther, target)
}

// takeFlash returns the pending notice and clears it. gin escapes the cookie
// value on write and unescapes it on read.
func (b *Base) takeFlash(c *gin.Context) string {
	notice, err := c.Cookie(FlashCookie)
	if err != nil || notice == "" {
		return ""
	}
	c.SetCookie(FlashCookie, "", -1, "/", "", b.secureCookies(), true)
	return notice
}

func (b *Base) secureCookies() bool {
	return b.Sessions != nil && b.Sessions.SecureCookies()
}

// returnPath is where a form post should send the user back to: the local
// referring page when there is one, the posted path otherwise.
func returnPath(c *gin.Context) string {
	if ref, err := url.Parse(c.Request.Referer()); err == nil && ref.Path != "" {
		if ref.Host == "" || ref.Host == c.Request.Host {
			return middleware.SafeRedirect(ref.RequestURI(), c.Request.URL.Path)
		}
	}
	return c.Request.URL.Path
}

// AuthGuard collects Unauthorized failures of the loads of one page. Its
// OnAuthError is safe to share between concurrent loads.
type AuthGuard struct {
	failed atomic.Bool
}

// OnAuthError records an auth failure.
func (g *AuthGuard) OnAuthError(error) { g.failed.Store(true) }

// Failed reports whether any load failed with Unauthorized.
func (g *AuthGuard) Failed() bool { return g.failed.Load() }

// Options returns load options reporting auth failures to g.
func Options[T any](g *AuthGuard, name, errorMessage string) view.Options[T] {
	return view.Options[T]{
		Name:         name,
		ErrorMessage: errorMessage,
		OnAuthError:  g.OnAuthError,
	}
}

// ErrorMessage returns the text shown for a failed form action. Validation
// answers from the hub API carry their own message; anything else gets
// fallback.
func ErrorMessage(err error, fallback string) string {
	var apiErr *hubapi.APIError
	if !errors.As(err, &apiErr) {
		return fallback
	}
	switch {
	case apiErr.Kind == hubapi.KindForbidden:
		return "You do not have permissions to perform this action."
	case apiErr.Kind == hubapi.KindOther && apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Message != "":
		return apiErr.Message
	}
	return fallback
}
