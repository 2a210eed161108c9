package pages

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/middleware"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/view"
	"github.com/packagehub/hub-web/internal/web/handler"
	"github.com/packagehub/hub-web/pkg/urlutil"
)

const (
	packageErrorMessage = "An error occurred getting the package details, please try again later."
	// relatedLimit is one more than shown so the package itself can be dropped.
	relatedLimit = 11
	relatedShown = 10
)

// Package renders the package detail page, optionally at a given version.
// GET /packages/:kind/:repo/:name
// GET /packages/:kind/:repo/:name/:version
func (h *Handlers) Package() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := session.APIContext(c)
		ref := hubapi.PackageRef{
			Kind:       c.Param("kind"),
			Repository: c.Param("repo"),
			Name:       c.Param("name"),
			Version:    c.Param("version"),
		}

		var guard handler.AuthGuard
		detailOpts := handler.Options[*hubapi.PackageDetail](&guard, "package", packageErrorMessage)
		detailOpts.IsEmpty = view.IsNil[hubapi.PackageDetail]

		var data view.PackageData
		data.Detail = view.Load(ctx, func(ctx context.Context) (*hubapi.PackageDetail, error) {
			return h.API.GetPackage(ctx, ref)
		}, detailOpts)
		if guard.Failed() {
			h.AuthFailed(c)
			return
		}
		if !data.Detail.Ready() {
			status := http.StatusOK
			if data.Detail.Empty() {
				status = http.StatusNotFound
			}
			h.Render(c, status, view.PagePackage, "Package", data)
			return
		}

		pkg := data.Detail.Data
		data.Versions = sortedVersions(pkg.AvailableVersions)
		data.Install = installCommand(pkg)
		data.PURL = urlutil.PackagePURL(pkg.Location(), pkg.Repository.URL)

		g, gctx := errgroup.WithContext(ctx)
		if session.FromGin(c).IsLoggedIn() {
			g.Go(func() error {
				data.Subscriptions = view.Load(gctx, func(ctx context.Context) ([]hubapi.Subscription, error) {
					return h.API.GetPackageSubscriptions(ctx, pkg.PackageID)
				}, view.Options[[]hubapi.Subscription]{Name: "package_subscriptions"})
				return nil
			})
		}
		g.Go(func() error {
			data.Stars = view.Load(gctx, func(ctx context.Context) (*hubapi.PackageStars, error) {
				return h.API.GetStars(ctx, pkg.PackageID)
			}, view.Options[*hubapi.PackageStars]{Name: "package_stars"})
			return nil
		})
		g.Go(func() error {
			data.Related = view.Load(gctx, func(ctx context.Context) ([]hubapi.Package, error) {
				return h.relatedPackages(ctx, pkg)
			}, view.Options[[]hubapi.Package]{
				Name:    "package_related",
				IsEmpty: view.IsEmptySlice[hubapi.Package],
			})
			return nil
		})
		_ = g.Wait()

		if data.Stars.Ready() && data.Stars.Data.StarredBy != nil {
			data.Starred = *data.Stars.Data.StarredBy
		}
		h.Render(c, http.StatusOK, view.PagePackage, pkg.Title(), data)
	}
}

// relatedPackages searches packages matching the name or any keyword of pkg,
// excluding pkg itself.
func (h *Handlers) relatedPackages(ctx context.Context, pkg *hubapi.PackageDetail) ([]hubapi.Package, error) {
	text := pkg.Name
	if len(pkg.Keywords) > 0 {
		text += " or " + strings.Join(pkg.Keywords, " or ")
	}
	res, err := h.API.SearchPackages(ctx, hubapi.SearchQuery{
		Limit:   relatedLimit,
		Offset:  0,
		Filters: urlutil.SearchFilters{TSQueryWeb: text},
	})
	if err != nil {
		return nil, err
	}
	related := make([]hubapi.Package, 0, relatedShown)
	for _, p := range res.Packages {
		if p.PackageID == pkg.PackageID {
			continue
		}
		related = append(related, p)
		if len(related) == relatedShown {
			break
		}
	}
	return related, nil
}

// sortedVersions orders the available versions newest first.
func sortedVersions(available []hubapi.AvailableVersion) []hubapi.AvailableVersion {
	if len(available) == 0 {
		return nil
	}
	byVersion := make(map[string]hubapi.AvailableVersion, len(available))
	raw := make([]string, 0, len(available))
	for _, v := range available {
		if _, dup := byVersion[v.Version]; dup {
			continue
		}
		byVersion[v.Version] = v
		raw = append(raw, v.Version)
	}
	out := make([]hubapi.AvailableVersion, 0, len(raw))
	for _, v := range urlutil.SortVersions(raw) {
		out = append(out, byVersion[v])
	}
	return out
}

// installCommand returns the generated install snippet for kinds that have
// one. Other kinds fall back to the install notes shipped with the package.
func installCommand(pkg *hubapi.PackageDetail) string {
	if pkg.Repository.Kind != hubapi.KindGatekeeper || pkg.Repository.URL == "" {
		return ""
	}
	cmd, err := urlutil.GatekeeperInstallCommand(pkg.Repository.URL, pkg.RelativePath, pkg.GatekeeperSamples())
	if err != nil {
		slog.Debug("skipping gatekeeper install command", "package", pkg.Name, "error", err)
		return ""
	}
	return cmd
}

// ToggleStar stars or unstars a package and returns to the package page.
// POST /packages/star
func (h *Handlers) ToggleStar() gin.HandlerFunc {
	return func(c *gin.Context) {
		packageID := c.PostForm("package_id")
		back := middleware.SafeRedirect(c.PostForm("redirect"), "/")
		if packageID == "" {
			c.Redirect(http.StatusSeeOther, back)
			return
		}

		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.ToggleStar(ctx, packageID)
		})
		if handled {
			return
		}
		if err != nil {
			h.RedirectWithNotice(c, back, "An error occurred starring the package, please try again later.")
			return
		}
		c.Redirect(http.StatusSeeOther, back)
	}
}

// ToggleSubscription subscribes the user to an event kind of a package, or
// removes the subscription when subscribed=true is posted.
// POST /packages/subscriptions
func (h *Handlers) ToggleSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		packageID := c.PostForm("package_id")
		back := middleware.SafeRedirect(c.PostForm("redirect"), "/")
		eventKind, err := strconv.Atoi(c.PostForm("event_kind"))
		if packageID == "" || err != nil {
			c.Redirect(http.StatusSeeOther, back)
			return
		}
		subscribed, _ := strconv.ParseBool(c.PostForm("subscribed"))

		handled, err := h.Mutate(c, func(ctx context.Context) error {
			if subscribed {
				return h.API.DeleteSubscription(ctx, packageID, eventKind)
			}
			return h.API.AddSubscription(ctx, packageID, eventKind)
		})
		if handled {
			return
		}
		if err != nil {
			h.RedirectWithNotice(c, back, "An error occurred updating your subscription, please try again later.")
			return
		}
		c.Redirect(http.StatusSeeOther, back)
	}
}
