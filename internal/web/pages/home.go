package pages

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/view"
	"github.com/packagehub/hub-web/internal/web/handler"
)

// Home renders the landing page: hub stats, latest updates and sample queries.
// GET /
func (h *Handlers) Home() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := session.APIContext(c)
		var guard handler.AuthGuard
		data := view.HomeData{SampleQueries: h.samples.Sample(h.sampleCount)}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			data.Stats = view.Load(gctx, func(ctx context.Context) (*hubapi.Stats, error) {
				return h.API.GetStats(ctx)
			}, handler.Options[*hubapi.Stats](&guard, "home_stats", ""))
			return nil
		})
		g.Go(func() error {
			data.Updates = view.Load(gctx, func(ctx context.Context) (*hubapi.PackagesUpdates, error) {
				return h.API.GetPackagesUpdates(ctx)
			}, handler.Options[*hubapi.PackagesUpdates](&guard, "home_updates", ""))
			return nil
		})
		_ = g.Wait()

		if guard.Failed() {
			h.AuthFailed(c)
			return
		}
		h.Render(c, http.StatusOK, view.PageHome, "", data)
	}
}
