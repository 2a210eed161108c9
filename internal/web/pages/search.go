package pages

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/view"
	"github.com/packagehub/hub-web/internal/web/handler"
	"github.com/packagehub/hub-web/pkg/urlutil"
)

const searchErrorMessage = "An error occurred searching packages, please try again later."

// Search renders the package search page. The whole search state lives in
// the query string; the page size comes from the user's preferences.
// GET /packages/search
func (h *Handlers) Search() gin.HandlerFunc {
	return func(c *gin.Context) {
		filters := urlutil.ParseQueryString(c.Request.URL.Query())
		limit := session.FromGin(c).Prefs.Search.Limit
		page := filters.Page()

		var guard handler.AuthGuard
		opts := handler.Options[*hubapi.SearchResults](&guard, "search", searchErrorMessage)
		opts.IsEmpty = func(r *hubapi.SearchResults) bool { return r == nil || len(r.Packages) == 0 }

		data := view.SearchData{Filters: filters, Limit: limit}
		data.Results = view.Load(session.APIContext(c), func(ctx context.Context) (*hubapi.SearchResults, error) {
			return h.API.SearchPackages(ctx, hubapi.SearchQuery{
				Limit:   limit,
				Offset:  view.Offset(page, limit),
				Filters: filters,
			})
		}, opts)

		if guard.Failed() {
			h.AuthFailed(c)
			return
		}
		if data.Results.Ready() {
			data.Pagination = view.NewPagination(page, limit, data.Results.Data.TotalCount, func(p int) string {
				f := filters
				f.PageNumber = p
				return urlutil.SearchURL(f)
			})
		}

		title := "Search"
		if filters.TSQueryWeb != "" {
			title = filters.TSQueryWeb
		}
		h.Render(c, http.StatusOK, view.PageSearch, title, data)
	}
}
