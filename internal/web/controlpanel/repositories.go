package controlpanel

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/validation"
	"github.com/packagehub/hub-web/internal/view"
	"github.com/packagehub/hub-web/internal/web/handler"
)

const (
	repositoriesPath         = "/control-panel/repositories"
	repositoriesErrorMessage = "An error occurred getting the repositories, please try again later."
)

// Repositories lists the repositories of the user or selected organization.
// ?add=1 and ?claim=1 open the add and claim ownership forms. ?repo=<name>
// links to a repository; when it is not owned by the selected organization
// the control panel switches back to the user's own context.
// GET /control-panel/repositories
func (h *Handlers) Repositories() gin.HandlerFunc {
	return func(c *gin.Context) {
		data := view.RepositoriesData{
			Page:          queryPage(c),
			ShowAddForm:   queryFlag(c, "add"),
			ShowClaimForm: queryFlag(c, "claim"),
		}
		if !h.loadRepositories(c, &data) {
			return
		}

		if name := c.Query("repo"); name != "" && session.FromGin(c).SelectedOrg() != "" && !hasRepository(data.Repositories, name) {
			prefs := session.FromGin(c).Prefs
			prefs.ControlPanel.SelectedOrg = ""
			if err := h.Sessions.SavePrefs(c, prefs); err == nil {
				c.Redirect(http.StatusSeeOther, c.Request.URL.RequestURI())
				return
			}
		}
		h.Render(c, http.StatusOK, view.PageRepositories, "Repositories", data)
	}
}

// renderRepositories re-renders the list after a failed form action.
func (h *Handlers) renderRepositories(c *gin.Context, status int, data view.RepositoriesData) {
	if data.Page == 0 {
		data.Page = 1
	}
	if !h.loadRepositories(c, &data) {
		return
	}
	h.Render(c, status, view.PageRepositories, "Repositories", data)
}

// loadRepositories fills data with the requested page. A page past the end
// of the list falls back to the first one. It returns false when the request
// was escalated to the login page.
func (h *Handlers) loadRepositories(c *gin.Context, data *view.RepositoriesData) bool {
	alias, org := owner(c)
	query := hubapi.RepositoriesQuery{Limit: h.reposLimit}
	if org != "" {
		query.Org = org
	} else {
		query.User = alias
	}

	var guard handler.AuthGuard
	opts := handler.Options[*hubapi.RepositoriesPage](&guard, "cp_repositories", repositoriesErrorMessage)
	opts.IsEmpty = func(p *hubapi.RepositoriesPage) bool { return p == nil || len(p.Items) == 0 }

	data.Repositories = view.Load(session.APIContext(c), func(ctx context.Context) (*hubapi.RepositoriesPage, error) {
		query.Offset = view.Offset(data.Page, h.reposLimit)
		res, err := h.API.SearchRepositories(ctx, query)
		if err != nil || len(res.Items) > 0 || data.Page == 1 {
			return res, err
		}
		data.Page = 1
		query.Offset = 0
		return h.API.SearchRepositories(ctx, query)
	}, opts)
	if guard.Failed() {
		h.AuthFailed(c)
		return false
	}

	data.Kinds = hubapi.RepositoryKinds
	if data.Repositories.Ready() {
		data.Pagination = view.NewPagination(data.Page, h.reposLimit, data.Repositories.Data.Total, func(p int) string {
			return fmt.Sprintf("%s?page=%d", repositoriesPath, p)
		})
	}
	return true
}

func hasRepository(r view.Resource[*hubapi.RepositoriesPage], name string) bool {
	if !r.Ready() {
		return false
	}
	return slices.ContainsFunc(r.Data.Items, func(repo hubapi.Repository) bool { return repo.Name == name })
}

// AddRepository registers a new repository for the user or organization.
// POST /control-panel/repositories
func (h *Handlers) AddRepository() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, org := owner(c)
		repo := hubapi.Repository{
			Name:        strings.TrimSpace(c.PostForm("name")),
			DisplayName: strings.TrimSpace(c.PostForm("display_name")),
			URL:         strings.TrimSpace(c.PostForm("url")),
			Branch:      strings.TrimSpace(c.PostForm("branch")),
		}
		kind, ok := hubapi.ParseRepositoryKind(c.PostForm("kind"))
		if !ok || validation.ValidateName(repo.Name) != nil || repo.URL == "" {
			h.renderRepositories(c, http.StatusBadRequest, view.RepositoriesData{
				ShowAddForm: true,
				Message:     "Please provide a valid kind, name and url for the repository.",
			})
			return
		}
		repo.Kind = kind

		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.AddRepository(ctx, repo, org)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderRepositories(c, http.StatusOK, view.RepositoriesData{
				ShowAddForm: true,
				Message:     handler.ErrorMessage(err, "An error occurred adding the repository, please try again later."),
			})
			return
		}
		h.RedirectWithNotice(c, repositoriesPath, "Repository "+repo.Name+" added.")
	}
}

// DeleteRepository removes a repository.
// POST /control-panel/repositories/:name/delete
func (h *Handlers) DeleteRepository() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		_, org := owner(c)
		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.DeleteRepository(ctx, name, org)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderRepositories(c, http.StatusOK, view.RepositoriesData{
				Message: handler.ErrorMessage(err, "An error occurred deleting the repository, please try again later."),
			})
			return
		}
		h.RedirectWithNotice(c, repositoriesPath, "Repository "+name+" deleted.")
	}
}

// TransferRepository moves a repository to another organization, or to the
// user when to_org is empty.
// POST /control-panel/repositories/:name/transfer
func (h *Handlers) TransferRepository() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		_, org := owner(c)
		toOrg := strings.TrimSpace(c.PostForm("to_org"))
		if toOrg == org {
			h.renderRepositories(c, http.StatusBadRequest, view.RepositoriesData{
				Message: "The repository already belongs to this context.",
			})
			return
		}

		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.TransferRepository(ctx, name, org, toOrg)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderRepositories(c, http.StatusOK, view.RepositoriesData{
				Message: handler.ErrorMessage(err, "An error occurred transferring the repository, please try again later."),
			})
			return
		}
		h.RedirectWithNotice(c, repositoriesPath, "Repository "+name+" transferred.")
	}
}

// ClaimRepository requests the ownership of an existing repository for the
// user or organization.
// POST /control-panel/repositories/claim
func (h *Handlers) ClaimRepository() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.PostForm("name"))
		_, org := owner(c)
		if name == "" {
			h.renderRepositories(c, http.StatusBadRequest, view.RepositoriesData{
				ShowClaimForm: true,
				Message:       "Please provide the name of the repository to claim.",
			})
			return
		}

		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.ClaimRepositoryOwnership(ctx, name, org)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderRepositories(c, http.StatusOK, view.RepositoriesData{
				ShowClaimForm: true,
				Message:       handler.ErrorMessage(err, "An error occurred claiming the repository, please try again later."),
			})
			return
		}
		h.RedirectWithNotice(c, repositoriesPath, "Repository "+name+" claimed.")
	}
}
