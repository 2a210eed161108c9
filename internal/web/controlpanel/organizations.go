package controlpanel

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/validation"
	"github.com/packagehub/hub-web/internal/view"
	"github.com/packagehub/hub-web/internal/web/handler"
)

const (
	organizationsPath         = "/control-panel/organizations"
	organizationsErrorMessage = "An error occurred getting the organizations, please try again later."
	orgNameMessage            = "Please provide a valid name for the organization (lowercase letters, numbers and hyphens)."
)

// Organizations lists the organizations the user belongs to, including the
// pending invitations.
// GET /control-panel/organizations
func (h *Handlers) Organizations() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.renderOrganizations(c, http.StatusOK, view.OrganizationsData{ShowAddForm: queryFlag(c, "add")})
	}
}

func (h *Handlers) renderOrganizations(c *gin.Context, status int, data view.OrganizationsData) {
	var guard handler.AuthGuard
	opts := handler.Options[[]hubapi.Organization](&guard, "cp_organizations", organizationsErrorMessage)
	opts.IsEmpty = view.IsEmptySlice[hubapi.Organization]
	data.Organizations = view.Load(session.APIContext(c), h.API.GetUserOrganizations, opts)
	if guard.Failed() {
		h.AuthFailed(c)
		return
	}
	h.Render(c, status, view.PageOrganizations, "Organizations", data)
}

// AddOrganization creates an organization owned by the user.
// POST /control-panel/organizations
func (h *Handlers) AddOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		org := organizationForm(c)
		if validation.ValidateName(org.Name) != nil {
			h.renderOrganizations(c, http.StatusBadRequest, view.OrganizationsData{
				ShowAddForm: true,
				Message:     orgNameMessage,
			})
			return
		}

		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.AddOrganization(ctx, org)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderOrganizations(c, http.StatusOK, view.OrganizationsData{
				ShowAddForm: true,
				Message:     handler.ErrorMessage(err, "An error occurred adding the organization, please try again later."),
			})
			return
		}
		h.RedirectWithNotice(c, organizationsPath, "Organization "+org.Name+" added.")
	}
}

// AcceptInvitation confirms the user's membership of an organization.
// POST /control-panel/organizations/:name/accept
func (h *Handlers) AcceptInvitation() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.ConfirmOrganizationMembership(ctx, name)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderOrganizations(c, http.StatusOK, view.OrganizationsData{
				Message: handler.ErrorMessage(err, "An error occurred accepting the invitation, please try again later."),
			})
			return
		}
		h.RedirectWithNotice(c, organizationsPath, "You are now a member of "+name+".")
	}
}

// SwitchContext scopes the control panel to an organization, or to the
// user's own resources when org is empty.
// POST /control-panel/context
func (h *Handlers) SwitchContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		prefs := session.FromGin(c).Prefs
		prefs.ControlPanel.SelectedOrg = strings.TrimSpace(c.PostForm("org"))
		if err := h.Sessions.SavePrefs(c, prefs); err != nil {
			h.RenderError(c, http.StatusInternalServerError, view.DefaultErrorMessage)
			return
		}
		c.Redirect(http.StatusSeeOther, repositoriesPath)
	}
}

// clearOrgContext drops the selected organization, for when it no longer
// exists or the user left it.
func (h *Handlers) clearOrgContext(c *gin.Context) error {
	prefs := session.FromGin(c).Prefs
	prefs.ControlPanel.SelectedOrg = ""
	return h.Sessions.SavePrefs(c, prefs)
}

func organizationForm(c *gin.Context) hubapi.Organization {
	return hubapi.Organization{
		Name:        strings.TrimSpace(c.PostForm("name")),
		DisplayName: strings.TrimSpace(c.PostForm("display_name")),
		HomeURL:     strings.TrimSpace(c.PostForm("home_url")),
		Description: strings.TrimSpace(c.PostForm("description")),
	}
}
