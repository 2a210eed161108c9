package controlpanel

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/middleware"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/validation"
	"github.com/packagehub/hub-web/internal/view"
	"github.com/packagehub/hub-web/internal/web/handler"
)

const (
	orgSettingsPath         = "/control-panel/settings/org"
	profilePath             = "/control-panel/settings/profile"
	orgSettingsErrorMessage = "An error occurred getting the organization details, please try again later."
	profileErrorMessage     = "An error occurred getting your profile, please try again later."
)

// ---------------------------------------------------------------------------
// Organization settings
// ---------------------------------------------------------------------------

// OrgSettings shows the details of the selected organization.
// GET /control-panel/settings/org
func (h *Handlers) OrgSettings() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.renderOrgSettings(c, http.StatusOK, "")
	}
}

func (h *Handlers) renderOrgSettings(c *gin.Context, status int, message string) {
	_, org := owner(c)
	var guard handler.AuthGuard
	opts := handler.Options[*hubapi.Organization](&guard, "cp_org_settings", orgSettingsErrorMessage)
	opts.IsEmpty = view.IsNil[hubapi.Organization]
	data := view.OrgSettingsData{Message: message}
	data.Organization = view.Load(session.APIContext(c), func(ctx context.Context) (*hubapi.Organization, error) {
		return h.API.GetOrganization(ctx, org)
	}, opts)
	if guard.Failed() {
		h.AuthFailed(c)
		return
	}
	if data.Organization.Empty() && status == http.StatusOK {
		status = http.StatusNotFound
	}
	h.Render(c, status, view.PageOrgSettings, "Organization settings", data)
}

// UpdateOrganization saves the organization details. Renaming the
// organization moves the control panel context along with it.
// POST /control-panel/settings/org
func (h *Handlers) UpdateOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, current := owner(c)
		org := organizationForm(c)
		if validation.ValidateName(org.Name) != nil {
			h.renderOrgSettings(c, http.StatusBadRequest, orgNameMessage)
			return
		}

		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.UpdateOrganization(ctx, org, current)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderOrgSettings(c, http.StatusOK, handler.ErrorMessage(err, "An error occurred updating the organization, please try again later."))
			return
		}

		if org.Name != current {
			prefs := session.FromGin(c).Prefs
			prefs.ControlPanel.SelectedOrg = org.Name
			if err := h.Sessions.SavePrefs(c, prefs); err != nil {
				slog.Warn("failed to save renamed organization context",
					"error", err, "request_id", middleware.RequestID(c))
			}
		}
		h.RedirectWithNotice(c, orgSettingsPath, "Organization updated.")
	}
}

// DeleteOrganization deletes the selected organization.
// POST /control-panel/settings/org/delete
func (h *Handlers) DeleteOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, org := owner(c)
		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.DeleteOrganization(ctx, org)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderOrgSettings(c, http.StatusOK, handler.ErrorMessage(err, "An error occurred deleting the organization, please try again later."))
			return
		}
		if err := h.clearOrgContext(c); err != nil {
			slog.Warn("failed to clear organization context",
				"error", err, "request_id", middleware.RequestID(c))
		}
		h.RedirectWithNotice(c, organizationsPath, "Organization "+org+" deleted.")
	}
}

// ---------------------------------------------------------------------------
// User profile
// ---------------------------------------------------------------------------

// Profile shows the user's profile and password forms.
// GET /control-panel/settings/profile
func (h *Handlers) Profile() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.renderProfile(c, http.StatusOK, "")
	}
}

func (h *Handlers) renderProfile(c *gin.Context, status int, message string) {
	var guard handler.AuthGuard
	opts := handler.Options[*hubapi.Profile](&guard, "cp_profile", profileErrorMessage)
	opts.IsEmpty = view.IsNil[hubapi.Profile]
	data := view.ProfileData{Message: message}
	data.Profile = view.Load(session.APIContext(c), h.API.GetUserProfile, opts)
	if guard.Failed() {
		h.AuthFailed(c)
		return
	}
	h.Render(c, status, view.PageProfile, "Profile", data)
}

// UpdateProfile saves the user's profile and refreshes the copy cached in
// the session.
// POST /control-panel/settings/profile
func (h *Handlers) UpdateProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		update := hubapi.ProfileUpdate{
			Alias:     strings.TrimSpace(c.PostForm("alias")),
			FirstName: strings.TrimSpace(c.PostForm("first_name")),
			LastName:  strings.TrimSpace(c.PostForm("last_name")),
		}
		if update.Alias == "" {
			h.renderProfile(c, http.StatusBadRequest, "Please provide a username.")
			return
		}
		if u := session.FromGin(c).User(); u != nil {
			update.ProfileImageID = u.ProfileImageID
		}

		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.UpdateUserProfile(ctx, update)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderProfile(c, http.StatusOK, handler.ErrorMessage(err, "An error occurred updating your profile, please try again later."))
			return
		}

		profile, err := h.API.GetUserProfile(session.APIContext(c))
		if err == nil {
			err = h.Sessions.UpdateUser(c, profile)
		}
		if err != nil {
			slog.Warn("failed to refresh cached profile",
				"error", err, "request_id", middleware.RequestID(c))
		}
		h.RedirectWithNotice(c, profilePath, "Profile updated.")
	}
}

// UpdatePassword changes the user's password.
// POST /control-panel/settings/password
func (h *Handlers) UpdatePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		oldPassword := c.PostForm("old_password")
		newPassword := c.PostForm("new_password")
		if oldPassword == "" || newPassword == "" {
			h.renderProfile(c, http.StatusBadRequest, "Please provide the old and the new password.")
			return
		}

		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.UpdatePassword(ctx, oldPassword, newPassword)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderProfile(c, http.StatusOK, handler.ErrorMessage(err, "An error occurred updating your password, please try again later."))
			return
		}
		h.RedirectWithNotice(c, profilePath, "Password updated.")
	}
}
