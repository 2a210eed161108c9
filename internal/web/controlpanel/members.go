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
	"github.com/packagehub/hub-web/internal/view"
	"github.com/packagehub/hub-web/internal/web/handler"
)

const (
	membersPath         = "/control-panel/members"
	membersErrorMessage = "An error occurred getting the organization members, please try again later."
)

// Members lists the members of the selected organization.
// GET /control-panel/members
func (h *Handlers) Members() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.renderMembers(c, http.StatusOK, view.MembersData{ShowAddForm: queryFlag(c, "add")})
	}
}

func (h *Handlers) renderMembers(c *gin.Context, status int, data view.MembersData) {
	_, org := owner(c)
	var guard handler.AuthGuard
	opts := handler.Options[[]hubapi.Member](&guard, "cp_members", membersErrorMessage)
	opts.IsEmpty = view.IsEmptySlice[hubapi.Member]
	data.Members = view.Load(session.APIContext(c), func(ctx context.Context) ([]hubapi.Member, error) {
		return h.API.GetOrganizationMembers(ctx, org)
	}, opts)
	if guard.Failed() {
		h.AuthFailed(c)
		return
	}
	h.Render(c, status, view.PageMembers, "Members", data)
}

// AddMember invites a user to the selected organization.
// POST /control-panel/members
func (h *Handlers) AddMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, org := owner(c)
		alias := strings.TrimSpace(c.PostForm("alias"))
		if alias == "" {
			h.renderMembers(c, http.StatusBadRequest, view.MembersData{
				ShowAddForm: true,
				Message:     "Please provide the username of the member to invite.",
			})
			return
		}

		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.AddOrganizationMember(ctx, org, alias)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderMembers(c, http.StatusOK, view.MembersData{
				ShowAddForm: true,
				Message:     handler.ErrorMessage(err, "An error occurred inviting the member, please try again later."),
			})
			return
		}
		h.RedirectWithNotice(c, membersPath, "Invitation sent to "+alias+".")
	}
}

// RemoveMember removes a member from the selected organization. A user
// removing themself leaves the organization and goes back to their own
// context.
// POST /control-panel/members/:alias/delete
func (h *Handlers) RemoveMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		self, org := owner(c)
		alias := c.Param("alias")
		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.DeleteOrganizationMember(ctx, org, alias)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderMembers(c, http.StatusOK, view.MembersData{
				Message: handler.ErrorMessage(err, "An error occurred removing the member, please try again later."),
			})
			return
		}

		if alias != self {
			h.RedirectWithNotice(c, membersPath, "Member "+alias+" removed.")
			return
		}
		if err := h.clearOrgContext(c); err != nil {
			slog.Warn("failed to clear organization context",
				"error", err, "request_id", middleware.RequestID(c))
		}
		h.RedirectWithNotice(c, organizationsPath, "You have left "+org+".")
	}
}
