package controlpanel

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/view"
	"github.com/packagehub/hub-web/internal/web/handler"
)

const (
	subscriptionsPath         = "/control-panel/subscriptions"
	subscriptionsErrorMessage = "An error occurred getting your subscriptions, please try again later."
)

// Subscriptions lists the packages the user gets notifications about.
// Subscriptions are personal, so the selected organization does not apply.
// GET /control-panel/subscriptions
func (h *Handlers) Subscriptions() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.renderSubscriptions(c, http.StatusOK, view.SubscriptionsData{})
	}
}

func (h *Handlers) renderSubscriptions(c *gin.Context, status int, data view.SubscriptionsData) {
	var guard handler.AuthGuard
	opts := handler.Options[[]hubapi.Subscription](&guard, "cp_subscriptions", subscriptionsErrorMessage)
	opts.IsEmpty = view.IsEmptySlice[hubapi.Subscription]
	data.Subscriptions = view.Load(session.APIContext(c), h.API.GetUserSubscriptions, opts)
	if guard.Failed() {
		h.AuthFailed(c)
		return
	}
	h.Render(c, status, view.PageSubscriptions, "Subscriptions", data)
}

// DeleteSubscription stops the notifications of one event kind of a package.
// POST /control-panel/subscriptions/delete
func (h *Handlers) DeleteSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		packageID := c.PostForm("package_id")
		eventKind, err := strconv.Atoi(c.PostForm("event_kind"))
		if packageID == "" || err != nil {
			h.renderSubscriptions(c, http.StatusBadRequest, view.SubscriptionsData{
				Message: "Please select the subscription to remove.",
			})
			return
		}

		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.DeleteSubscription(ctx, packageID, eventKind)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderSubscriptions(c, http.StatusOK, view.SubscriptionsData{
				Message: handler.ErrorMessage(err, "An error occurred deleting the subscription, please try again later."),
			})
			return
		}
		h.RedirectWithNotice(c, subscriptionsPath, "Subscription removed.")
	}
}
