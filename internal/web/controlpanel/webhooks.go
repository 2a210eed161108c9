package controlpanel

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/validation"
	"github.com/packagehub/hub-web/internal/view"
	"github.com/packagehub/hub-web/internal/web/handler"
)

const (
	webhooksPath         = "/control-panel/webhooks"
	webhooksErrorMessage = "An error occurred getting the webhooks, please try again later."

	// eventNewRelease is the only event kind webhooks subscribe to from the form.
	eventNewRelease = 0
)

// Webhooks lists the webhooks of the user or selected organization.
// GET /control-panel/webhooks
func (h *Handlers) Webhooks() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.renderWebhooks(c, http.StatusOK, view.WebhooksData{ShowAddForm: queryFlag(c, "add")})
	}
}

func (h *Handlers) renderWebhooks(c *gin.Context, status int, data view.WebhooksData) {
	_, org := owner(c)
	var guard handler.AuthGuard
	opts := handler.Options[[]hubapi.Webhook](&guard, "cp_webhooks", webhooksErrorMessage)
	opts.IsEmpty = view.IsEmptySlice[hubapi.Webhook]
	data.Webhooks = view.Load(session.APIContext(c), func(ctx context.Context) ([]hubapi.Webhook, error) {
		return h.API.GetWebhooks(ctx, org)
	}, opts)
	if guard.Failed() {
		h.AuthFailed(c)
		return
	}
	h.Render(c, status, view.PageWebhooks, "Webhooks", data)
}

// AddWebhook creates a webhook, or with action=test sends a test
// notification to the url in the form without saving it.
// POST /control-panel/webhooks
func (h *Handlers) AddWebhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, org := owner(c)
		hook := webhookForm(c)
		if hook.Name == "" || validation.ValidateURL(hook.URL) != nil {
			h.renderWebhooks(c, http.StatusBadRequest, view.WebhooksData{
				ShowAddForm: true,
				Message:     "Please provide a name and a valid http(s) url for the webhook.",
			})
			return
		}

		isTest := c.PostForm("action") == "test"
		handled, err := h.Mutate(c, func(ctx context.Context) error {
			if isTest {
				return h.API.TriggerWebhookTest(ctx, hook)
			}
			return h.API.AddWebhook(ctx, hook, org)
		})
		if handled {
			return
		}

		switch {
		case err != nil && isTest:
			h.renderWebhooks(c, http.StatusOK, view.WebhooksData{
				ShowAddForm: true,
				Message:     handler.ErrorMessage(err, "An error occurred testing the webhook, please try again later."),
			})
		case err != nil:
			h.renderWebhooks(c, http.StatusOK, view.WebhooksData{
				ShowAddForm: true,
				Message:     handler.ErrorMessage(err, "An error occurred adding the webhook, please try again later."),
			})
		case isTest:
			h.RedirectWithNotice(c, webhooksPath+"?add=1", "A test notification has been sent to "+hook.URL+".")
		default:
			h.RedirectWithNotice(c, webhooksPath, "Webhook "+hook.Name+" added.")
		}
	}
}

// DeleteWebhook removes a webhook.
// POST /control-panel/webhooks/:id/delete
func (h *Handlers) DeleteWebhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, org := owner(c)
		id := c.Param("id")
		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.DeleteWebhook(ctx, id, org)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderWebhooks(c, http.StatusOK, view.WebhooksData{
				Message: handler.ErrorMessage(err, "An error occurred deleting the webhook, please try again later."),
			})
			return
		}
		h.RedirectWithNotice(c, webhooksPath, "Webhook deleted.")
	}
}

func webhookForm(c *gin.Context) hubapi.Webhook {
	active, _ := strconv.ParseBool(c.PostForm("active"))
	hook := hubapi.Webhook{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: strings.TrimSpace(c.PostForm("description")),
		URL:         strings.TrimSpace(c.PostForm("url")),
		Secret:      strings.TrimSpace(c.PostForm("secret")),
		Active:      active,
		EventKinds:  []int{eventNewRelease},
		Packages:    []hubapi.Package{},
	}
	for _, id := range strings.Split(c.PostForm("package_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			hook.Packages = append(hook.Packages, hubapi.Package{PackageID: id})
		}
	}
	return hook
}
