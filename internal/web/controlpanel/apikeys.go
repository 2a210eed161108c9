package controlpanel

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/packagehub/hub-web/internal/hubapi"
	"github.com/packagehub/hub-web/internal/session"
	"github.com/packagehub/hub-web/internal/view"
	"github.com/packagehub/hub-web/internal/web/handler"
)

const (
	apiKeysPath         = "/control-panel/api-keys"
	apiKeysErrorMessage = "An error occurred getting the API keys, please try again later."
)

// APIKeys lists the user's API keys.
// GET /control-panel/api-keys
func (h *Handlers) APIKeys() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.renderAPIKeys(c, http.StatusOK, view.APIKeysData{ShowAddForm: queryFlag(c, "add")})
	}
}

func (h *Handlers) renderAPIKeys(c *gin.Context, status int, data view.APIKeysData) {
	var guard handler.AuthGuard
	opts := handler.Options[[]hubapi.APIKey](&guard, "cp_api_keys", apiKeysErrorMessage)
	opts.IsEmpty = view.IsEmptySlice[hubapi.APIKey]
	data.APIKeys = view.Load(session.APIContext(c), h.API.GetAPIKeys, opts)
	if guard.Failed() {
		h.AuthFailed(c)
		return
	}
	h.Render(c, status, view.PageAPIKeys, "API keys", data)
}

// AddAPIKey creates an API key. The secret is only ever shown in this
// response, so the page is rendered directly instead of redirecting.
// POST /control-panel/api-keys
func (h *Handlers) AddAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			h.renderAPIKeys(c, http.StatusBadRequest, view.APIKeysData{
				ShowAddForm: true,
				Message:     "Please provide a name for the API key.",
			})
			return
		}

		var created *hubapi.APIKeyCreated
		handled, err := h.Mutate(c, func(ctx context.Context) error {
			var err error
			created, err = h.API.AddAPIKey(ctx, name)
			return err
		})
		if handled {
			return
		}
		if err != nil {
			h.renderAPIKeys(c, http.StatusOK, view.APIKeysData{
				ShowAddForm: true,
				Message:     handler.ErrorMessage(err, "An error occurred adding the API key, please try again later."),
			})
			return
		}
		c.Header("Cache-Control", "no-store")
		h.renderAPIKeys(c, http.StatusCreated, view.APIKeysData{Created: created})
	}
}

// DeleteAPIKey removes an API key.
// POST /control-panel/api-keys/:id/delete
func (h *Handlers) DeleteAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		handled, err := h.Mutate(c, func(ctx context.Context) error {
			return h.API.DeleteAPIKey(ctx, id)
		})
		if handled {
			return
		}
		if err != nil {
			h.renderAPIKeys(c, http.StatusOK, view.APIKeysData{
				Message: handler.ErrorMessage(err, "An error occurred deleting the API key, please try again later."),
			})
			return
		}
		h.RedirectWithNotice(c, apiKeysPath, "API key deleted.")
	}
}
