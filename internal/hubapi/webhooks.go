package hubapi

import (
	"context"
	"net/http"
	"net/url"
)

func webhooksPath(org string) string {
	if org == "" {
		return "/webhooks/user"
	}
	return "/webhooks/org/" + url.PathEscape(org)
}

// GetWebhooks lists the webhooks of the user or org.
func (c *Client) GetWebhooks(ctx context.Context, org string) ([]Webhook, error) {
	var hooks []Webhook
	if _, err := c.get(ctx, "GetWebhooks", webhooksPath(org), nil, &hooks); err != nil {
		return nil, err
	}
	return hooks, nil
}

// GetWebhook returns one webhook of the user or org.
func (c *Client) GetWebhook(ctx context.Context, id, org string) (*Webhook, error) {
	var hook Webhook
	if _, err := c.get(ctx, "GetWebhook", webhooksPath(org)+"/"+url.PathEscape(id), nil, &hook); err != nil {
		return nil, err
	}
	return &hook, nil
}

// AddWebhook creates a webhook for the user or org.
func (c *Client) AddWebhook(ctx context.Context, hook Webhook, org string) error {
	return c.send(ctx, "AddWebhook", http.MethodPost, webhooksPath(org), hook)
}

// UpdateWebhook edits a webhook of the user or org.
func (c *Client) UpdateWebhook(ctx context.Context, hook Webhook, org string) error {
	return c.send(ctx, "UpdateWebhook", http.MethodPut, webhooksPath(org)+"/"+url.PathEscape(hook.WebhookID), hook)
}

// DeleteWebhook removes a webhook of the user or org.
func (c *Client) DeleteWebhook(ctx context.Context, id, org string) error {
	return c.send(ctx, "DeleteWebhook", http.MethodDelete, webhooksPath(org)+"/"+url.PathEscape(id), nil)
}

// TriggerWebhookTest asks the API to deliver a test notification to hook's URL.
func (c *Client) TriggerWebhookTest(ctx context.Context, hook Webhook) error {
	return c.send(ctx, "TriggerWebhookTest", http.MethodPost, "/webhooks/test", hook)
}
