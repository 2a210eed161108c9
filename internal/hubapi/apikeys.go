package hubapi

import (
	"context"
	"net/http"
	"net/url"
)

func apiKeyPath(id string) string {
	return "/api-keys/" + url.PathEscape(id)
}

// GetAPIKeys lists the current user's API keys.
func (c *Client) GetAPIKeys(ctx context.Context) ([]APIKey, error) {
	var keys []APIKey
	if _, err := c.get(ctx, "GetAPIKeys", "/api-keys", nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// GetAPIKey returns one API key.
func (c *Client) GetAPIKey(ctx context.Context, id string) (*APIKey, error) {
	var key APIKey
	if _, err := c.get(ctx, "GetAPIKey", apiKeyPath(id), nil, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// AddAPIKey creates a key. The returned secret cannot be retrieved again.
func (c *Client) AddAPIKey(ctx context.Context, name string) (*APIKeyCreated, error) {
	var created APIKeyCreated
	_, err := c.f.Do(ctx, Request{
		Op:     "AddAPIKey",
		Method: http.MethodPost,
		Path:   "/api-keys",
		Body:   APIKey{Name: name},
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAPIKey renames a key.
func (c *Client) UpdateAPIKey(ctx context.Context, id, name string) error {
	return c.send(ctx, "UpdateAPIKey", http.MethodPut, apiKeyPath(id), APIKey{Name: name})
}

// DeleteAPIKey revokes a key.
func (c *Client) DeleteAPIKey(ctx context.Context, id string) error {
	return c.send(ctx, "DeleteAPIKey", http.MethodDelete, apiKeyPath(id), nil)
}
