// Package hubapi is the typed client for the hub REST API. Every method maps
// one domain operation onto a single request made through the Fetcher; the
// client keeps no state between calls.
package hubapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Client exposes the hub API operations used by the web pages.
type Client struct {
	f *Fetcher
}

// NewClient returns a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	return &Client{f: NewFetcher(baseURL, opts...)}
}

// Fetcher returns the underlying fetcher.
func (c *Client) Fetcher() *Fetcher {
	return c.f
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) (*Response, error) {
	return c.f.Do(ctx, Request{Op: op, Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) send(ctx context.Context, op, method, path string, body any) error {
	_, err := c.f.Do(ctx, Request{Op: op, Method: method, Path: path, Body: body}, nil)
	return err
}

// scopeQuery adds the org parameter when an organization is selected.
func scopeQuery(org string) url.Values {
	if org == "" {
		return nil
	}
	return url.Values{"org": {org}}
}

// paginationTotal reads the Pagination-Total-Count header, defaulting to n.
func paginationTotal(resp *Response, n int) int {
	if resp == nil {
		return n
	}
	total, err := strconv.Atoi(resp.Header.Get("Pagination-Total-Count"))
	if err != nil {
		return n
	}
	return total
}
