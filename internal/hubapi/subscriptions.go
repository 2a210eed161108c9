package hubapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Event kinds a user can subscribe to.
const (
	EventNewPackageRelease = 0
	EventSecurityAlert     = 1
)

// GetPackageSubscriptions lists the user's subscriptions to one package.
func (c *Client) GetPackageSubscriptions(ctx context.Context, packageID string) ([]Subscription, error) {
	var subs []Subscription
	if _, err := c.get(ctx, "GetPackageSubscriptions", "/subscriptions/"+url.PathEscape(packageID), nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// GetUserSubscriptions lists every subscription of the user.
func (c *Client) GetUserSubscriptions(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	if _, err := c.get(ctx, "GetUserSubscriptions", "/subscriptions", nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// AddSubscription subscribes the user to an event kind of a package.
func (c *Client) AddSubscription(ctx context.Context, packageID string, eventKind int) error {
	return c.send(ctx, "AddSubscription", http.MethodPost, "/subscriptions", Subscription{
		PackageID: packageID,
		EventKind: eventKind,
	})
}

// DeleteSubscription removes a subscription.
func (c *Client) DeleteSubscription(ctx context.Context, packageID string, eventKind int) error {
	_, err := c.f.Do(ctx, Request{
		Op:     "DeleteSubscription",
		Method: http.MethodDelete,
		Path:   "/subscriptions",
		Query: url.Values{
			"package_id": {packageID},
			"event_kind": {strconv.Itoa(eventKind)},
		},
	}, nil)
	return err
}
