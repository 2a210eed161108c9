package hubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// GetCSRFToken returns a token to send with mutating requests. The API
// returns it in the X-CSRF-Token response header.
func (c *Client) GetCSRFToken(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, "GetCSRFToken", "/csrf-token", nil, nil)
	if err != nil {
		return "", err
	}
	token := resp.Header.Get("X-CSRF-Token")
	if token == "" {
		return "", &APIError{Kind: KindOther, Status: resp.Status, Message: "csrf token missing from response"}
	}
	return token, nil
}

// Register signs up a new user. The API sends the verification email.
func (c *Client) Register(ctx context.Context, u UserRegistration) error {
	return c.send(ctx, "Register", http.MethodPost, "/users", u)
}

// VerifyEmail confirms a user email with the code from the verification link.
func (c *Client) VerifyEmail(ctx context.Context, code string) error {
	return c.send(ctx, "VerifyEmail", http.MethodPost, "/users/verify-email", map[string]string{"code": code})
}

// Login checks the credentials and returns the hub session id set by the API.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.f.Do(ctx, Request{
		Op:     "Login",
		Method: http.MethodPost,
		Path:   "/users/login",
		Body:   map[string]string{"email": email, "password": password},
	}, nil)
	if err != nil {
		return "", err
	}
	sid, err := sessionFromHeader(resp.Header)
	if err != nil {
		return "", &APIError{Kind: KindOther, Status: resp.Status, Message: err.Error(), Err: err}
	}
	return sid, nil
}

func sessionFromHeader(h http.Header) (string, error) {
	r := http.Response{Header: h}
	for _, ck := range r.Cookies() {
		if ck.Name == SessionCookieName && ck.Value != "" {
			return ck.Value, nil
		}
	}
	return "", errors.New("session cookie missing from login response")
}

// Logout ends the hub session carried by ctx.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.get(ctx, "Logout", "/users/logout", nil, nil)
	return err
}

// GetUserProfile returns the profile of the user owning the session.
func (c *Client) GetUserProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if _, err := c.get(ctx, "GetUserProfile", "/users/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateUserProfile edits the current user's profile.
func (c *Client) UpdateUserProfile(ctx context.Context, p ProfileUpdate) error {
	return c.send(ctx, "UpdateUserProfile", http.MethodPut, "/users/profile", p)
}

// UpdatePassword changes the current user's password.
func (c *Client) UpdatePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.send(ctx, "UpdatePassword", http.MethodPut, "/users/password", map[string]string{
		"old": oldPassword,
		"new": newPassword,
	})
}

// Resource kinds accepted by CheckAvailability.
const (
	AvailabilityRepositoryName   = "repositoryName"
	AvailabilityRepositoryURL    = "repositoryURL"
	AvailabilityOrganizationName = "organizationName"
	AvailabilityUserAlias        = "userAlias"
)

// CheckAvailability reports whether value is still free for the given
// resource kind. The API answers 404 when nothing uses the value.
func (c *Client) CheckAvailability(ctx context.Context, resourceKind, value string) (bool, error) {
	_, err := c.f.Do(ctx, Request{
		Op:     "CheckAvailability",
		Method: http.MethodHead,
		Path:   "/check-availability/" + url.PathEscape(resourceKind),
		Query:  url.Values{"v": {value}},
	}, nil)
	switch {
	case err == nil:
		return false, nil
	case IsNotFound(err):
		return true, nil
	default:
		return false, fmt.Errorf("checking %s availability: %w", resourceKind, err)
	}
}
