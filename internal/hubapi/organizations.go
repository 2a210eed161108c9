package hubapi

import (
	"context"
	"net/http"
	"net/url"
)

func orgPath(name string) string {
	return "/orgs/" + url.PathEscape(name)
}

// GetUserOrganizations lists the organizations the user belongs to or was invited to.
func (c *Client) GetUserOrganizations(ctx context.Context) ([]Organization, error) {
	var orgs []Organization
	if _, err := c.get(ctx, "GetUserOrganizations", "/orgs/user", nil, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// GetOrganization returns one organization.
func (c *Client) GetOrganization(ctx context.Context, name string) (*Organization, error) {
	var org Organization
	if _, err := c.get(ctx, "GetOrganization", orgPath(name), nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// AddOrganization creates an organization owned by the current user.
func (c *Client) AddOrganization(ctx context.Context, org Organization) error {
	return c.send(ctx, "AddOrganization", http.MethodPost, "/orgs", org)
}

// UpdateOrganization edits the organization currently named currentName.
func (c *Client) UpdateOrganization(ctx context.Context, org Organization, currentName string) error {
	return c.send(ctx, "UpdateOrganization", http.MethodPut, orgPath(currentName), org)
}

// DeleteOrganization removes an organization.
func (c *Client) DeleteOrganization(ctx context.Context, name string) error {
	return c.send(ctx, "DeleteOrganization", http.MethodDelete, orgPath(name), nil)
}

// GetOrganizationMembers lists the members of an organization.
func (c *Client) GetOrganizationMembers(ctx context.Context, org string) ([]Member, error) {
	var members []Member
	if _, err := c.get(ctx, "GetOrganizationMembers", orgPath(org)+"/members", nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// AddOrganizationMember invites a user to an organization.
func (c *Client) AddOrganizationMember(ctx context.Context, org, alias string) error {
	return c.send(ctx, "AddOrganizationMember", http.MethodPost, orgPath(org)+"/member/"+url.PathEscape(alias), nil)
}

// DeleteOrganizationMember removes a member, or withdraws an invitation.
func (c *Client) DeleteOrganizationMember(ctx context.Context, org, alias string) error {
	return c.send(ctx, "DeleteOrganizationMember", http.MethodDelete, orgPath(org)+"/member/"+url.PathEscape(alias), nil)
}

// ConfirmOrganizationMembership accepts an invitation to an organization.
func (c *Client) ConfirmOrganizationMembership(ctx context.Context, org string) error {
	return c.send(ctx, "ConfirmOrganizationMembership", http.MethodPut, orgPath(org)+"/accept-invitation", nil)
}
