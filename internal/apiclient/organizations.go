package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func orgPath(id string, rest ...string) string {
	p := "/api/organizations/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// ListOrganizations returns organizations visible to the caller.
func (c *Client) ListOrganizations(ctx context.Context) ([]Organization, error) {
	return getList[Organization](ctx, c, "fetch organizations", "/api/organizations", nil, "organizations")
}

// GetOrganization returns an organization by ID.
func (c *Client) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	var org Organization
	if err := c.getObject(ctx, "fetch organization", orgPath(id), &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// CreateOrganization creates an organization owned by the caller.
func (c *Client) CreateOrganization(ctx context.Context, in OrganizationInput) (*Organization, error) {
	var org Organization
	if err := c.send(ctx, "create organization", http.MethodPost, "/api/organizations", in, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateOrganization updates an organization.
func (c *Client) UpdateOrganization(ctx context.Context, id string, in OrganizationInput) (*Organization, error) {
	var org Organization
	if err := c.send(ctx, "update organization", http.MethodPut, orgPath(id), in, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// DeleteOrganization deletes an organization.
func (c *Client) DeleteOrganization(ctx context.Context, id string) error {
	return c.send(ctx, "delete organization", http.MethodDelete, orgPath(id), nil, nil)
}

// ListMembers returns the members of an organization.
func (c *Client) ListMembers(ctx context.Context, orgID string) ([]Member, error) {
	return getList[Member](ctx, c, "fetch organization members", orgPath(orgID, "members"), nil, "members")
}

// AddMember adds an existing user to an organization.
func (c *Client) AddMember(ctx context.Context, orgID, userID string, role Role) error {
	if !role.Assignable() {
		return fmt.Errorf("role %q cannot be assigned", role)
	}
	return c.send(ctx, "add organization member", http.MethodPost, orgPath(orgID, "members"),
		memberRequest{UserID: userID, Role: role}, nil)
}

// UpdateMemberRole changes a member's role.
func (c *Client) UpdateMemberRole(ctx context.Context, orgID, userID string, role Role) error {
	if !role.Assignable() {
		return fmt.Errorf("role %q cannot be assigned", role)
	}
	return c.send(ctx, "update member role", http.MethodPut, orgPath(orgID, "members", userID),
		roleRequest{Role: role}, nil)
}

// RemoveMember removes a member from an organization.
func (c *Client) RemoveMember(ctx context.Context, orgID, userID string) error {
	return c.send(ctx, "remove organization member", http.MethodDelete, orgPath(orgID, "members", userID), nil, nil)
}

// ListInvitations returns the pending invitations of an organization.
func (c *Client) ListInvitations(ctx context.Context, orgID string) ([]Invitation, error) {
	return getList[Invitation](ctx, c, "fetch organization invites", orgPath(orgID, "invites"), nil, "invites")
}

// CreateInvitation invites an email address to an organization.
func (c *Client) CreateInvitation(ctx context.Context, orgID, email string, role Role) (*Invitation, error) {
	if !role.Assignable() {
		return nil, fmt.Errorf("role %q cannot be assigned", role)
	}
	var inv Invitation
	err := c.send(ctx, "create organization invite", http.MethodPost, orgPath(orgID, "invites"),
		inviteRequest{Email: email, Role: role}, &inv)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// AcceptInvitation consumes an invitation by its token.
func (c *Client) AcceptInvitation(ctx context.Context, token string) error {
	return c.send(ctx, "accept organization invite", http.MethodPost, "/api/organizations/invites/accept",
		acceptInviteRequest{Token: token}, nil)
}
