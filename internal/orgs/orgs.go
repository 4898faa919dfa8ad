// Package orgs implements the organization management view: organizations,
// their members and pending invitations.
package orgs

import (
	"context"
	"log/slog"

	"github.com/dotfiles-manager/dfm/internal/apiclient"
	"github.com/dotfiles-manager/dfm/internal/notify"
	"github.com/dotfiles-manager/dfm/internal/view"
	"github.com/go-playground/validator/v10"
)

// API is the subset of the API client the organization view uses.
type API interface {
	ListOrganizations(ctx context.Context) ([]apiclient.Organization, error)
	GetOrganization(ctx context.Context, id string) (*apiclient.Organization, error)
	CreateOrganization(ctx context.Context, in apiclient.OrganizationInput) (*apiclient.Organization, error)
	DeleteOrganization(ctx context.Context, id string) error
	ListMembers(ctx context.Context, orgID string) ([]apiclient.Member, error)
	UpdateMemberRole(ctx context.Context, orgID, userID string, role apiclient.Role) error
	RemoveMember(ctx context.Context, orgID, userID string) error
	ListInvitations(ctx context.Context, orgID string) ([]apiclient.Invitation, error)
	CreateInvitation(ctx context.Context, orgID, email string, role apiclient.Role) (*apiclient.Invitation, error)
	AcceptInvitation(ctx context.Context, token string) error
}

// CreateForm holds the new-organization fields.
type CreateForm struct {
	Name        string `validate:"required"`
	DisplayName string `validate:"required"`
	Description string
}

// InviteForm holds the invitation fields.
type InviteForm struct {
	Email string         `validate:"required"`
	Role  apiclient.Role `validate:"oneof=admin member"`
}

// RoleOption is one entry of a member's role selector.
type RoleOption struct {
	Role apiclient.Role
	// Selectable is false for options shown but not actionable.
	Selectable bool
}

// View is the state of one mounted organization view.
type View struct {
	api      API
	identity view.IdentitySource
	notifier notify.Notifier
	confirm  view.Confirmer
	validate *validator.Validate
	logger   *slog.Logger

	state         view.State
	organizations []apiclient.Organization
	user          *apiclient.User

	selected    *apiclient.Organization
	members     []apiclient.Member
	invitations []apiclient.Invitation

	Create CreateForm
	Invite InviteForm
}

// New creates an organization view.
func New(api API, identity view.IdentitySource, notifier notify.Notifier, confirm view.Confirmer, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{
		api:      api,
		identity: identity,
		notifier: notifier,
		confirm:  confirm,
		validate: validator.New(),
		logger:   logger,
		Invite:   InviteForm{Role: apiclient.RoleMember},
	}
}

// Load fetches the organization list and the identity together.
func (v *View) Load(ctx context.Context) {
	v.state = view.Loading

	var (
		organizations []apiclient.Organization
		user          *apiclient.User
	)
	err := view.Gather(ctx,
		func(ctx context.Context) error {
			var err error
			organizations, err = v.api.ListOrganizations(ctx)
			return err
		},
		func(ctx context.Context) error {
			user = v.identity.Identity(ctx)
			return nil
		},
	)
	if err != nil {
		v.logger.Warn("loading organizations failed", "error", err)
		v.state = view.Failed
		v.notifier.Notify("Failed to load organizations")
		return
	}

	v.organizations, v.user = organizations, user
	v.state = view.Ready
}

// State returns the view state.
func (v *View) State() view.State { return v.state }

// RequiresSignIn reports whether the view loaded without a signed-in user.
func (v *View) RequiresSignIn() bool { return v.state == view.Ready && v.user == nil }

// User returns the loaded identity, or nil.
func (v *View) User() *apiclient.User { return v.user }

// Organizations returns the loaded organizations.
func (v *View) Organizations() []apiclient.Organization { return v.organizations }

// Selected returns the selected organization, or nil.
func (v *View) Selected() *apiclient.Organization { return v.selected }

// Members returns the selected organization's members.
func (v *View) Members() []apiclient.Member { return v.members }

// Invitations returns the selected organization's pending invitations.
func (v *View) Invitations() []apiclient.Invitation { return v.invitations }

// Select loads an organization's detail, members and invitations together and
// replaces the current selection with them.
func (v *View) Select(ctx context.Context, orgID string) bool {
	var (
		org         *apiclient.Organization
		members     []apiclient.Member
		invitations []apiclient.Invitation
	)
	err := view.Gather(ctx,
		func(ctx context.Context) error {
			var err error
			org, err = v.api.GetOrganization(ctx, orgID)
			return err
		},
		func(ctx context.Context) error {
			var err error
			members, err = v.api.ListMembers(ctx, orgID)
			return err
		},
		func(ctx context.Context) error {
			var err error
			invitations, err = v.api.ListInvitations(ctx, orgID)
			return err
		},
	)
	if err != nil {
		v.logger.Warn("loading organization details failed", "organization_id", orgID, "error", err)
		v.notifier.Notify("Failed to load organization details")
		return false
	}

	v.selected, v.members, v.invitations = org, members, invitations
	return true
}

// CreateOrganization submits the create form as a public organization.
func (v *View) CreateOrganization(ctx context.Context) bool {
	if err := v.validate.Struct(v.Create); err != nil {
		v.notifier.Notify("Please fill in required fields")
		return false
	}

	org, err := v.api.CreateOrganization(ctx, apiclient.OrganizationInput{
		Name:        v.Create.Name,
		DisplayName: v.Create.DisplayName,
		Description: v.Create.Description,
		Public:      true,
	})
	if err != nil {
		v.logger.Warn("creating organization failed", "name", v.Create.Name, "error", err)
		v.notifier.Notify("Failed to create organization")
		return false
	}

	v.notifier.Notify("Organization created successfully")
	v.organizations = append(v.organizations, *org)
	v.Create = CreateForm{}
	return true
}

// SendInvite invites the form's email address to the selected organization.
func (v *View) SendInvite(ctx context.Context) bool {
	if v.selected == nil || v.Invite.Email == "" {
		v.notifier.Notify("Please enter an email address")
		return false
	}
	if v.Invite.Role == "" {
		v.Invite.Role = apiclient.RoleMember
	}
	if err := v.validate.Struct(v.Invite); err != nil {
		v.notifier.Notify("Invitations can only grant the admin or member role")
		return false
	}

	inv, err := v.api.CreateInvitation(ctx, v.selected.ID, v.Invite.Email, v.Invite.Role)
	if err != nil {
		v.logger.Warn("sending invitation failed", "organization_id", v.selected.ID, "error", err)
		v.notifier.Notify("Failed to send invitation")
		return false
	}

	v.notifier.Notify("Invitation sent to " + v.Invite.Email)
	v.invitations = append(v.invitations, *inv)
	v.Invite.Email = ""
	return true
}

// AcceptInvite consumes an invitation token and reloads the organization list.
func (v *View) AcceptInvite(ctx context.Context, token string) bool {
	if token == "" {
		v.notifier.Notify("Please enter an invitation token")
		return false
	}
	if err := v.api.AcceptInvitation(ctx, token); err != nil {
		v.logger.Warn("accepting invitation failed", "error", err)
		v.notifier.Notify("Failed to accept invitation")
		return false
	}

	v.notifier.Notify("Invitation accepted")
	v.Load(ctx)
	return true
}

// RoleOptions returns the role selector entries for a member. Owner is always
// listed but never selectable, and an owner's selector is locked.
func (v *View) RoleOptions(m *apiclient.Member) []RoleOption {
	locked := m.Role == apiclient.RoleOwner
	return []RoleOption{
		{Role: apiclient.RoleOwner, Selectable: false},
		{Role: apiclient.RoleAdmin, Selectable: !locked},
		{Role: apiclient.RoleMember, Selectable: !locked},
	}
}

// CanRemove reports whether the remove action is offered for a member.
func (v *View) CanRemove(m *apiclient.Member) bool {
	return m.Role != apiclient.RoleOwner
}

func (v *View) member(userID string) *apiclient.Member {
	for i := range v.members {
		if v.members[i].UserID == userID {
			return &v.members[i]
		}
	}
	return nil
}

// UpdateMemberRole changes a member's role and reloads the selected organization.
func (v *View) UpdateMemberRole(ctx context.Context, userID string, role apiclient.Role) bool {
	if v.selected == nil {
		return false
	}
	if !role.Assignable() {
		v.notifier.Notify("Role " + string(role) + " cannot be assigned")
		return false
	}
	if m := v.member(userID); m != nil && m.Role == apiclient.RoleOwner {
		v.notifier.Notify("The owner's role cannot be changed")
		return false
	}

	orgID := v.selected.ID
	if err := v.api.UpdateMemberRole(ctx, orgID, userID, role); err != nil {
		v.logger.Warn("updating member role failed", "organization_id", orgID, "user_id", userID, "error", err)
		v.notifier.Notify("Failed to update member role")
		return false
	}

	v.notifier.Notify("Member role updated")
	v.Select(ctx, orgID)
	return true
}

// RemoveMember removes a member after confirmation and reloads the selected organization.
func (v *View) RemoveMember(ctx context.Context, userID string) bool {
	if v.selected == nil {
		return false
	}
	if m := v.member(userID); m != nil && !v.CanRemove(m) {
		v.notifier.Notify("The organization owner cannot be removed")
		return false
	}
	if !v.confirm.Confirm("Are you sure you want to remove this member?") {
		return false
	}

	orgID := v.selected.ID
	if err := v.api.RemoveMember(ctx, orgID, userID); err != nil {
		v.logger.Warn("removing member failed", "organization_id", orgID, "user_id", userID, "error", err)
		v.notifier.Notify("Failed to remove member")
		return false
	}

	v.notifier.Notify("Member removed")
	v.Select(ctx, orgID)
	return true
}

// DeleteOrganization deletes an organization after confirmation and drops it from the list.
func (v *View) DeleteOrganization(ctx context.Context, orgID string) bool {
	if !v.confirm.Confirm("Are you sure you want to delete this organization?") {
		return false
	}

	if err := v.api.DeleteOrganization(ctx, orgID); err != nil {
		v.logger.Warn("deleting organization failed", "organization_id", orgID, "error", err)
		v.notifier.Notify("Failed to delete organization")
		return false
	}

	v.notifier.Notify("Organization deleted")
	kept := v.organizations[:0]
	for _, o := range v.organizations {
		if o.ID != orgID {
			kept = append(kept, o)
		}
	}
	v.organizations = kept
	if v.selected != nil && v.selected.ID == orgID {
		v.selected, v.members, v.invitations = nil, nil, nil
	}
	return true
}
