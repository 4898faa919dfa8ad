package orgs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dotfiles-manager/dfm/internal/apiclient"
	"github.com/dotfiles-manager/dfm/internal/notify"
	"github.com/dotfiles-manager/dfm/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu sync.Mutex

	orgs        []apiclient.Organization
	members     map[string][]apiclient.Member
	invitations map[string][]apiclient.Invitation
	detailErr   error
	writeErr    error

	calls    int
	roles    map[string]apiclient.Role
	removed  []string
	deleted  []string
	accepted []string
	created  []apiclient.OrganizationInput
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		orgs: []apiclient.Organization{
			{ID: "o1", Name: "acme", DisplayName: "Acme"},
			{ID: "o2", Name: "globex"},
		},
		members: map[string][]apiclient.Member{
			"o1": {
				{UserID: "u1", Role: apiclient.RoleOwner},
				{UserID: "u2", Role: apiclient.RoleMember},
			},
		},
		invitations: map[string][]apiclient.Invitation{},
		roles:       map[string]apiclient.Role{},
	}
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAPI) hit() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeAPI) ListOrganizations(ctx context.Context) ([]apiclient.Organization, error) {
	f.hit()
	return append([]apiclient.Organization(nil), f.orgs...), nil
}

func (f *fakeAPI) GetOrganization(ctx context.Context, id string) (*apiclient.Organization, error) {
	f.hit()
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	for _, o := range f.orgs {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeAPI) CreateOrganization(ctx context.Context, in apiclient.OrganizationInput) (*apiclient.Organization, error) {
	f.hit()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.created = append(f.created, in)
	return &apiclient.Organization{ID: "o3", Name: in.Name, DisplayName: in.DisplayName, Public: in.Public}, nil
}

func (f *fakeAPI) DeleteOrganization(ctx context.Context, id string) error {
	f.hit()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) ListMembers(ctx context.Context, orgID string) ([]apiclient.Member, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiclient.Member(nil), f.members[orgID]...), nil
}

func (f *fakeAPI) UpdateMemberRole(ctx context.Context, orgID, userID string, role apiclient.Role) error {
	f.hit()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[userID] = role
	for i, m := range f.members[orgID] {
		if m.UserID == userID {
			f.members[orgID][i].Role = role
		}
	}
	return nil
}

func (f *fakeAPI) RemoveMember(ctx context.Context, orgID, userID string) error {
	f.hit()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, userID)
	kept := f.members[orgID][:0]
	for _, m := range f.members[orgID] {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	f.members[orgID] = kept
	return nil
}

func (f *fakeAPI) ListInvitations(ctx context.Context, orgID string) ([]apiclient.Invitation, error) {
	f.hit()
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiclient.Invitation(nil), f.invitations[orgID]...), nil
}

func (f *fakeAPI) CreateInvitation(ctx context.Context, orgID, email string, role apiclient.Role) (*apiclient.Invitation, error) {
	f.hit()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return &apiclient.Invitation{ID: "i1", OrganizationID: orgID, Email: email, Role: role}, nil
}

func (f *fakeAPI) AcceptInvitation(ctx context.Context, token string) error {
	f.hit()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.accepted = append(f.accepted, token)
	return nil
}

type staticIdentity struct{ user *apiclient.User }

func (s staticIdentity) Identity(ctx context.Context) *apiclient.User { return s.user }
func (s staticIdentity) Refresh(ctx context.Context) *apiclient.User  { return s.user }

var owner = &apiclient.User{ID: "u1", Username: "octo"}

func loaded(t *testing.T, api *fakeAPI, rec *notify.Recorder, confirm view.Confirmer) *View {
	t.Helper()
	v := New(api, staticIdentity{owner}, rec, confirm, nil)
	v.Load(context.Background())
	require.Equal(t, view.Ready, v.State())
	return v
}

func TestLoadWithoutIdentityRequiresSignIn(t *testing.T) {
	v := New(newFakeAPI(), staticIdentity{}, &notify.Recorder{}, view.Always, nil)
	v.Load(context.Background())

	assert.Equal(t, view.Ready, v.State())
	assert.True(t, v.RequiresSignIn())
}

func TestSelectReplacesDetail(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)

	require.True(t, v.Select(context.Background(), "o1"))
	assert.Equal(t, "Acme", v.Selected().Title())
	assert.Len(t, v.Members(), 2)

	require.True(t, v.Select(context.Background(), "o2"))
	assert.Equal(t, "globex", v.Selected().Title())
	assert.Empty(t, v.Members())
}

func TestSelectFailureKeepsDetail(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)
	require.True(t, v.Select(context.Background(), "o1"))

	api.detailErr = errors.New("boom")
	assert.False(t, v.Select(context.Background(), "o2"))
	assert.Equal(t, "o1", v.Selected().ID)
	assert.Equal(t, "Failed to load organization details", rec.Last())
}

func TestCreateRequiresFields(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)
	before := api.count()

	v.Create = CreateForm{Name: "initech"}
	assert.False(t, v.CreateOrganization(context.Background()))
	assert.Equal(t, before, api.count())
	assert.Equal(t, "Please fill in required fields", rec.Last())
}

func TestCreateAppendsAndResetsForm(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)

	v.Create = CreateForm{Name: "initech", DisplayName: "Initech"}
	require.True(t, v.CreateOrganization(context.Background()))

	require.Len(t, api.created, 1)
	assert.True(t, api.created[0].Public)
	assert.Len(t, v.Organizations(), 3)
	assert.Equal(t, CreateForm{}, v.Create)
	assert.Equal(t, "Organization created successfully", rec.Last())
}

func TestInviteRequiresEmail(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)
	require.True(t, v.Select(context.Background(), "o1"))
	before := api.count()

	assert.False(t, v.SendInvite(context.Background()))
	assert.Equal(t, before, api.count())
	assert.Equal(t, "Please enter an email address", rec.Last())
}

func TestInviteDefaultsToMember(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)
	require.True(t, v.Select(context.Background(), "o1"))

	v.Invite = InviteForm{Email: "new@example.com"}
	require.True(t, v.SendInvite(context.Background()))

	require.Len(t, v.Invitations(), 1)
	assert.Equal(t, apiclient.RoleMember, v.Invitations()[0].Role)
	assert.Empty(t, v.Invite.Email)
	assert.Equal(t, "Invitation sent to new@example.com", rec.Last())
}

func TestInviteRejectsOwnerRole(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)
	require.True(t, v.Select(context.Background(), "o1"))
	before := api.count()

	v.Invite = InviteForm{Email: "new@example.com", Role: apiclient.RoleOwner}
	assert.False(t, v.SendInvite(context.Background()))
	assert.Equal(t, before, api.count())
}

func TestOwnerCannotBeRemoved(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)
	require.True(t, v.Select(context.Background(), "o1"))

	assert.False(t, v.CanRemove(&v.Members()[0]))
	assert.True(t, v.CanRemove(&v.Members()[1]))

	before := api.count()
	assert.False(t, v.RemoveMember(context.Background(), "u1"))
	assert.Equal(t, before, api.count())
}

func TestRemoveMemberConfirmsAndReloads(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Never)
	require.True(t, v.Select(context.Background(), "o1"))

	assert.False(t, v.RemoveMember(context.Background(), "u2"))
	assert.Empty(t, api.removed)

	v.confirm = view.Always
	require.True(t, v.RemoveMember(context.Background(), "u2"))
	assert.Equal(t, []string{"u2"}, api.removed)
	assert.Len(t, v.Members(), 1)
	assert.Equal(t, "Member removed", rec.Last())
}

func TestUpdateRoleReloadsDetail(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)
	require.True(t, v.Select(context.Background(), "o1"))

	require.True(t, v.UpdateMemberRole(context.Background(), "u2", apiclient.RoleAdmin))
	assert.Equal(t, apiclient.RoleAdmin, v.Members()[1].Role)
	assert.Equal(t, "Member role updated", rec.Last())
}

func TestUpdateRoleRefusesOwner(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)
	require.True(t, v.Select(context.Background(), "o1"))
	before := api.count()

	assert.False(t, v.UpdateMemberRole(context.Background(), "u2", apiclient.RoleOwner))
	assert.False(t, v.UpdateMemberRole(context.Background(), "u1", apiclient.RoleMember))
	assert.Equal(t, before, api.count())
	assert.Empty(t, api.roles)
}

func TestRoleOptions(t *testing.T) {
	v := New(newFakeAPI(), staticIdentity{}, &notify.Recorder{}, view.Always, nil)

	opts := v.RoleOptions(&apiclient.Member{Role: apiclient.RoleMember})
	require.Len(t, opts, 3)
	assert.Equal(t, apiclient.RoleOwner, opts[0].Role)
	assert.False(t, opts[0].Selectable)
	assert.True(t, opts[1].Selectable)

	for _, o := range v.RoleOptions(&apiclient.Member{Role: apiclient.RoleOwner}) {
		assert.False(t, o.Selectable, o.Role)
	}
}

func TestDeleteClearsSelection(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)
	require.True(t, v.Select(context.Background(), "o1"))

	require.True(t, v.DeleteOrganization(context.Background(), "o1"))
	assert.Nil(t, v.Selected())
	assert.Nil(t, v.Members())
	require.Len(t, v.Organizations(), 1)
	assert.Equal(t, "o2", v.Organizations()[0].ID)
	assert.Equal(t, "Organization deleted", rec.Last())
}

func TestDeleteOtherKeepsSelection(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)
	require.True(t, v.Select(context.Background(), "o1"))

	require.True(t, v.DeleteOrganization(context.Background(), "o2"))
	assert.Equal(t, "o1", v.Selected().ID)
}

func TestDeleteFailureNotifies(t *testing.T) {
	api := newFakeAPI()
	api.writeErr = errors.New("boom")
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)

	assert.False(t, v.DeleteOrganization(context.Background(), "o1"))
	assert.Len(t, v.Organizations(), 2)
	assert.Equal(t, "Failed to delete organization", rec.Last())
}

func TestAcceptInviteReloads(t *testing.T) {
	api := newFakeAPI()
	var rec notify.Recorder
	v := loaded(t, api, &rec, view.Always)

	require.True(t, v.AcceptInvite(context.Background(), "tok"))
	assert.Equal(t, []string{"tok"}, api.accepted)
	assert.Equal(t, view.Ready, v.State())
	assert.Equal(t, "Invitation accepted", rec.Last())
}
