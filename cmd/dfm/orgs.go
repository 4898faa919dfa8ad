package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dotfiles-manager/dfm/internal/apiclient"
	"github.com/dotfiles-manager/dfm/internal/orgs"
	"github.com/spf13/cobra"
)

var orgsCmd = &cobra.Command{
	Use:     "orgs",
	Aliases: []string{"org", "organizations"},
	Short:   "Manage organizations, members and invitations",
}

var orgsListJSON bool

var orgsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List organizations",
	Args:    cobra.NoArgs,
	RunE:    runOrgsList,
}

var orgsShowCmd = &cobra.Command{
	Use:   "show <org-id>",
	Short: "Show an organization with its members and pending invitations",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrgsShow,
}

var (
	orgDisplayName string
	orgDescription string
)

var orgsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an organization",
	Long: `Create a public organization.

Examples:
  dfm orgs create acme --display-name "Acme Corp" --description "Shared team setups"`,
	Args: cobra.ExactArgs(1),
	RunE: runOrgsCreate,
}

var orgsDeleteCmd = &cobra.Command{
	Use:     "delete <org-id>",
	Aliases: []string{"rm"},
	Short:   "Delete an organization",
	Args:    cobra.ExactArgs(1),
	RunE:    runOrgsDelete,
}

var orgInviteRole string

var orgsInviteCmd = &cobra.Command{
	Use:   "invite <org-id> <email>",
	Short: "Invite someone to an organization",
	Args:  cobra.ExactArgs(2),
	RunE:  runOrgsInvite,
}

var orgsAcceptCmd = &cobra.Command{
	Use:   "accept <token>",
	Short: "Accept an organization invitation",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrgsAccept,
}

var orgsRoleCmd = &cobra.Command{
	Use:   "role <org-id> <user-id> <admin|member>",
	Short: "Change a member's role",
	Args:  cobra.ExactArgs(3),
	RunE:  runOrgsRole,
}

var orgsRemoveCmd = &cobra.Command{
	Use:   "remove <org-id> <user-id>",
	Short: "Remove a member from an organization",
	Args:  cobra.ExactArgs(2),
	RunE:  runOrgsRemove,
}

func init() {
	orgsListCmd.Flags().BoolVar(&orgsListJSON, "json", false, "Output as JSON")

	orgsCreateCmd.Flags().StringVar(&orgDisplayName, "display-name", "", "Human-readable name (required)")
	orgsCreateCmd.Flags().StringVar(&orgDescription, "description", "", "Short description")

	orgsInviteCmd.Flags().StringVar(&orgInviteRole, "role", string(apiclient.RoleMember), "Role to grant: admin or member")

	orgsCmd.AddCommand(orgsListCmd)
	orgsCmd.AddCommand(orgsShowCmd)
	orgsCmd.AddCommand(orgsCreateCmd)
	orgsCmd.AddCommand(orgsDeleteCmd)
	orgsCmd.AddCommand(orgsInviteCmd)
	orgsCmd.AddCommand(orgsAcceptCmd)
	orgsCmd.AddCommand(orgsRoleCmd)
	orgsCmd.AddCommand(orgsRemoveCmd)
}

// loadOrgs mounts the organization view and requires a signed-in user.
func loadOrgs(ctx context.Context, a *app) (*orgs.View, error) {
	v := orgs.New(a.api, a.session, a.notifier, a.confirm, a.logger)
	v.Load(ctx)
	if err := checkState(v.State()); err != nil {
		return nil, err
	}
	if v.RequiresSignIn() {
		a.notifier.Notify("Please sign in to manage organizations")
		return nil, errReported
	}
	return v, nil
}

// selectOrg mounts the view and selects one organization.
func selectOrg(ctx context.Context, a *app, orgID string) (*orgs.View, error) {
	v, err := loadOrgs(ctx, a)
	if err != nil {
		return nil, err
	}
	if !v.Select(ctx, orgID) {
		return nil, errReported
	}
	return v, nil
}

func runOrgsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	v, err := loadOrgs(context.Background(), a)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if orgsListJSON {
		return printJSON(out, v.Organizations())
	}
	if len(v.Organizations()) == 0 {
		fmt.Fprintln(os.Stderr, "No organizations yet. Run 'dfm orgs create <name>' to create one.")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "ID\tNAME\tDISPLAY NAME\tMEMBERS\tPUBLIC\tOWNER")
	user := v.User()
	for _, o := range v.Organizations() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			o.ID, o.Name, o.Title(), o.MemberCount, mark(o.Public), mark(o.OwnerID == user.ID))
	}
	return w.Flush()
}

func runOrgsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	v, err := selectOrg(context.Background(), a, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	o := v.Selected()
	fmt.Fprintf(out, "%s (%s)\n", o.Title(), o.Name)
	if o.Description != "" {
		fmt.Fprintln(out, o.Description)
	}
	if o.Website != "" {
		fmt.Fprintln(out, o.Website)
	}

	fmt.Fprintln(out, "\nMembers:")
	w := newTable(out)
	fmt.Fprintln(w, "USER\tROLE\tJOINED\tASSIGNABLE\tREMOVABLE")
	for i := range v.Members() {
		m := &v.Members()[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.UserID, m.Role, formatTimestamp(m.JoinedAt), roleChoices(v.RoleOptions(m)), mark(v.CanRemove(m)))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(v.Invitations()) == 0 {
		return nil
	}
	fmt.Fprintln(out, "\nPending invitations:")
	w = newTable(out)
	fmt.Fprintln(w, "EMAIL\tROLE\tEXPIRES")
	for _, inv := range v.Invitations() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", inv.Email, inv.Role, formatTimestamp(inv.ExpiresAt))
	}
	return w.Flush()
}

// roleChoices lists the selectable roles, or "-" when the selector is locked.
func roleChoices(opts []orgs.RoleOption) string {
	var roles []string
	for _, o := range opts {
		if o.Selectable {
			roles = append(roles, string(o.Role))
		}
	}
	if len(roles) == 0 {
		return "-"
	}
	return strings.Join(roles, ",")
}

func runOrgsCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	v, err := loadOrgs(ctx, a)
	if err != nil {
		return err
	}

	v.Create = orgs.CreateForm{Name: args[0], DisplayName: orgDisplayName, Description: orgDescription}
	if !v.CreateOrganization(ctx) {
		return errReported
	}
	created := v.Organizations()[len(v.Organizations())-1]
	fmt.Fprintln(cmd.OutOrStdout(), created.ID)
	return nil
}

func runOrgsDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	v, err := loadOrgs(ctx, a)
	if err != nil {
		return err
	}
	return reported(v.DeleteOrganization(ctx, args[0]))
}

func runOrgsInvite(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	v, err := selectOrg(ctx, a, args[0])
	if err != nil {
		return err
	}

	v.Invite = orgs.InviteForm{Email: args[1], Role: apiclient.Role(orgInviteRole)}
	if !v.SendInvite(ctx) {
		return errReported
	}
	inv := v.Invitations()[len(v.Invitations())-1]
	if inv.Token != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Invitation token: %s\n", inv.Token)
	}
	return nil
}

func runOrgsAccept(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	v, err := loadOrgs(ctx, a)
	if err != nil {
		return err
	}
	return reported(v.AcceptInvite(ctx, args[0]))
}

func runOrgsRole(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	v, err := selectOrg(ctx, a, args[0])
	if err != nil {
		return err
	}
	return reported(v.UpdateMemberRole(ctx, args[1], apiclient.Role(args[2])))
}

func runOrgsRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	v, err := selectOrg(ctx, a, args[0])
	if err != nil {
		return err
	}
	return reported(v.RemoveMember(ctx, args[1]))
}
