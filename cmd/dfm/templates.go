package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dotfiles-manager/dfm/internal/apiclient"
	"github.com/dotfiles-manager/dfm/internal/catalog"
	"github.com/dotfiles-manager/dfm/internal/personalize"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"tpl"},
	Short:   "Browse, download and publish templates",
}

var (
	tplListFeatured bool
	tplListSearch   string
	tplListTag      string
	tplListTags     bool
	tplListJSON     bool
)

var templatesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List public templates",
	Long: `List public templates. --search and --tag filter the loaded list locally.

Examples:
  dfm templates list --featured
  dfm templates list --search vim --tag macos
  dfm templates list --tags            # print the tag menu`,
	Args: cobra.NoArgs,
	RunE: runTemplatesList,
}

var templatesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search templates on the server",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesSearch,
}

var tplShowPersonalize bool

var templatesShowCmd = &cobra.Command{
	Use:   "show <template-id>",
	Short: "Show a template and its rating",
	Long: `Show a template. With --personalize the full template is printed with
the sample email, username and repository replaced by your own.`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplatesShow,
}

var (
	tplDownloadMatch string
	tplDownloadDir   string
)

var templatesDownloadCmd = &cobra.Command{
	Use:   "download [template-id...]",
	Short: "Download templates as JSON files",
	Long: `Download templates into the output directory as <name>.json.

Examples:
  dfm templates download 6f1c...
  dfm templates download --match 'mac*' --dir ./templates`,
	RunE: runTemplatesDownload,
}

var templatesFavoriteCmd = &cobra.Command{
	Use:     "favorite <template-id>",
	Aliases: []string{"fav"},
	Short:   "Add or remove a template from your favorites",
	Args:    cobra.ExactArgs(1),
	RunE:    runTemplatesFavorite,
}

var templatesFavoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List your favorite templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesFavorites,
}

var templatesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesStats,
}

var (
	tplCreateFile    string
	tplCreatePrivate bool
	tplCreateOrg     string
)

var templatesCreateCmd = &cobra.Command{
	Use:   "create --file <path>",
	Short: "Publish a template from a JSON, YAML or TOML file",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesCreate,
}

var tplUpdateFile string

var templatesUpdateCmd = &cobra.Command{
	Use:   "update <template-id> --file <path>",
	Short: "Replace a template from a JSON, YAML or TOML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesUpdate,
}

var templatesDeleteCmd = &cobra.Command{
	Use:     "delete <template-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a template",
	Args:    cobra.ExactArgs(1),
	RunE:    runTemplatesDelete,
}

var templatesPersonalizeCmd = &cobra.Command{
	Use:   "personalize [file]",
	Short: "Fill in your details in a template snippet",
	Long: `Replace the sample email, username and dotfiles repository in a file
(or stdin) with the signed-in user's details and print the result.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTemplatesPersonalize,
}

func init() {
	templatesListCmd.Flags().BoolVar(&tplListFeatured, "featured", false, "Only featured templates")
	templatesListCmd.Flags().StringVar(&tplListSearch, "search", "", "Filter by name, description or author")
	templatesListCmd.Flags().StringVar(&tplListTag, "tag", catalog.AllTags, "Filter by tag")
	templatesListCmd.Flags().BoolVar(&tplListTags, "tags", false, "Print the tag menu instead of templates")
	templatesListCmd.Flags().BoolVar(&tplListJSON, "json", false, "Output as JSON")

	templatesShowCmd.Flags().BoolVar(&tplShowPersonalize, "personalize", false, "Print the personalized template body")

	templatesDownloadCmd.Flags().StringVar(&tplDownloadMatch, "match", "", "Download every template whose name slug matches a glob")
	templatesDownloadCmd.Flags().StringVarP(&tplDownloadDir, "dir", "d", "", "Output directory (default from config)")

	templatesCreateCmd.Flags().StringVarP(&tplCreateFile, "file", "f", "", "Template file (.json, .yaml, .toml)")
	templatesCreateCmd.Flags().BoolVar(&tplCreatePrivate, "private", false, "Do not list the template publicly")
	templatesCreateCmd.Flags().StringVar(&tplCreateOrg, "org", "", "Publish under an organization ID")
	_ = templatesCreateCmd.MarkFlagRequired("file")

	templatesUpdateCmd.Flags().StringVarP(&tplUpdateFile, "file", "f", "", "Template file (.json, .yaml, .toml)")
	_ = templatesUpdateCmd.MarkFlagRequired("file")

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesSearchCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesDownloadCmd)
	templatesCmd.AddCommand(templatesFavoriteCmd)
	templatesCmd.AddCommand(templatesFavoritesCmd)
	templatesCmd.AddCommand(templatesStatsCmd)
	templatesCmd.AddCommand(templatesCreateCmd)
	templatesCmd.AddCommand(templatesUpdateCmd)
	templatesCmd.AddCommand(templatesDeleteCmd)
	templatesCmd.AddCommand(templatesPersonalizeCmd)
}

// loadCatalog mounts a catalog view saving into dir.
func loadCatalog(ctx context.Context, a *app, dir string, featured bool) (*catalog.Catalog, error) {
	if dir == "" {
		dir = a.cfg.Output.DownloadDir
	}
	c := catalog.New(a.api, a.session, a.notifier, catalog.DirSaver{Dir: dir}, a.logger)
	c.FeaturedOnly = featured
	c.Load(ctx)
	return c, checkState(c.State())
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	c, err := loadCatalog(context.Background(), a, "", tplListFeatured)
	if err != nil {
		return err
	}
	c.Query, c.Tag = tplListSearch, tplListTag

	out := cmd.OutOrStdout()
	if tplListTags {
		for _, tag := range c.Tags() {
			fmt.Fprintln(out, tag)
		}
		return nil
	}

	visible := c.Visible()
	if tplListJSON {
		return printJSON(out, visible)
	}
	if len(visible) == 0 {
		fmt.Fprintln(os.Stderr, "No templates found.")
		return nil
	}
	return writeTemplateTable(out, visible, c.IsFavorite)
}

func writeTemplateTable(out io.Writer, templates []apiclient.Template, favorite func(*apiclient.Template) bool) error {
	w := newTable(out)
	fmt.Fprintln(w, "ID\tNAME\tAUTHOR\tTAGS\tDOWNLOADS\tFEATURED\tFAVORITE")
	for i := range templates {
		t := &templates[i]
		author := ""
		if t.Metadata != nil {
			author = t.Metadata.Author
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			t.ID, truncate(t.Name(), 40), author, strings.Join(t.Tags(), ","),
			t.Downloads, mark(t.Featured), mark(favorite != nil && favorite(t)))
	}
	return w.Flush()
}

func runTemplatesSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	templates, err := a.api.SearchTemplates(context.Background(), args[0])
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		fmt.Fprintln(os.Stderr, "No templates found.")
		return nil
	}
	return writeTemplateTable(cmd.OutOrStdout(), templates, nil)
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	out := cmd.OutOrStdout()

	if tplShowPersonalize {
		payload, err := a.api.DownloadTemplate(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, personalize.Apply(string(payload), a.session.Identity(ctx)))
		return nil
	}

	t, err := a.api.GetTemplate(ctx, args[0])
	if err != nil {
		return err
	}
	rating, err := a.api.GetTemplateRating(ctx, args[0])
	if err != nil {
		a.logger.Debug("fetching rating failed", "template_id", args[0], "error", err)
	}

	w := newTable(out)
	fmt.Fprintf(w, "ID:\t%s\n", t.ID)
	fmt.Fprintf(w, "Name:\t%s\n", t.Name())
	if t.Metadata != nil {
		fmt.Fprintf(w, "Description:\t%s\n", t.Metadata.Description)
		fmt.Fprintf(w, "Author:\t%s\n", t.Metadata.Author)
		fmt.Fprintf(w, "Version:\t%s\n", t.Metadata.Version)
	}
	fmt.Fprintf(w, "Tags:\t%s\n", strings.Join(t.Tags(), ", "))
	fmt.Fprintf(w, "Taps:\t%s\n", strings.Join(t.Taps, ", "))
	fmt.Fprintf(w, "Brews:\t%s\n", strings.Join(t.Brews, ", "))
	fmt.Fprintf(w, "Casks:\t%s\n", strings.Join(t.Casks, ", "))
	if len(t.Stow) > 0 {
		fmt.Fprintf(w, "Stow:\t%s\n", strings.Join(t.Stow, ", "))
	}
	if t.Extends != "" {
		fmt.Fprintf(w, "Extends:\t%s\n", t.Extends)
	}
	fmt.Fprintf(w, "Public:\t%t\n", t.Public)
	fmt.Fprintf(w, "Featured:\t%t\n", t.Featured)
	fmt.Fprintf(w, "Downloads:\t%d\n", t.Downloads)
	if rating != nil {
		fmt.Fprintf(w, "Rating:\t%.1f (%d ratings)\n", rating.AverageRating, rating.TotalRatings)
	}
	return w.Flush()
}

func runTemplatesDownload(cmd *cobra.Command, args []string) error {
	if tplDownloadMatch == "" && len(args) == 0 {
		return fmt.Errorf("give template IDs or --match <glob>")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	c, err := loadCatalog(ctx, a, tplDownloadDir, false)
	if err != nil {
		return err
	}

	var saved []string
	if tplDownloadMatch != "" {
		saved = append(saved, c.DownloadMatching(ctx, tplDownloadMatch)...)
	}
	failed := false
	for _, id := range args {
		t := c.Find(id)
		if t == nil {
			// Not in the public listing; the owner may still download it.
			if t, err = a.api.GetTemplate(ctx, id); err != nil {
				fmt.Fprintf(os.Stderr, "Template %s not found\n", id)
				failed = true
				continue
			}
		}
		name, ok := c.Download(ctx, t)
		if !ok {
			failed = true
			continue
		}
		saved = append(saved, name)
	}

	for _, name := range saved {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	if failed || len(saved) == 0 {
		return errReported
	}
	return nil
}

func runTemplatesFavorite(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	c, err := loadCatalog(ctx, a, "", false)
	if err != nil {
		return err
	}
	t := c.Find(args[0])
	if t == nil {
		if t, err = a.api.GetTemplate(ctx, args[0]); err != nil {
			return err
		}
	}

	return reported(c.ToggleFavorite(ctx, t))
}

func runTemplatesFavorites(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	user := a.session.Identity(ctx)
	if user == nil {
		a.notifier.Notify("Please sign in to see your favorites")
		return errReported
	}
	templates, err := a.api.ListFavorites(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		fmt.Fprintln(os.Stderr, "No favorites yet.")
		return nil
	}
	return writeTemplateTable(cmd.OutOrStdout(), templates, func(*apiclient.Template) bool { return true })
}

func runTemplatesStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	stats, err := a.api.GetTemplateStats(context.Background())
	if err != nil {
		return err
	}
	w := newTable(cmd.OutOrStdout())
	fmt.Fprintf(w, "Templates:\t%d\n", stats.TotalTemplates)
	fmt.Fprintf(w, "Featured:\t%d\n", stats.FeaturedTemplates)
	fmt.Fprintf(w, "Downloads:\t%d\n", stats.TotalDownloads)
	fmt.Fprintf(w, "Categories:\t%d\n", stats.Categories)
	return w.Flush()
}

func runTemplatesCreate(cmd *cobra.Command, args []string) error {
	in, err := catalog.ReadTemplateFile(tplCreateFile)
	if err != nil {
		return err
	}
	in.Public = !tplCreatePrivate
	if tplCreateOrg != "" {
		in.OrganizationID = tplCreateOrg
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	t, err := a.api.CreateTemplate(context.Background(), *in)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Template %q created\n", t.Name())
	fmt.Fprintln(cmd.OutOrStdout(), t.ID)
	return nil
}

func runTemplatesUpdate(cmd *cobra.Command, args []string) error {
	in, err := catalog.ReadTemplateFile(tplUpdateFile)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	t, err := a.api.UpdateTemplate(context.Background(), args[0], *in)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Template %q updated\n", t.Name())
	return nil
}

func runTemplatesDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if !a.confirm.Confirm("Are you sure you want to delete this template?") {
		return nil
	}
	if err := a.api.DeleteTemplate(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Template deleted")
	return nil
}

func runTemplatesPersonalize(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	user := a.session.Identity(context.Background())
	if user == nil {
		fmt.Fprintln(os.Stderr, "Not signed in; placeholders left unchanged.")
	}
	_, err = io.WriteString(cmd.OutOrStdout(), personalize.Apply(string(data), user))
	return err
}
