// Package catalog implements the template browsing view: loading the public
// catalog, filtering it locally and acting on single templates.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dotfiles-manager/dfm/internal/apiclient"
	"github.com/dotfiles-manager/dfm/internal/notify"
	"github.com/dotfiles-manager/dfm/internal/view"
)

// DefaultLimit is the page size requested on load.
const DefaultLimit = 100

// API is the subset of the API client the catalog uses.
type API interface {
	ListTemplates(ctx context.Context, opts apiclient.ListTemplatesOptions) ([]apiclient.Template, error)
	DownloadTemplate(ctx context.Context, id string) (json.RawMessage, error)
	AddFavorite(ctx context.Context, userID, templateID string) error
	RemoveFavorite(ctx context.Context, userID, templateID string) error
}

// Saver stores a downloaded file.
type Saver interface {
	Save(name string, data []byte) error
}

// DirSaver writes files into a directory, creating it when needed.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(name string, data []byte) error {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Catalog is the state of one mounted catalog view.
type Catalog struct {
	api      API
	identity view.IdentitySource
	notifier notify.Notifier
	saver    Saver
	logger   *slog.Logger

	// FeaturedOnly restricts the next Load to featured templates.
	FeaturedOnly bool
	// Query and Tag drive Visible.
	Query string
	Tag   string

	state     view.State
	templates []apiclient.Template
	user      *apiclient.User
}

// New creates a catalog view.
func New(api API, identity view.IdentitySource, notifier notify.Notifier, saver Saver, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		api:      api,
		identity: identity,
		notifier: notifier,
		saver:    saver,
		logger:   logger,
		Tag:      AllTags,
	}
}

// Load fetches the public template list and the current identity together.
// Identity failures read as signed out; a list failure leaves the list empty.
func (c *Catalog) Load(ctx context.Context) {
	c.state = view.Loading

	public := true
	opts := apiclient.ListTemplatesOptions{Public: &public, Limit: DefaultLimit}
	if c.FeaturedOnly {
		featured := true
		opts.Featured = &featured
	}

	var (
		templates []apiclient.Template
		user      *apiclient.User
	)
	err := view.Gather(ctx,
		func(ctx context.Context) error {
			var err error
			templates, err = c.api.ListTemplates(ctx, opts)
			return err
		},
		func(ctx context.Context) error {
			user = c.identity.Identity(ctx)
			return nil
		},
	)
	c.user = user
	if err != nil {
		c.logger.Warn("loading templates failed", "error", err)
		c.templates = nil
		c.state = view.Failed
		c.notifier.Notify("Failed to load templates")
		return
	}

	c.templates = templates
	c.state = view.Ready
	c.logger.Debug("templates loaded", "count", len(templates), "featured_only", c.FeaturedOnly)
}

// State returns the view state.
func (c *Catalog) State() view.State { return c.state }

// User returns the identity fetched on load, or nil.
func (c *Catalog) User() *apiclient.User { return c.user }

// Templates returns every loaded template.
func (c *Catalog) Templates() []apiclient.Template { return c.templates }

// Visible returns the loaded templates matching Query and Tag.
func (c *Catalog) Visible() []apiclient.Template {
	return Filter(c.templates, c.Query, c.Tag)
}

// Tags returns the tag menu for the loaded templates.
func (c *Catalog) Tags() []string {
	return TagMenu(c.templates)
}

// Find returns the loaded template with the given ID.
func (c *Catalog) Find(id string) *apiclient.Template {
	for i := range c.templates {
		if c.templates[i].ID == id {
			return &c.templates[i]
		}
	}
	return nil
}

// Download saves the full template payload as indented JSON. It returns the file
// name and whether the save succeeded.
func (c *Catalog) Download(ctx context.Context, t *apiclient.Template) (string, bool) {
	payload, err := c.api.DownloadTemplate(ctx, t.ID)
	if err != nil {
		c.logger.Warn("downloading template failed", "template_id", t.ID, "error", err)
		c.notifier.Notify("Failed to download template")
		return "", false
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		c.logger.Warn("template payload is not JSON", "template_id", t.ID, "error", err)
		c.notifier.Notify("Failed to download template")
		return "", false
	}
	buf.WriteByte('\n')

	name := FileName(t)
	if err := c.saver.Save(name, buf.Bytes()); err != nil {
		c.logger.Warn("saving template failed", "file", name, "error", err)
		c.notifier.Notify("Failed to download template")
		return "", false
	}

	c.notifier.Notify("Template downloaded successfully")
	return name, true
}

// DownloadMatching downloads every visible template whose slug matches the glob
// pattern and returns the saved file names.
func (c *Catalog) DownloadMatching(ctx context.Context, pattern string) []string {
	if !doublestar.ValidatePattern(pattern) {
		c.notifier.Notify(fmt.Sprintf("Invalid pattern %q", pattern))
		return nil
	}

	var saved []string
	visible := c.Visible()
	for i := range visible {
		ok, _ := doublestar.Match(pattern, Slug(visible[i].Name()))
		if !ok {
			continue
		}
		if name, ok := c.Download(ctx, &visible[i]); ok {
			saved = append(saved, name)
		}
	}
	if len(saved) == 0 {
		c.notifier.Notify("No templates matched " + pattern)
	}
	return saved
}

// IsFavorite reports whether the signed-in user has favorited the template.
func (c *Catalog) IsFavorite(t *apiclient.Template) bool {
	return c.user.HasFavorite(t.ID)
}

// ToggleFavorite adds or removes the template from the user's favorites and
// re-fetches the identity to observe the change.
func (c *Catalog) ToggleFavorite(ctx context.Context, t *apiclient.Template) bool {
	if c.user == nil {
		c.notifier.Notify("Please sign in to save favorites")
		return false
	}

	var (
		err error
		msg string
	)
	if c.user.HasFavorite(t.ID) {
		err = c.api.RemoveFavorite(ctx, c.user.ID, t.ID)
		msg = "Removed from favorites"
	} else {
		err = c.api.AddFavorite(ctx, c.user.ID, t.ID)
		msg = "Added to favorites"
	}
	if err != nil {
		c.logger.Warn("updating favorites failed", "template_id", t.ID, "error", err)
		c.notifier.Notify("Failed to update favorites")
		return false
	}

	c.notifier.Notify(msg)
	c.user = c.identity.Refresh(ctx)
	return true
}
