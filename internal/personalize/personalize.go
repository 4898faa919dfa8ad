// Package personalize fills the sample identity placeholders in a template body
// with the signed-in user's details.
package personalize

import (
	"strings"

	"github.com/dotfiles-manager/dfm/internal/apiclient"
)

// Placeholders shipped in template bodies.
const (
	EmailPlaceholder    = "your@email.com"
	UsernamePlaceholder = "your-username"
	RepoPlaceholder     = "github.com/your-username/your-dotfiles.git"
)

// RepoURL returns the dotfiles clone URL for a GitHub handle.
func RepoURL(username string) string {
	return "github.com/" + username + "/dotfiles.git"
}

// Apply replaces every placeholder occurrence with the identity's values.
// A nil identity, or an empty field, leaves the matching placeholder untouched.
// Applying twice yields the same text only when the identity's values contain
// no placeholder themselves.
func Apply(text string, id *apiclient.User) string {
	if id == nil {
		return text
	}

	out := text
	if id.Email != "" {
		out = strings.ReplaceAll(out, EmailPlaceholder, id.Email)
	}
	// The repo URL contains the username token, so it goes first.
	if id.Username != "" {
		out = strings.ReplaceAll(out, RepoPlaceholder, RepoURL(id.Username))
		out = strings.ReplaceAll(out, UsernamePlaceholder, id.Username)
	}
	return out
}
