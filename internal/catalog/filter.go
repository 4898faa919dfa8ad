package catalog

import (
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/dotfiles-manager/dfm/internal/apiclient"
	"golang.org/x/text/cases"
)

// AllTags is the tag filter value that matches every template.
const AllTags = "all"

var whitespace = regexp.MustCompile(`\s+`)

// Slug turns a template name into a file-name friendly form.
func Slug(name string) string {
	return strings.ToLower(whitespace.ReplaceAllString(name, "-"))
}

// FileName is the name a downloaded template is saved under.
func FileName(t *apiclient.Template) string {
	name := Slug(t.Name())
	if name == "" {
		name = t.ID
	}
	return name + ".json"
}

// MatchesQuery reports whether query is a case-insensitive substring of the
// template's name, description or author.
func MatchesQuery(t *apiclient.Template, query string) bool {
	if query == "" {
		return true
	}
	if t.Metadata == nil {
		return false
	}
	fold := cases.Fold()
	q := fold.String(query)
	for _, field := range []string{t.Metadata.Name, t.Metadata.Description, t.Metadata.Author} {
		if strings.Contains(fold.String(field), q) {
			return true
		}
	}
	return false
}

// MatchesTag reports whether the template carries tag. AllTags and "" match everything.
func MatchesTag(t *apiclient.Template, tag string) bool {
	if tag == "" || tag == AllTags {
		return true
	}
	return slices.Contains(t.Tags(), tag)
}

// Filter returns the templates matching both the query and the tag.
func Filter(templates []apiclient.Template, query, tag string) []apiclient.Template {
	out := make([]apiclient.Template, 0, len(templates))
	for i := range templates {
		if MatchesQuery(&templates[i], query) && MatchesTag(&templates[i], tag) {
			out = append(out, templates[i])
		}
	}
	return out
}

// TagMenu returns the sorted, de-duplicated union of all template tags.
func TagMenu(templates []apiclient.Template) []string {
	seen := make(map[string]struct{})
	for i := range templates {
		for _, tag := range templates[i].Tags() {
			if tag != "" {
				seen[tag] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
