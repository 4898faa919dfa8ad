package catalog

import (
	"fmt"
	"slices"
	"sort"
	"testing"

	"github.com/dotfiles-manager/dfm/internal/apiclient"
	"github.com/stretchr/testify/assert"
)

func fixture() []apiclient.Template {
	return []apiclient.Template{
		{ID: "1", Metadata: &apiclient.Metadata{Name: "Zsh Power", Description: "oh-my-zsh setup", Author: "alice", Tags: []string{"shell", "zsh"}}},
		{ID: "2", Metadata: &apiclient.Metadata{Name: "Neovim", Description: "Lua config", Author: "Bob", Tags: []string{"editor"}}},
		{ID: "3", Metadata: &apiclient.Metadata{Name: "Minimal", Description: "just git", Author: "carol", Tags: []string{"shell", "git", "shell"}}},
		{ID: "4", Metadata: nil},
		{ID: "5", Metadata: &apiclient.Metadata{Name: "No tags", Author: "BOBBY"}},
	}
}

func ids(ts []apiclient.Template) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestFilterQuery(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3", "4", "5"}},
		{"zsh", []string{"1"}},
		{"BOB", []string{"2", "5"}},
		{"lua", []string{"2"}},
		{"nothing-matches", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(fixture(), tt.query, AllTags)))
		})
	}
}

func TestFilterTag(t *testing.T) {
	assert.Equal(t, []string{"1", "3"}, ids(Filter(fixture(), "", "shell")))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(Filter(fixture(), "", "")))
	assert.Empty(t, Filter(fixture(), "", "missing"))
}

func TestFilterIsConjunctive(t *testing.T) {
	templates := fixture()
	for _, q := range []string{"", "i", "bob", "z", "git"} {
		for _, tag := range TagMenu(templates) {
			both := ids(Filter(templates, q, tag))
			queryOnly := ids(Filter(templates, q, AllTags))
			tagOnly := ids(Filter(templates, "", tag))

			var intersection []string
			for _, id := range queryOnly {
				if slices.Contains(tagOnly, id) {
					intersection = append(intersection, id)
				}
			}
			assert.ElementsMatch(t, intersection, both, fmt.Sprintf("query=%q tag=%q", q, tag))
		}
	}
}

func TestTagMenuSortedAndUnique(t *testing.T) {
	tags := TagMenu(fixture())
	assert.Equal(t, []string{"editor", "git", "shell", "zsh"}, tags)
	assert.True(t, sort.StringsAreSorted(tags))
	assert.Empty(t, TagMenu(nil))
}

func TestNilMetadataTolerated(t *testing.T) {
	nilMeta := []apiclient.Template{{ID: "x"}}
	assert.Empty(t, TagMenu(nilMeta))
	assert.Empty(t, Filter(nilMeta, "q", AllTags))
	assert.Empty(t, Filter(nilMeta, "", "t"))
	assert.Len(t, Filter(nilMeta, "", AllTags), 1)
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"My Dev Box":       "my-dev-box",
		"Tabs\tand  Gaps":  "tabs-and-gaps",
		"already-slugged":  "already-slugged",
		" Leading Space":   "-leading-space",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), in)
	}
	assert.Equal(t, "abc.json", FileName(&apiclient.Template{ID: "abc"}))
}
