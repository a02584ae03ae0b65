// Package readme keeps the skills table in README.md in step with the manifest.
package readme

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/cerebratechai/skillctl/pkg/fsutil"
	"github.com/cerebratechai/skillctl/pkg/manifest"
	"github.com/pkg/errors"
)

const (
	StartMarker = "<!-- SKILLS-START -->"
	EndMarker   = "<!-- SKILLS-END -->"
)

var sectionPattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(StartMarker) + `.*?` + regexp.QuoteMeta(EndMarker))

type group struct {
	number  int
	name    string
	entries []manifest.Entry
}

// Table renders the "Skills Overview" markdown for m, grouped by category
// and sorted by skill name within each category.
func Table(m *manifest.Manifest) string {
	var lines []string
	lines = append(lines, "## Skills Overview\n")
	lines = append(lines, fmt.Sprintf("**Total Skills:** %d\n", m.Total))

	groups := map[string]*group{}
	for _, e := range m.Skills {
		slug, name := e.Category.Slug, e.Category.Name
		if slug == "" {
			slug = "other"
		}
		if name == "" {
			name = "Other"
		}
		key := fmt.Sprintf("%02d-%s", e.Category.Number, slug)
		g, ok := groups[key]
		if !ok {
			g = &group{number: e.Category.Number, name: name}
			groups[key] = g
		}
		g.entries = append(g.entries, e)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		g := groups[k]
		lines = append(lines, fmt.Sprintf("\n### %02d. %s\n", g.number, g.name))
		lines = append(lines, "| Skill | Description |")
		lines = append(lines, "|-------|-------------|")

		sort.SliceStable(g.entries, func(i, j int) bool {
			return g.entries[i].SkillName < g.entries[j].SkillName
		})
		for _, e := range g.entries {
			name := e.SkillName
			if name == "" {
				name = "Unknown"
			}
			title := e.Title
			if title == "" {
				title = name
			}
			link := strings.ReplaceAll(e.Path, `\`, "/")
			lines = append(lines, fmt.Sprintf("| [%s](%s) | %s |", name, link, title))
		}
	}

	return strings.Join(lines, "\n")
}

// Section wraps table in the skills markers
func Section(table string) string {
	return StartMarker + "\n" + table + "\n" + EndMarker
}

// Update replaces every marked section of content with table, or appends a
// new marked section when content has no markers.
func Update(content, table string) string {
	section := Section(table)
	if sectionPattern.MatchString(content) {
		return sectionPattern.ReplaceAllLiteralString(content, section)
	}
	return content + "\n\n" + section + "\n"
}

// New returns a fresh README holding only the title and the skills section
func New(table string) string {
	return "# Claude Skills Collection\n\n" + Section(table) + "\n"
}

// Render returns the current and updated README content at path. A missing
// README yields empty current content and a freshly created one.
func Render(path, table string) (current, updated string, err error) {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return "", New(table), nil
	case err != nil:
		return "", "", errors.Wrapf(err, "failed to read %s", path)
	}
	return string(data), Update(string(data), table), nil
}

// Write updates the README at path in place and reports whether it was created
func Write(path, table string) (created bool, err error) {
	created = !fsutil.Exists(path)
	err = fsutil.Transform(path, func(data []byte) ([]byte, error) {
		if len(data) == 0 && created {
			return []byte(New(table)), nil
		}
		return []byte(Update(string(data), table)), nil
	})
	return created, err
}

// Diff returns a unified diff between the current and updated README
func Diff(path, current, updated string) string {
	return udiff.Unified(path, path, current, updated)
}
