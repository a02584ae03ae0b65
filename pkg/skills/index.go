package skills

import (
	"os"
	"regexp"
	"sort"

	"github.com/pkg/errors"
)

// IndexFileName is the markdown index that links every registered skill
const IndexFileName = "SKILL_INDEX.md"

var indexLinkPattern = regexp.MustCompile(`\[([\p{L}\p{N}_-]+)\]\(`)

// ParseIndex extracts skill names from markdown links of the form [skill-name](...)
func ParseIndex(content []byte) map[string]struct{} {
	names := make(map[string]struct{})
	for _, m := range indexLinkPattern.FindAllSubmatch(content, -1) {
		names[string(m[1])] = struct{}{}
	}
	return names
}

// LoadIndex reads and parses a skill index file
func LoadIndex(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read skill index %s", path)
	}
	return ParseIndex(content), nil
}

// NameSet returns the set of skill keys and directory names of docs
func NameSet(docs []*Document) map[string]struct{} {
	names := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if d.SkillName != "" {
			names[d.SkillName] = struct{}{}
		}
		if d.Name != "" {
			names[d.Name] = struct{}{}
		}
	}
	return names
}

// SortedNames returns the members of a name set in lexical order
func SortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
