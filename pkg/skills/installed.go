package skills

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/cerebratechai/skillctl/pkg/logger"
)

// LoadOptions controls how a catalogue is assembled
type LoadOptions struct {
	// Excludes are added to DefaultExcludes
	Excludes []string
	// ExtraDirs are installed skill directories merged after the repository skills
	ExtraDirs []string
	// Allowed restricts installed skills to these names when non-empty
	Allowed []string
}

// Load scans root and merges installed skills from opts.ExtraDirs into one catalogue.
// Repository skills win over installed ones with the same name.
func Load(ctx context.Context, root string, opts LoadOptions) (*Catalogue, error) {
	docs, err := NewScanner(WithExcludes(opts.Excludes...)).Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	catalogue := NewCatalogue(root, docs)

	catalogue.Add(Installed(ctx, opts.ExtraDirs, opts.Allowed)...)
	return catalogue, nil
}

// Installed reads <dir>/<skill>/SKILL.md from each dir and returns the skills sorted
// by name. A name found in an earlier dir shadows the same name in later ones.
// Skills without a name or description in their front matter are skipped.
func Installed(ctx context.Context, dirs []string, allowed []string) []*Document {
	byName := map[string]*Document{}
	for _, dir := range dirs {
		dir = expandHome(dir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("dir", dir).Debug("skipping installed skill directory")
			continue
		}
		for _, entry := range entries {
			doc, err := readInstalled(filepath.Join(dir, entry.Name()))
			if err != nil {
				logger.G(ctx).WithError(err).WithField("skill", entry.Name()).Debug("skipping installed skill")
				continue
			}
			if len(allowed) > 0 && !slices.Contains(allowed, doc.Name) {
				continue
			}
			if _, seen := byName[doc.Name]; !seen {
				byName[doc.Name] = doc
			}
		}
	}

	docs := make([]*Document, 0, len(byName))
	for _, doc := range byName {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs
}

func readInstalled(skillDir string) (*Document, error) {
	// Stat rather than the dir entry so symlinked skills are followed
	info, err := os.Stat(skillDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("not a directory")
	}

	path := filepath.Join(skillDir, SkillFileName)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	doc := ParseDocument(path, content)
	switch {
	case doc.Frontmatter == nil:
		return nil, errors.New("missing frontmatter")
	case doc.Name == "":
		return nil, errors.New("skill name is required in frontmatter")
	case doc.Description == "":
		return nil, errors.New("skill description is required in frontmatter")
	}
	return doc, nil
}

func expandHome(dir string) string {
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return dir
	}
	return filepath.Join(home, strings.TrimPrefix(dir, "~"))
}
