package skills

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Catalogue is an in-memory view over the skills of a repository
type Catalogue struct {
	root   string
	docs   []*Document
	byName map[string]*Document
}

// NewCatalogue indexes docs by front matter name and directory name.
// When two documents share a name the first one wins.
func NewCatalogue(root string, docs []*Document) *Catalogue {
	c := &Catalogue{
		root:   root,
		byName: make(map[string]*Document, len(docs)),
	}
	c.Add(docs...)
	return c
}

// Add appends documents whose names are not already taken
func (c *Catalogue) Add(docs ...*Document) {
	for _, d := range docs {
		if d == nil {
			continue
		}
		key := d.Key()
		if _, exists := c.byName[key]; exists {
			continue
		}
		c.docs = append(c.docs, d)
		c.byName[key] = d
		if d.SkillName != "" && d.SkillName != key {
			if _, exists := c.byName[d.SkillName]; !exists {
				c.byName[d.SkillName] = d
			}
		}
	}
}

// Root returns the directory the catalogue was loaded from
func (c *Catalogue) Root() string {
	return c.root
}

// Documents returns all documents in catalogue order
func (c *Catalogue) Documents() []*Document {
	return c.docs
}

// Len returns the number of documents
func (c *Catalogue) Len() int {
	return len(c.docs)
}

// Names returns the sorted skill keys
func (c *Catalogue) Names() []string {
	names := make([]string, 0, len(c.docs))
	for _, d := range c.docs {
		names = append(names, d.Key())
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a catalogued skill by name, or by its path relative to the
// catalogue root such as "15-devops-infrastructure/docker-patterns" or
// ".../docker-patterns/SKILL.md". Anything that is not a catalogued SKILL.md
// is reported as not found.
func (c *Catalogue) Lookup(ref string) (*Document, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("skill reference is empty")
	}
	if d, ok := c.byName[ref]; ok {
		return d, nil
	}

	dir := path.Clean(filepath.ToSlash(ref))
	if path.Base(dir) == SkillFileName {
		dir = path.Dir(dir)
	}
	for _, d := range c.docs {
		if d.RelPath != "" && path.Dir(filepath.ToSlash(d.RelPath)) == dir {
			return d, nil
		}
	}
	return nil, errors.Errorf("skill '%s' not found", ref)
}

// Search returns documents whose name, title, description or category
// contains keyword, case-insensitively
func (c *Catalogue) Search(keyword string) []*Document {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return nil
	}

	var matches []*Document
	for _, d := range c.docs {
		fields := []string{d.Key(), d.SkillName, d.Title, d.Description, d.Category.Name, d.Category.Slug}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), kw) {
				matches = append(matches, d)
				break
			}
		}
	}
	return matches
}
