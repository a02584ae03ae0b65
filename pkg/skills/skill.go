// Package skills models the skill catalogue: markdown SKILL.md documents
// with YAML front matter, grouped into numbered category directories.
// It parses documents into structural summaries, scans a repository for
// them and resolves skills by name or path.
package skills

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// SkillFileName is the file that marks a directory as a skill
const SkillFileName = "SKILL.md"

var categoryPattern = regexp.MustCompile(`^(\d+)-(.+)$`)

// Category is the numbered top-level grouping a skill lives under, e.g. 15-devops-infrastructure
type Category struct {
	Number int    `json:"number"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Dir    string `json:"-"`
}

// Uncategorized is used for skills that do not live under a numbered directory
var Uncategorized = Category{Number: 0, Slug: "uncategorized", Name: "Uncategorized"}

// Key returns the directory name of the category, e.g. 01-foundations
func (c Category) Key() string {
	if c.Dir != "" {
		return c.Dir
	}
	return c.Slug
}

// Section is a markdown heading
type Section struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Line  int    `json:"line"`
}

// CodeBlock is a fenced code block. Line is the 1-based line of the opening fence.
type CodeBlock struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Line     int    `json:"line"`
}

// Document is the parsed summary of a single SKILL.md file
type Document struct {
	Path        string
	RelPath     string
	Name        string // from front matter
	Description string // from front matter
	Title       string
	SkillName   string // parent directory name
	Category    Category

	Sections     []Section
	CodeBlocks   []CodeBlock
	HasChecklist bool
	WordCount    int
	LineCount    int

	Frontmatter      map[string]any
	FrontmatterError string
	Body             string

	// ReadError is set when the file could not be read; no other field but the paths is populated.
	ReadError string
}

// Key returns the name a skill is addressed by: the front matter name, or the directory name.
func (d *Document) Key() string {
	if d.Name != "" {
		return d.Name
	}
	return d.SkillName
}

// HasSection reports whether the document has a heading whose text starts with name
func (d *Document) HasSection(name string) bool {
	for _, s := range d.Sections {
		if strings.HasPrefix(s.Title, name) {
			return true
		}
	}
	return false
}

// HasCodeExamples reports whether the document contains at least one fenced code block
func (d *Document) HasCodeExamples() bool {
	return len(d.CodeBlocks) > 0
}

// Languages returns the distinct code block languages in order of first appearance.
// Blocks without a language are reported as "text".
func (d *Document) Languages() []string {
	seen := map[string]bool{}
	var langs []string
	for _, b := range d.CodeBlocks {
		lang := b.Language
		if lang == "" {
			lang = "text"
		}
		if !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	return langs
}

// CategoryFromPath returns the category of the first path component that looks like NN-slug
func CategoryFromPath(path string) Category {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		m := categoryPattern.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return Category{
			Number: n,
			Slug:   m[2],
			Name:   TitleCase(strings.ReplaceAll(m[2], "-", " ")),
			Dir:    part,
		}
	}
	return Uncategorized
}

// TitleCase upper-cases every letter that follows a non-letter and lower-cases the rest,
// so "ci-cd pipelines" becomes "Ci-Cd Pipelines" and "3d graphics" becomes "3D Graphics".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
