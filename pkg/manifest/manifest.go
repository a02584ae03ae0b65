// Package manifest builds the JSON inventory of the skill catalogue
// consumed by CI jobs and the README generator.
package manifest

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/cerebratechai/skillctl/pkg/skills"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Entry describes one skill file. Entries for unreadable files carry only Path and Error.
type Entry struct {
	Path             string          `json:"path" jsonschema:"description=Path of the SKILL.md file relative to the repository root"`
	Title            string          `json:"title,omitempty"`
	SkillName        string          `json:"skill_name,omitempty"`
	Category         skills.Category `json:"category"`
	HasOverview      bool            `json:"has_overview"`
	HasBestPractices bool            `json:"has_best_practices"`
	HasCodeExamples  bool            `json:"has_code_examples"`
	WordCount        int             `json:"word_count"`
	Error            string          `json:"error,omitempty" jsonschema:"description=Set when the file could not be read"`
}

type errorEntry struct {
	Error string `json:"error"`
	Path  string `json:"path"`
}

type skillEntry Entry

// MarshalJSON writes the error form for unreadable files and the full form otherwise
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Error != "" {
		return json.Marshal(errorEntry{Error: e.Error, Path: e.Path})
	}
	return json.Marshal(skillEntry(e))
}

// CategoryCount is a category with the number of skills in it
type CategoryCount struct {
	Number     int    `json:"number"`
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	SkillCount int    `json:"skill_count"`
}

// Statistics aggregates the catalogue
type Statistics struct {
	TotalSkills       int `json:"total_skills"`
	TotalCategories   int `json:"total_categories"`
	WithOverview      int `json:"with_overview"`
	WithBestPractices int `json:"with_best_practices"`
	WithCodeExamples  int `json:"with_code_examples"`
}

// Manifest is the full skill inventory
type Manifest struct {
	Skills     []Entry         `json:"skills"`
	Total      int             `json:"total"`
	Categories []CategoryCount `json:"categories"`
	Statistics Statistics      `json:"statistics"`
}

// Build summarises scanned documents. Documents are expected in scan order.
func Build(docs []*skills.Document) *Manifest {
	m := &Manifest{
		Skills:     make([]Entry, 0, len(docs)),
		Categories: []CategoryCount{},
	}

	counts := map[string]*CategoryCount{}
	var order []string

	for _, d := range docs {
		entry := Entry{Path: d.RelPath, Category: d.Category}
		if d.ReadError != "" {
			entry.Error = d.ReadError
		} else {
			entry.Title = d.Title
			entry.SkillName = d.SkillName
			entry.HasOverview = d.HasSection("Overview")
			entry.HasBestPractices = d.HasSection("Best Practices")
			entry.HasCodeExamples = d.HasCodeExamples()
			entry.WordCount = d.WordCount
		}
		m.Skills = append(m.Skills, entry)

		slug := d.Category.Slug
		if _, ok := counts[slug]; !ok {
			counts[slug] = &CategoryCount{Number: d.Category.Number, Slug: slug, Name: d.Category.Name}
			order = append(order, slug)
		}
		counts[slug].SkillCount++

		if entry.HasOverview {
			m.Statistics.WithOverview++
		}
		if entry.HasBestPractices {
			m.Statistics.WithBestPractices++
		}
		if entry.HasCodeExamples {
			m.Statistics.WithCodeExamples++
		}
	}

	for _, slug := range order {
		m.Categories = append(m.Categories, *counts[slug])
	}
	sort.SliceStable(m.Categories, func(i, j int) bool {
		return m.Categories[i].Number < m.Categories[j].Number
	})

	m.Total = len(m.Skills)
	m.Statistics.TotalSkills = m.Total
	m.Statistics.TotalCategories = len(m.Categories)
	return m
}

// JSON renders the manifest indented by two spaces
func (m *Manifest) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode manifest")
	}
	return data, nil
}

// Load reads a manifest previously written by JSON
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest %s", path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse manifest %s", path)
	}
	return &m, nil
}

// Schema returns the JSON schema of the manifest document
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Manifest{})
	schema.Title = "Skill manifest"
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode schema")
	}
	return data, nil
}
