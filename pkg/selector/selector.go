// Package selector recommends skills for a project type and turns a
// selection into a skill list file or a ready-to-paste assistant prompt.
package selector

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cerebratechai/skillctl/pkg/fsutil"
	"github.com/cerebratechai/skillctl/pkg/skills"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

// PromptFileName is where a generated prompt is saved
const PromptFileName = "claude_prompt.txt"

// ProjectType is a kind of project with its recommended skills by priority.
// Skills are category/skill paths such as 15-devops-infrastructure/docker-patterns.
type ProjectType struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Essential   []string `yaml:"essential"`
	Important   []string `yaml:"important"`
	Optional    []string `yaml:"optional"`
}

// Category is a numbered skill category
type Category struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Catalogue is the set of project types and categories offered to the user
type Catalogue struct {
	ProjectTypes []ProjectType `yaml:"project_types"`
	Categories   []Category    `yaml:"categories"`
}

// Default returns the built-in catalogue
func Default() (*Catalogue, error) {
	return Parse(defaultCatalogue)
}

// Load reads a catalogue file, falling back to the built-in one when path is empty
func Load(path string) (*Catalogue, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read selector catalogue %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML catalogue
func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "invalid selector catalogue")
	}
	if len(c.ProjectTypes) == 0 {
		return nil, errors.New("selector catalogue has no project types")
	}
	return &c, nil
}

// Recommend returns the project type with the given key
func (c *Catalogue) Recommend(key string) (*ProjectType, error) {
	key = strings.TrimSpace(key)
	for i := range c.ProjectTypes {
		if c.ProjectTypes[i].Key == key {
			return &c.ProjectTypes[i], nil
		}
	}
	return nil, errors.Errorf("invalid choice %q, please enter a number between 1-%d", key, len(c.ProjectTypes))
}

// SearchCategories returns categories whose name contains keyword, case-insensitively
func (c *Catalogue) SearchCategories(keyword string) []Category {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	var matches []Category
	for _, cat := range c.Categories {
		if strings.Contains(strings.ToLower(cat.Name), kw) {
			matches = append(matches, cat)
		}
	}
	return matches
}

// SearchSkills returns the scanned skills matching keyword
func SearchSkills(docs []*skills.Document, keyword string) []*skills.Document {
	return skills.NewCatalogue("", docs).Search(keyword)
}

// DisplayName turns 15-devops-infrastructure/docker-patterns into "Docker Patterns"
func DisplayName(skillPath string) string {
	name := skillPath
	if i := strings.LastIndex(skillPath, "/"); i >= 0 {
		name = skillPath[i+1:]
	}
	return skills.TitleCase(strings.ReplaceAll(name, "-", " "))
}

// CategoryOf returns the category directory of a skill path
func CategoryOf(skillPath string) string {
	category, _, _ := strings.Cut(skillPath, "/")
	return category
}

// Tier is one priority group of recommended skills
type Tier struct {
	Priority string
	Title    string
	Blurb    string
	Skills   []string
}

// Tiers returns the non-empty priority groups of p in display order
func (p *ProjectType) Tiers() []Tier {
	all := []Tier{
		{"essential", "🔥 Essential Skills (Start Here)", "These skills are critical for your project:", p.Essential},
		{"important", "⚡ Important Skills (High Priority)", "These skills will significantly improve your project:", p.Important},
		{"optional", "💡 Optional Skills (Nice to Have)", "Consider these based on specific requirements:", p.Optional},
	}
	var tiers []Tier
	for _, t := range all {
		if len(t.Skills) > 0 {
			tiers = append(tiers, t)
		}
	}
	return tiers
}

var fileNameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// SkillListFileName is the flat file name a skill list for p is saved to
func (p *ProjectType) SkillListFileName() string {
	return "skills_" + fileNameReplacer.Replace(strings.ToLower(p.Name)) + ".txt"
}

// SkillList renders the skill list file content
func (p *ProjectType) SkillList() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Skills for %s\n", p.Name)
	fmt.Fprintf(&b, "# %s\n\n", p.Description)

	groups := []struct {
		title  string
		skills []string
	}{
		{"Essential Skills", p.Essential},
		{"Important Skills", p.Important},
		{"Optional Skills", p.Optional},
	}
	for i, g := range groups {
		if len(g.skills) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", g.title)
		for _, s := range g.skills {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		if i < len(groups)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// WriteSkillList saves the skill list into dir and returns its path
func (p *ProjectType) WriteSkillList(dir string) (string, error) {
	path := filepath.Join(dir, p.SkillListFileName())
	if err := fsutil.WriteFile(path, []byte(p.SkillList()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Prompt renders an assistant prompt asking for an implementation that
// follows the essential and important skills
func (p *ProjectType) Prompt() string {
	var list []string
	for _, s := range append(append([]string{}, p.Essential...), p.Important...) {
		list = append(list, "- "+s)
	}

	return fmt.Sprintf(`I'm building a %s (%s).

Please help me implement this following these skills:

%s

Requirements:
1. Follow all best practices from these skills
2. Include proper error handling
3. Add security considerations
4. Ensure production-ready code
5. Include testing strategies

Let's start with [describe what you want to build].
`, p.Name, p.Description, strings.Join(list, "\n"))
}

// WritePrompt saves the prompt into dir and returns its path
func (p *ProjectType) WritePrompt(dir string) (string, error) {
	path := filepath.Join(dir, PromptFileName)
	if err := fsutil.WriteFile(path, []byte(p.Prompt()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
