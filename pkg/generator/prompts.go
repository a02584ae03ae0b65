package generator

import (
	"encoding/json"
	"path/filepath"
	"sort"

	"github.com/cerebratechai/skillctl/pkg/fsutil"
	"github.com/pkg/errors"
)

// PromptsFile is the prompts definition relative to the skills root
var PromptsFile = filepath.Join("tools", "prompts.json")

// Priorities accepted by --priority
var Priorities = []string{"low", "medium", "high"}

const defaultPriority = "medium"

// Prompt is one skill to generate
type Prompt struct {
	Batch     string
	Category  string
	SkillName string
	Path      string
	Prompt    string
	Priority  string
}

type promptsDocument struct {
	Batches []struct {
		Batch    string `json:"batch"`
		Category string `json:"category"`
		Skills   []struct {
			Name     string `json:"name"`
			Path     string `json:"path"`
			Prompt   string `json:"prompt"`
			Priority string `json:"priority"`
		} `json:"skills"`
	} `json:"batches"`
}

// LoadPrompts reads every prompt from a prompts.json file in file order
func LoadPrompts(path string) ([]Prompt, error) {
	data, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "prompts file not found: %s", path)
	}
	return ParsePrompts(data)
}

// ParsePrompts decodes the prompts.json layout. Priority defaults to medium.
func ParsePrompts(data []byte) ([]Prompt, error) {
	var doc promptsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse prompts file")
	}

	var prompts []Prompt
	for _, batch := range doc.Batches {
		for _, skill := range batch.Skills {
			priority := skill.Priority
			if priority == "" {
				priority = defaultPriority
			}
			prompts = append(prompts, Prompt{
				Batch:     batch.Batch,
				Category:  batch.Category,
				SkillName: skill.Name,
				Path:      skill.Path,
				Prompt:    skill.Prompt,
				Priority:  priority,
			})
		}
	}
	return prompts, nil
}

// Batches returns the distinct batch identifiers in lexicographic order
func Batches(prompts []Prompt) []string {
	seen := make(map[string]bool)
	var batches []string
	for _, p := range prompts {
		if !seen[p.Batch] {
			seen[p.Batch] = true
			batches = append(batches, p.Batch)
		}
	}
	sort.Strings(batches)
	return batches
}

// BatchRange keeps the batches between start and end inclusive, compared
// lexicographically. Empty bounds are open.
func BatchRange(batches []string, start, end string) []string {
	var out []string
	for _, b := range batches {
		if start != "" && b < start {
			continue
		}
		if end != "" && b > end {
			continue
		}
		out = append(out, b)
	}
	return out
}

func filter(prompts []Prompt, keep func(Prompt) bool) []Prompt {
	var out []Prompt
	for _, p := range prompts {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
