// Package validate checks skill documents against the catalogue's structural rules.
package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/cerebratechai/skillctl/pkg/skills"
	"github.com/cerebratechai/skillctl/pkg/telemetry"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// Rule names a single structural check
type Rule string

const (
	RuleSections    Rule = "sections"
	RuleCode        Rule = "code"
	RuleChecklist   Rule = "checklist"
	RuleFrontmatter Rule = "frontmatter"
)

// Mode selects a predefined rule set
type Mode string

const (
	// ModeStructure runs every rule
	ModeStructure Mode = "structure"
	// ModeSections only checks required sections
	ModeSections Mode = "sections"
)

// Rules returns the rules a mode runs
func (m Mode) Rules() ([]Rule, error) {
	switch m {
	case ModeStructure, "":
		return []Rule{RuleSections, RuleCode, RuleChecklist, RuleFrontmatter}, nil
	case ModeSections:
		return []Rule{RuleSections}, nil
	default:
		return nil, errors.Errorf("unknown validation mode %q (expected structure or sections)", string(m))
	}
}

// Config holds the section names checked by the sections rule
type Config struct {
	RequiredSections []string `mapstructure:"required_sections"`
	OptionalSections []string `mapstructure:"optional_sections"`
}

// DefaultConfig returns the catalogue's standard section requirements
func DefaultConfig() Config {
	return Config{
		RequiredSections: []string{"Overview", "Best Practices"},
		OptionalSections: []string{"Code Examples", "Common Patterns", "Troubleshooting", "References"},
	}
}

// Issue is one failed check
type Issue struct {
	Rule    Rule
	Message string
}

// Result is the outcome of validating one document
type Result struct {
	Path            string
	Issues          []Issue
	MissingOptional []string
}

// OK reports whether the document passed every rule
func (r Result) OK() bool {
	return len(r.Issues) == 0
}

// Err aggregates the issues into a single error, nil when the document passed
func (r Result) Err() error {
	var merr *multierror.Error
	for _, issue := range r.Issues {
		merr = multierror.Append(merr, errors.New(issue.Message))
	}
	if merr == nil {
		return nil
	}
	merr.ErrorFormat = func(errs []error) string {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Sprintf("%s: %s", r.Path, strings.Join(msgs, "; "))
	}
	return merr.ErrorOrNil()
}

// Validator applies a set of rules
type Validator struct {
	cfg   Config
	rules []Rule
}

// New creates a validator for mode. Empty section lists in cfg fall back to the defaults.
func New(mode Mode, cfg Config) (*Validator, error) {
	rules, err := mode.Rules()
	if err != nil {
		return nil, err
	}
	def := DefaultConfig()
	if len(cfg.RequiredSections) == 0 {
		cfg.RequiredSections = def.RequiredSections
	}
	if len(cfg.OptionalSections) == 0 {
		cfg.OptionalSections = def.OptionalSections
	}
	return &Validator{cfg: cfg, rules: rules}, nil
}

// Validate checks a single document
func (v *Validator) Validate(doc *skills.Document) Result {
	res := Result{Path: doc.RelPath}
	if doc.ReadError != "" {
		res.Issues = append(res.Issues, Issue{Rule: "read", Message: "Could not read file: " + doc.ReadError})
		return res
	}

	for _, rule := range v.rules {
		switch rule {
		case RuleSections:
			for _, section := range v.cfg.RequiredSections {
				if !doc.HasSection(section) {
					res.Issues = append(res.Issues, Issue{Rule: rule, Message: fmt.Sprintf("Missing required section '%s'", section)})
				}
			}
		case RuleCode:
			if !doc.HasCodeExamples() {
				res.Issues = append(res.Issues, Issue{Rule: rule, Message: "No code examples found"})
			}
		case RuleChecklist:
			if !doc.HasChecklist {
				res.Issues = append(res.Issues, Issue{Rule: rule, Message: "No checklist found"})
			}
		case RuleFrontmatter:
			if doc.FrontmatterError != "" {
				res.Issues = append(res.Issues, Issue{Rule: rule, Message: "Invalid front matter: " + doc.FrontmatterError})
				continue
			}
			for _, field := range []string{"name", "description"} {
				if s, _ := doc.Frontmatter[field].(string); strings.TrimSpace(s) == "" {
					res.Issues = append(res.Issues, Issue{Rule: rule, Message: fmt.Sprintf("Missing front matter field '%s'", field)})
				}
			}
		}
	}

	for _, section := range v.cfg.OptionalSections {
		if !doc.HasSection(section) {
			res.MissingOptional = append(res.MissingOptional, section)
		}
	}

	return res
}

// ValidateAll checks docs in order
func (v *Validator) ValidateAll(ctx context.Context, docs []*skills.Document) []Result {
	_, span := telemetry.Tracer("skillctl.validate").Start(ctx, "validate.All")
	defer span.End()

	results := make([]Result, 0, len(docs))
	failed := 0
	for _, doc := range docs {
		res := v.Validate(doc)
		if !res.OK() {
			failed++
		}
		results = append(results, res)
	}

	span.SetAttributes(attribute.Int("validate.files", len(docs)), attribute.Int("validate.failed", failed))
	return results
}

// Failed returns the results that have issues
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Errors combines the errors of every failed result, one line per file.
// It returns nil when all results passed.
func Errors(results []Result) error {
	var merr *multierror.Error
	for _, r := range results {
		merr = multierror.Append(merr, r.Err())
	}
	if merr == nil {
		return nil
	}
	merr.ErrorFormat = func(errs []error) string {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return strings.Join(lines, "\n")
	}
	return merr.ErrorOrNil()
}
