package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"

	"github.com/cerebratechai/skillctl/pkg/fsutil"
	"github.com/cerebratechai/skillctl/pkg/selector"
	"github.com/cerebratechai/skillctl/pkg/skills"
	"github.com/cerebratechai/skillctl/pkg/validate"
)

// SkillSummary describes a skill without its content
type SkillSummary struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

// ListSkillsInput is the input of list_skills
type ListSkillsInput struct {
	Category string `json:"category,omitempty" jsonschema:"only list skills whose category directory or name contains this text, e.g. 15-devops or DevOps"`
}

// SkillsOutput is a list of skills
type SkillsOutput struct {
	Skills []SkillSummary `json:"skills"`
	Total  int            `json:"total"`
}

// GetSkillInput is the input of get_skill and validate_skill
type GetSkillInput struct {
	Name string `json:"name" jsonschema:"skill name such as docker-patterns, or a category/skill path such as 15-devops-infrastructure/docker-patterns"`
}

// GetSkillOutput is a skill with its full markdown content
type GetSkillOutput struct {
	Skill   SkillSummary `json:"skill"`
	Content string       `json:"content"`
}

// SearchSkillsInput is the input of search_skills
type SearchSkillsInput struct {
	Query string `json:"query" jsonschema:"case-insensitive keyword matched against skill names, titles, descriptions and categories"`
}

// RecommendSkillsInput is the input of recommend_skills
type RecommendSkillsInput struct {
	ProjectType string `json:"project_type" jsonschema:"project type number, 1 to 10, as listed in the tool description"`
}

// RecommendSkillsOutput lists recommended skill paths by priority
type RecommendSkillsOutput struct {
	ProjectType string   `json:"project_type"`
	Description string   `json:"description"`
	Essential   []string `json:"essential"`
	Important   []string `json:"important"`
	Optional    []string `json:"optional"`
	Prompt      string   `json:"prompt"`
}

// ValidateSkillOutput is the structural validation result of one skill
type ValidateSkillOutput struct {
	Path            string   `json:"path"`
	Valid           bool     `json:"valid"`
	Issues          []string `json:"issues"`
	MissingOptional []string `json:"missing_optional,omitempty"`
	// Error joins the issues into one message, empty when the skill is valid
	Error string `json:"error,omitempty"`
}

// Service implements the skill tools on top of a loaded catalogue
type Service struct {
	catalogue *skills.Catalogue
	selector  *selector.Catalogue
	validator *validate.Validator
}

// NewService creates a Service
func NewService(catalogue *skills.Catalogue, sel *selector.Catalogue, validator *validate.Validator) *Service {
	return &Service{catalogue: catalogue, selector: sel, validator: validator}
}

func summarize(doc *skills.Document) SkillSummary {
	return SkillSummary{
		Name:        doc.Key(),
		Path:        doc.RelPath,
		Title:       doc.Title,
		Description: doc.Description,
		Category:    doc.Category.Key(),
	}
}

func summarizeAll(docs []*skills.Document) SkillsOutput {
	out := SkillsOutput{Skills: make([]SkillSummary, 0, len(docs))}
	for _, doc := range docs {
		out.Skills = append(out.Skills, summarize(doc))
	}
	out.Total = len(out.Skills)
	return out
}

// ListSkills lists every skill, optionally filtered by category
func (s *Service) ListSkills(_ context.Context, _ *mcp.CallToolRequest, in ListSkillsInput) (*mcp.CallToolResult, SkillsOutput, error) {
	filter := strings.ToLower(strings.TrimSpace(in.Category))

	var docs []*skills.Document
	for _, doc := range s.catalogue.Documents() {
		if doc.ReadError != "" {
			continue
		}
		if filter != "" &&
			!strings.Contains(strings.ToLower(doc.Category.Key()), filter) &&
			!strings.Contains(strings.ToLower(doc.Category.Name), filter) {
			continue
		}
		docs = append(docs, doc)
	}
	return nil, summarizeAll(docs), nil
}

// GetSkill returns a skill and its markdown content
func (s *Service) GetSkill(_ context.Context, _ *mcp.CallToolRequest, in GetSkillInput) (*mcp.CallToolResult, GetSkillOutput, error) {
	doc, err := s.catalogue.Lookup(in.Name)
	if err != nil {
		return nil, GetSkillOutput{}, err
	}
	content, err := fsutil.ReadFile(doc.Path)
	if err != nil {
		return nil, GetSkillOutput{}, errors.Wrapf(err, "failed to read skill '%s'", in.Name)
	}

	out := GetSkillOutput{Skill: summarize(doc), Content: string(content)}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: out.Content}},
	}, out, nil
}

// SearchSkills finds skills by keyword
func (s *Service) SearchSkills(_ context.Context, _ *mcp.CallToolRequest, in SearchSkillsInput) (*mcp.CallToolResult, SkillsOutput, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, SkillsOutput{}, errors.New("query is required")
	}
	return nil, summarizeAll(s.catalogue.Search(in.Query)), nil
}

// RecommendSkills returns the skills recommended for a project type
func (s *Service) RecommendSkills(_ context.Context, _ *mcp.CallToolRequest, in RecommendSkillsInput) (*mcp.CallToolResult, RecommendSkillsOutput, error) {
	project, err := s.selector.Recommend(in.ProjectType)
	if err != nil {
		return nil, RecommendSkillsOutput{}, err
	}
	return nil, RecommendSkillsOutput{
		ProjectType: project.Name,
		Description: project.Description,
		Essential:   nonNil(project.Essential),
		Important:   nonNil(project.Important),
		Optional:    nonNil(project.Optional),
		Prompt:      project.Prompt(),
	}, nil
}

// ValidateSkill runs the structural rules against one skill
func (s *Service) ValidateSkill(_ context.Context, _ *mcp.CallToolRequest, in GetSkillInput) (*mcp.CallToolResult, ValidateSkillOutput, error) {
	doc, err := s.catalogue.Lookup(in.Name)
	if err != nil {
		return nil, ValidateSkillOutput{}, err
	}

	res := s.validator.Validate(doc)
	out := ValidateSkillOutput{
		Path:            res.Path,
		Valid:           res.OK(),
		Issues:          []string{},
		MissingOptional: res.MissingOptional,
	}
	for _, issue := range res.Issues {
		out.Issues = append(out.Issues, issue.Message)
	}
	if err := res.Err(); err != nil {
		out.Error = err.Error()
	}
	return nil, out, nil
}

// projectTypesHelp lists the project type numbers for the recommend_skills description
func (s *Service) projectTypesHelp() string {
	var b strings.Builder
	for _, p := range s.selector.ProjectTypes {
		b.WriteString("\n")
		b.WriteString(p.Key)
		b.WriteString(". ")
		b.WriteString(p.Name)
	}
	return b.String()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
