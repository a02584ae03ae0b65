package report

import (
	"sort"
	"time"

	"github.com/cerebratechai/skillctl/pkg/skills"
)

// Analysis is the per-file row of the validation report
type Analysis struct {
	Path            string
	SectionsFound   []string
	SectionsMissing []string
	CodeBlocks      int
	Languages       []string
	HasChecklist    bool
	WordCount       int
	LineCount       int
	Valid           bool
	Error           string
}

// Issues returns the badges shown for the row
func (a Analysis) Issues() []string {
	if a.Error != "" {
		return []string{"Error: " + a.Error}
	}
	var issues []string
	for _, s := range a.SectionsMissing {
		issues = append(issues, "Missing: "+s)
	}
	if !a.HasChecklist {
		issues = append(issues, "No checklist")
	}
	if a.CodeBlocks == 0 {
		issues = append(issues, "No code examples")
	}
	return issues
}

// Analyze checks doc against the required sections. A document is valid when
// every required section is present and it has at least one code block.
func Analyze(doc *skills.Document, required []string) Analysis {
	a := Analysis{Path: doc.RelPath}
	if doc.ReadError != "" {
		a.Error = doc.ReadError
		return a
	}

	for _, s := range required {
		if doc.HasSection(s) {
			a.SectionsFound = append(a.SectionsFound, s)
		} else {
			a.SectionsMissing = append(a.SectionsMissing, s)
		}
	}

	seen := map[string]bool{}
	for _, b := range doc.CodeBlocks {
		if b.Language != "" && !seen[b.Language] {
			seen[b.Language] = true
			a.Languages = append(a.Languages, b.Language)
		}
	}
	sort.Strings(a.Languages)

	a.CodeBlocks = len(doc.CodeBlocks)
	a.HasChecklist = doc.HasChecklist
	a.WordCount = doc.WordCount
	a.LineCount = doc.LineCount
	a.Valid = len(a.SectionsMissing) == 0 && a.CodeBlocks > 0
	return a
}

// AnalyzeAll analyzes docs in order
func AnalyzeAll(docs []*skills.Document, required []string) []Analysis {
	out := make([]Analysis, 0, len(docs))
	for _, d := range docs {
		out = append(out, Analyze(d, required))
	}
	return out
}

// ValidationSummary holds the totals shown at the top of the validation report
type ValidationSummary struct {
	Total      int
	Valid      int
	Invalid    int
	CodeBlocks int
}

// Summarize totals analyses
func Summarize(analyses []Analysis) ValidationSummary {
	s := ValidationSummary{Total: len(analyses)}
	for _, a := range analyses {
		if a.Valid {
			s.Valid++
		}
		s.CodeBlocks += a.CodeBlocks
	}
	s.Invalid = s.Total - s.Valid
	return s
}

type validationData struct {
	ValidationSummary
	Rows      []Analysis
	Generated string
}

// RenderValidation renders the HTML validation report. Invalid rows come
// first; the relative order of rows is otherwise preserved.
func RenderValidation(analyses []Analysis, now time.Time) (string, error) {
	rows := append([]Analysis(nil), analyses...)
	sort.SliceStable(rows, func(i, j int) bool {
		return !rows[i].Valid && rows[j].Valid
	})

	return renderHTML(ValidationTemplate, validationData{
		ValidationSummary: Summarize(analyses),
		Rows:              rows,
		Generated:         now.UTC().Format(TimestampLayout) + " UTC",
	})
}
