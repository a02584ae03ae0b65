package report

import (
	"sort"
	"strings"
	"time"

	"github.com/cerebratechai/skillctl/pkg/skills"
)

// CategoryStat is one row of the "Skills by Category" table
type CategoryStat struct {
	Dir   string
	Name  string
	Count int
}

// Stats are the repository statistics
type Stats struct {
	TotalSkills  int
	TotalLines   int
	CodeExamples int
	Categories   []CategoryStat
	Generated    string
}

// ComputeStats gathers statistics over docs. Skills are grouped by their
// top-level directory; files directly under the root are not grouped.
func ComputeStats(docs []*skills.Document, now time.Time) Stats {
	st := Stats{
		TotalSkills: len(docs),
		Generated:   now.Format(TimestampLayout),
	}

	counts := map[string]int{}
	for _, d := range docs {
		st.TotalLines += d.LineCount
		st.CodeExamples += len(d.CodeBlocks)
		parts := strings.Split(d.RelPath, "/")
		if len(parts) >= 2 {
			counts[parts[0]]++
		}
	}

	for dir, n := range counts {
		st.Categories = append(st.Categories, CategoryStat{Dir: dir, Name: categoryName(dir), Count: n})
	}
	sort.Slice(st.Categories, func(i, j int) bool {
		return st.Categories[i].Dir < st.Categories[j].Dir
	})

	return st
}

// categoryName turns "15-devops-infrastructure" into "Devops Infrastructure"
func categoryName(dir string) string {
	name := dir
	if _, rest, ok := strings.Cut(dir, "-"); ok {
		name = rest
	}
	return skills.TitleCase(strings.ReplaceAll(name, "-", " "))
}

// RenderStats renders the statistics as markdown
func RenderStats(st Stats) (string, error) {
	return renderText(StatsTemplate, st)
}
