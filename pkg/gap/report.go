package gap

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cerebratechai/skillctl/pkg/fsutil"
)

// ReportFileName is written into the analysed directory
const ReportFileName = "GAP_REPORT.md"

// RenderReport renders the gap report markdown
func RenderReport(r *Result, now time.Time) string {
	var b strings.Builder

	b.WriteString("# Skill Gap Analysis Report\n\n")
	fmt.Fprintf(&b, "**Target:** `%s`\n", r.Target)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", now.Format("2006-01-02 15:04:05"))

	b.WriteString("## 🔴 Potential Skill Gaps\n")
	b.WriteString("The following libraries/technologies were found but may lack comprehensive documentation/skills:\n\n")
	if len(r.Gaps) > 0 {
		b.WriteString("| Library | Issue/Gap |\n")
		b.WriteString("|---|---|\n")
		for _, g := range r.Gaps {
			fmt.Fprintf(&b, "| `%s` | %s |\n", g.Library, g.Detail)
		}
	} else {
		b.WriteString("✅ No obvious gaps detected.\n")
	}

	b.WriteString("\n## 🟢 Covered Skills\n")
	b.WriteString("The following technologies are supported by existing skills:\n\n")
	if len(r.Covered) > 0 {
		b.WriteString("| Library | Matched Skill |\n")
		b.WriteString("|---|---|\n")
		for _, c := range r.Covered {
			fmt.Fprintf(&b, "| `%s` | `[%s]` |\n", c.Library, c.Detail)
		}
	} else {
		b.WriteString("No dependencies found matching known skills.\n")
	}

	b.WriteString("\n---\n*Run verify logic regularly to keep this up to date.*")
	return b.String()
}

// WriteReport writes GAP_REPORT.md into the result's target and returns its path
func WriteReport(r *Result, now time.Time) (string, error) {
	path := filepath.Join(r.Target, ReportFileName)
	if err := fsutil.WriteFile(path, []byte(RenderReport(r, now)), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
