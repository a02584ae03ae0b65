package selector

import (
	"fmt"
	"strings"

	"github.com/cerebratechai/skillctl/pkg/skills"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	sectionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	projectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	categoryStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	priorityStyles = map[string]lipgloss.Style{
		"essential": lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"important": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"optional":  lipgloss.NewStyle().Foreground(lipgloss.Color("51")),
	}
)

// Header renders the selector banner
func Header() string {
	rule := strings.Repeat("=", 70)
	return headerStyle.Render(rule) + "\n" +
		headerStyle.Render("  🧠 Cerebrate Chai - Claude Skills Selector") + "\n" +
		headerStyle.Render(rule) + "\n"
}

func section(title string, style lipgloss.Style) string {
	return "\n" + style.Render(title) + "\n" + style.Render(strings.Repeat("─", lipgloss.Width(title))) + "\n"
}

// RenderProject renders the recommended skills of p grouped by priority
func RenderProject(p *ProjectType) string {
	var b strings.Builder
	b.WriteString(projectStyle.Render("Project: "+p.Name) + "\n")
	b.WriteString(p.Description + "\n")

	for _, tier := range p.Tiers() {
		style := priorityStyles[tier.Priority]
		b.WriteString(section(tier.Title, style))
		b.WriteString(tier.Blurb + "\n\n")
		for _, s := range tier.Skills {
			fmt.Fprintf(&b, "  %s %s %s\n", style.Render("•"), DisplayName(s), categoryStyle.Render("["+CategoryOf(s)+"]"))
		}
	}
	return b.String()
}

// RenderProjectTypes renders the numbered project type menu
func RenderProjectTypes(c *Catalogue) string {
	var b strings.Builder
	b.WriteString(section("📋 Select Your Project Type", sectionStyle))
	for _, p := range c.ProjectTypes {
		fmt.Fprintf(&b, "\n%s %s\n   %s\n", categoryStyle.Render(p.Key+"."), projectStyle.Render(p.Name), p.Description)
	}
	return b.String()
}

// RenderCategories renders every skill category
func RenderCategories(c *Catalogue) string {
	var b strings.Builder
	b.WriteString(section("📚 All Skill Categories", sectionStyle))
	for _, cat := range c.Categories {
		fmt.Fprintf(&b, "  %s %s\n", categoryStyle.Render(cat.Code+"."), cat.Name)
	}
	return b.String()
}

// RenderSearch renders the categories and scanned skills matching keyword
func RenderSearch(c *Catalogue, docs []*skills.Document, keyword string) string {
	var b strings.Builder
	b.WriteString(section("🔍 Search Skills by Keyword", sectionStyle))

	cats := c.SearchCategories(keyword)
	matches := SearchSkills(docs, keyword)
	if len(cats) == 0 && len(matches) == 0 {
		fmt.Fprintf(&b, "\nNo matches found for '%s'\n", keyword)
		return b.String()
	}

	if len(cats) > 0 {
		fmt.Fprintf(&b, "\nFound %d matching categories:\n\n", len(cats))
		for _, cat := range cats {
			fmt.Fprintf(&b, "  • %s - %s\n", cat.Code, cat.Name)
		}
	}
	if len(matches) > 0 {
		fmt.Fprintf(&b, "\nFound %d matching skills:\n\n", len(matches))
		for _, d := range matches {
			fmt.Fprintf(&b, "  • %s %s\n", d.Key(), categoryStyle.Render("["+d.RelPath+"]"))
		}
	}
	return b.String()
}
