package selector

import (
	"context"
	"fmt"

	"github.com/cerebratechai/skillctl/pkg/skills"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

type view int

const (
	viewMenu view = iota
	viewProjects
	viewProject
	viewText
	viewSearch
)

const (
	actionProject    = "project"
	actionCategories = "categories"
	actionSearch     = "search"
	actionPrompt     = "prompt"
	actionExit       = "exit"
)

type item struct {
	key   string
	title string
	desc  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

// Model is the interactive selector
type Model struct {
	catalogue *Catalogue
	docs      []*skills.Document
	outDir    string

	view       view
	menu       list.Model
	projects   list.Model
	input      textinput.Model
	viewport   viewport.Model
	project    *ProjectType
	promptOnly bool
	status     string
	err        error
}

// NewModel creates the selector model. Files are saved to outDir and
// keyword searches also match the scanned docs.
func NewModel(c *Catalogue, docs []*skills.Document, outDir string) Model {
	menu := newList("🎯 Main Menu", []list.Item{
		item{actionProject, "Select project type (recommended)", "Recommended skills for your kind of project"},
		item{actionCategories, "Browse all skill categories", "Every numbered category in the catalogue"},
		item{actionSearch, "Search skills by keyword", "Match categories and skills, e.g. docker, auth, payment"},
		item{actionPrompt, "Generate Claude prompt", "Build a prompt from a project type's skills"},
		item{actionExit, "Exit", ""},
	})

	var projectItems []list.Item
	for _, p := range c.ProjectTypes {
		projectItems = append(projectItems, item{p.Key, p.Key + ". " + p.Name, p.Description})
	}
	projects := newList("📋 Select Your Project Type", projectItems)

	input := textinput.New()
	input.Placeholder = "docker, auth, payment..."
	input.Prompt = "Enter keyword: "

	return Model{
		catalogue: c,
		docs:      docs,
		outDir:    outDir,
		menu:      menu,
		projects:  projects,
		input:     input,
		viewport:  viewport.New(80, 20),
	}
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 80, 20)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.menu.SetSize(msg.Width, msg.Height-2)
		m.projects.SetSize(msg.Width, msg.Height-2)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 2
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.view {
	case viewMenu:
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "enter":
			return m.runAction(selectedKey(m.menu))
		}
		m.menu, cmd = m.menu.Update(msg)

	case viewProjects:
		switch msg.String() {
		case "esc":
			m.view = viewMenu
			return m, nil
		case "enter":
			p, err := m.catalogue.Recommend(selectedKey(m.projects))
			if err != nil {
				m.err = err
				return m, nil
			}
			m.project = p
			if m.promptOnly {
				return m.showPrompt(), nil
			}
			m.status = ""
			m.view = viewProject
			m.setText(RenderProject(p))
			return m, nil
		}
		m.projects, cmd = m.projects.Update(msg)

	case viewProject:
		switch msg.String() {
		case "esc", "q":
			m.view = viewProjects
			return m, nil
		case "s":
			path, err := m.project.WriteSkillList(m.outDir)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.status = "✓ Skill list saved to: " + path
			return m, nil
		case "p":
			return m.showPrompt(), nil
		}
		m.viewport, cmd = m.viewport.Update(msg)

	case viewText:
		switch msg.String() {
		case "esc", "q", "enter":
			m.view = viewMenu
			return m, nil
		}
		m.viewport, cmd = m.viewport.Update(msg)

	case viewSearch:
		switch msg.String() {
		case "esc":
			m.input.Blur()
			m.view = viewMenu
			return m, nil
		case "enter":
			m.input.Blur()
			m.view = viewText
			m.setText(RenderSearch(m.catalogue, m.docs, m.input.Value()))
			return m, nil
		}
		m.input, cmd = m.input.Update(msg)
	}

	return m, cmd
}

func (m Model) runAction(action string) (tea.Model, tea.Cmd) {
	m.err = nil
	m.status = ""
	switch action {
	case actionProject, actionPrompt:
		m.promptOnly = action == actionPrompt
		m.view = viewProjects
	case actionCategories:
		m.view = viewText
		m.setText(RenderCategories(m.catalogue))
	case actionSearch:
		m.view = viewSearch
		m.input.SetValue("")
		return m, m.input.Focus()
	case actionExit:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) showPrompt() Model {
	path, err := m.project.WritePrompt(m.outDir)
	if err != nil {
		m.err = err
		return m
	}
	m.view = viewText
	m.setText(section("🤖 Generated Claude Prompt", sectionStyle) + "\n" + m.project.Prompt() +
		"\n" + statusStyle.Render("✓ Prompt saved to: "+path) + "\n")
	return m
}

func (m *Model) setText(content string) {
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func selectedKey(l list.Model) string {
	if it, ok := l.SelectedItem().(item); ok {
		return it.key
	}
	return ""
}

// View implements tea.Model
func (m Model) View() string {
	var body, help string
	switch m.view {
	case viewMenu:
		body = Header() + m.menu.View()
		help = "enter: select • q: quit"
	case viewProjects:
		body = m.projects.View()
		help = "enter: select • esc: back"
	case viewProject:
		body = m.viewport.View()
		help = "s: save skill list • p: generate prompt • esc: back"
	case viewText:
		body = m.viewport.View()
		help = "enter/esc: back to menu"
	case viewSearch:
		body = section("🔍 Search Skills by Keyword", sectionStyle) + "\n" + m.input.View()
		help = "enter: search • esc: back"
	}

	footer := helpStyle.Render(help)
	if m.status != "" {
		footer = statusStyle.Render(m.status) + "\n" + footer
	}
	if m.err != nil {
		footer = fmt.Sprintf("Error: %v\n%s", m.err, footer)
	}
	return body + "\n" + footer
}

// Run starts the interactive selector and blocks until the user exits
func Run(ctx context.Context, c *Catalogue, docs []*skills.Document, outDir string) error {
	p := tea.NewProgram(NewModel(c, docs, outDir), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "selector exited with error")
	}
	return nil
}
