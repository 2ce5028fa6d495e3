package command

import (
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/theme"
)

const maxMatches = 8

// JumpMsg is emitted when the user picks a project.
type JumpMsg struct {
	ProjectID string
}

// CancelMsg is emitted when the palette is dismissed.
type CancelMsg struct{}

// Model is the go-to-project palette.
type Model struct {
	input    textinput.Model
	projects []model.Project
	matches  []model.Project
	cursor   int
	width    int
	height   int
}

// New creates a new palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "project name..."
	ti.Prompt = ": "
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Open resets the query and lists ps. The returned command starts the
// cursor blinking.
func (m *Model) Open(ps []model.Project) tea.Cmd {
	m.projects = ps
	m.input.Reset()
	m.refilter()
	return m.input.Focus()
}

// Matches returns the projects matching the current query, best first.
func (m Model) Matches() []model.Project {
	return m.matches
}

// Update handles messages for the palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			if len(m.matches) == 0 {
				return m, nil
			}
			id := m.matches[m.cursor].ID
			m.input.Blur()
			return m, func() tea.Msg { return JumpMsg{ProjectID: id} }
		case "esc":
			m.input.Blur()
			return m, func() tea.Msg { return CancelMsg{} }
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	prev := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != prev {
		m.refilter()
	}
	return m, cmd
}

// refilter ranks prefix matches ahead of substring matches, then by name.
func (m *Model) refilter() {
	q := strings.ToLower(strings.TrimSpace(m.input.Value()))
	type scored struct {
		p    model.Project
		rank int
	}
	var hits []scored
	for _, p := range m.projects {
		name := strings.ToLower(p.Name)
		switch {
		case q == "" || strings.HasPrefix(name, q):
			hits = append(hits, scored{p, 0})
		case strings.Contains(name, q):
			hits = append(hits, scored{p, 1})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		return strings.ToLower(hits[i].p.Name) < strings.ToLower(hits[j].p.Name)
	})

	m.matches = m.matches[:0]
	for _, h := range hits {
		m.matches = append(m.matches, h.p)
	}
	m.cursor = 0
}

// View renders the palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	lines := []string{titleStyle.Render("Go to Project"), m.input.View(), ""}
	if len(m.matches) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ColorGray).Render("no matching project"))
	}
	for i, p := range m.matches {
		if i == maxMatches {
			more := len(m.matches) - maxMatches
			lines = append(lines, lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
				"  +"+strconv.Itoa(more)+" more"))
			break
		}
		if i == m.cursor {
			lines = append(lines, theme.SelectedItemStyle.Render("> "+p.Name))
			continue
		}
		lines = append(lines, theme.SidebarItemStyle.Render("  "+p.Name))
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}
