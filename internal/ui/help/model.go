package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/boardsync/internal/keys"
	"github.com/nhle/boardsync/internal/theme"
)

var mouseHints = []string{
	"drag a card onto another card or an empty column to move it",
	"drag a column header sideways to reorder columns",
	"drag a project onto a folder or \"Uncategorized\" to file it",
	"drag a folder header to reorder folders",
	"drag the sidebar's right edge to resize it",
	"drag the chat panel's left edge to resize it",
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	m.help.Width = m.width - 4
	m.help.ShowAll = true

	var mouse strings.Builder
	for _, h := range mouseHints {
		mouse.WriteString("  " + h + "\n")
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Keyboard"),
		m.help.View(m.keys),
		"",
		titleStyle.Render("Mouse"),
		theme.HelpStyle.Render(strings.TrimRight(mouse.String(), "\n")),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
