package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/boardsync/internal/keys"
	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/theme"
)

// BackMsg signals the parent to navigate back to the board.
type BackMsg struct{}

// Action is something the user asked to do with the shown task.
type Action int

const (
	ActionComment Action = iota + 1
	ActionAddSubtask
	ActionToggleSubtask
	ActionDeleteSubtask
	ActionDeleteAttachment
)

// ActionMsg asks the parent to run an action on the current task.
// SubtaskID is set for subtask actions, AttachmentID for attachment ones.
type ActionMsg struct {
	Action       Action
	ProjectID    string
	TaskID       string
	SubtaskID    string
	AttachmentID string
	Completed    bool
}

// Model is the task detail view component.
type Model struct {
	task      model.Task
	projectID string
	column    string
	open      bool
	cursor    int
	viewport  viewport.Model
	keys      *keys.KeyMap
	width     int
	height    int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Show displays t, held in column of project projectID.
func (m *Model) Show(projectID, column string, t model.Task) {
	reopen := !m.open || m.task.ID != t.ID
	m.projectID, m.column, m.task, m.open = projectID, column, t, true
	if m.cursor >= m.rows() {
		m.cursor = m.rows() - 1
	}
	if reopen {
		m.cursor = 0
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.viewport.SetContent(m.renderContent())
	if reopen {
		m.viewport.GotoTop()
	}
}

// Close hides the task.
func (m *Model) Close() {
	m.open = false
	m.task = model.Task{}
}

// Task returns the shown task and its project, if any.
func (m Model) Task() (projectID string, t model.Task, ok bool) {
	return m.projectID, m.task, m.open
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && m.open {
		switch {
		case key.Matches(kmsg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(kmsg, m.keys.Comment):
			return m, m.action(ActionComment, "", false)

		case key.Matches(kmsg, m.keys.AddSubtask):
			return m, m.action(ActionAddSubtask, "", false)

		case key.Matches(kmsg, m.keys.ToggleSubtask):
			if s, ok := m.selected(); ok {
				return m, m.action(ActionToggleSubtask, s.ID, !s.Completed)
			}
			return m, nil

		case key.Matches(kmsg, m.keys.DeleteSubtask):
			if s, ok := m.selected(); ok {
				return m, m.action(ActionDeleteSubtask, s.ID, false)
			}
			if a, ok := m.selectedAttachment(); ok {
				out := ActionMsg{
					Action:       ActionDeleteAttachment,
					ProjectID:    m.projectID,
					TaskID:       m.task.ID,
					AttachmentID: a.ID,
				}
				return m, func() tea.Msg { return out }
			}
			return m, nil

		case key.Matches(kmsg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.viewport.SetContent(m.renderContent())
			}
			return m, nil

		case key.Matches(kmsg, m.keys.Down):
			if m.cursor < m.rows()-1 {
				m.cursor++
				m.viewport.SetContent(m.renderContent())
			}
			return m, nil
		}
	}

	// pgup/pgdn and the mouse wheel scroll the viewport.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// rows counts the selectable lines: subtasks, then attachments.
func (m Model) rows() int {
	return len(m.task.Subtasks) + len(m.task.Attachments)
}

func (m Model) selectedAttachment() (model.Attachment, bool) {
	i := m.cursor - len(m.task.Subtasks)
	if i < 0 || i >= len(m.task.Attachments) {
		return model.Attachment{}, false
	}
	return m.task.Attachments[i], true
}

func (m Model) selected() (model.Subtask, bool) {
	if m.cursor < 0 || m.cursor >= len(m.task.Subtasks) {
		return model.Subtask{}, false
	}
	return m.task.Subtasks[m.cursor], true
}

func (m Model) action(a Action, subtaskID string, completed bool) tea.Cmd {
	out := ActionMsg{
		Action:    a,
		ProjectID: m.projectID,
		TaskID:    m.task.ID,
		SubtaskID: subtaskID,
		Completed: completed,
	}
	return func() tea.Msg { return out }
}

// View renders the detail view.
func (m Model) View() string {
	if !m.open {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No task selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	task := m.task
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := task.Title
	if task.Completed {
		title = "✓ " + title
	}
	sections = append(sections, titleStyle.Render(title))

	priority := task.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.ColumnTitleStyle.Render(m.column), "  ",
		theme.PriorityStyle(priority).Render("● "+priority),
	)
	sections = append(sections, badgeLine, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	meta := func(label, value string) {
		sections = append(sections, fmt.Sprintf("%s %s", metaStyle.Render(fmt.Sprintf("%-10s", label+":")), valStyle.Render(value)))
	}

	if len(task.Assignees) > 0 {
		names := make([]string, len(task.Assignees))
		for i, u := range task.Assignees {
			names[i] = u.Name
		}
		meta("Assignees", strings.Join(names, ", "))
	}
	if task.DueDate != nil {
		meta("Due", task.DueDate.Format("2006-01-02"))
	}
	if len(task.Tags) > 0 {
		meta("Tags", strings.Join(task.Tags, ", "))
	}
	if !task.CreatedAt.IsZero() {
		meta("Created", task.CreatedAt.Format("2006-01-02 15:04"))
	}
	if !task.UpdatedAt.IsZero() {
		meta("Updated", task.UpdatedAt.Format("2006-01-02 15:04"))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	dimStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)

	sections = append(sections, "", separator, "", headerStyle.Render("Description"))
	if task.Description == "" {
		sections = append(sections, dimStyle.Render("No description"))
	} else {
		sections = append(sections, renderMarkdown(task.Description, min(m.width-4, 80)))
	}

	sections = append(sections, "", separator, "")
	done := 0
	for _, s := range task.Subtasks {
		if s.Completed {
			done++
		}
	}
	sections = append(sections, headerStyle.Render(fmt.Sprintf("Subtasks (%d/%d)", done, len(task.Subtasks))))
	if len(task.Subtasks) == 0 {
		sections = append(sections, dimStyle.Render("None. Press s to add one."))
	}
	for i, s := range task.Subtasks {
		box := "[ ]"
		if s.Completed {
			box = "[x]"
		}
		line := box + " " + s.Title
		if i == m.cursor {
			line = theme.SelectedItemStyle.Render(line)
		} else if s.Completed {
			line = theme.DoneStyle.Render(line)
		}
		sections = append(sections, line)
	}

	if len(task.Attachments) > 0 {
		sections = append(sections, "", headerStyle.Render(fmt.Sprintf("Attachments (%d)", len(task.Attachments))))
		for i, a := range task.Attachments {
			if len(task.Subtasks)+i == m.cursor {
				sections = append(sections, theme.SelectedItemStyle.Render("  "+a.Name+" "+a.URL))
				continue
			}
			sections = append(sections, "  "+a.Name+" "+metaStyle.Render(a.URL))
		}
	}

	sections = append(sections, "", separator, "")
	sections = append(sections, headerStyle.Render(fmt.Sprintf("Comments (%d)", len(task.Comments))), "")

	authorStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	for _, c := range task.Comments {
		sections = append(sections,
			fmt.Sprintf("%s  %s", authorStyle.Render(c.Author.Name), timeStyle.Render(c.Timestamp.Format("2006-01-02 15:04"))),
			c.Content,
			"",
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.open {
		m.viewport.SetContent(m.renderContent())
	}
}
