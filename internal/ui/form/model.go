package form

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/theme"
)

// Purpose says what a submitted form is for.
type Purpose int

const (
	NewTask Purpose = iota + 1
	EditTask
	NewColumn
	RenameColumn
	NewProject
	RenameProject
	NewFolder
	RenameFolder
	ChatMessage
	ConfirmDelete
	NewComment
	NewSubtask
	DirectMessage
	NewTeam
	EditTeam
	InviteMember
)

func (p Purpose) title() string {
	switch p {
	case NewTask:
		return "New Task"
	case EditTask:
		return "Edit Task"
	case NewColumn:
		return "New Column"
	case RenameColumn:
		return "Rename Column"
	case NewProject:
		return "New Project"
	case RenameProject:
		return "Rename Project"
	case NewFolder:
		return "New Folder"
	case RenameFolder:
		return "Rename Folder"
	case ChatMessage:
		return "Message"
	case ConfirmDelete:
		return "Delete"
	case NewComment:
		return "Comment"
	case NewSubtask:
		return "New Subtask"
	case DirectMessage:
		return "Direct Message"
	case NewTeam:
		return "New Team"
	case EditTeam:
		return "Edit Team"
	case InviteMember:
		return "Invite Member"
	}
	return ""
}

// SubmittedMsg is dispatched when the form completes. Target carries the
// id the form was opened for (the task being edited, the column being
// renamed). Task is only filled for NewTask and EditTask, Description
// for NewTeam and EditTeam.
type SubmittedMsg struct {
	Purpose     Purpose
	Target      string
	Name        string
	Description string
	Task        model.Task
	Confirm     bool
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name        string
	description string
	priority    string
	dueDate     string
	confirm     bool
}

// Model is the Bubble Tea model for every editing prompt.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	purpose Purpose
	target  string
	base    model.Task
	width   int
	height  int
}

// New creates an empty form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityMedium},
		width:  width,
		height: height,
	}
}

// Active reports whether a form is open.
func (m Model) Active() bool {
	return m.form != nil
}

// Close discards the open form.
func (m *Model) Close() {
	m.form = nil
}

// StartTask opens the task form. A zero task creates, anything else edits.
func (m *Model) StartTask(target string, t model.Task) tea.Cmd {
	m.purpose = NewTask
	if t.ID != "" {
		m.purpose = EditTask
	}
	m.target = target
	m.base = t.Clone()
	m.fb.name = t.Title
	m.fb.description = t.Description
	m.fb.priority = t.Priority
	if m.fb.priority == "" {
		m.fb.priority = model.PriorityMedium
	}
	m.fb.dueDate = ""
	if t.DueDate != nil {
		m.fb.dueDate = t.DueDate.Format("2006-01-02")
	}
	m.form = m.buildTaskForm()
	return m.form.Init()
}

// StartName opens a single-line prompt, prefilled with current.
func (m *Model) StartName(p Purpose, target, current string) tea.Cmd {
	m.purpose = p
	m.target = target
	m.fb.name = current
	label := "Name"
	validate := validateRequired(label)
	switch p {
	case ChatMessage, NewComment, DirectMessage:
		label = "Text"
		validate = validateRequired(label)
	case NewSubtask:
		label = "Title"
		validate = validateRequired(label)
	case InviteMember:
		label = "Email"
		validate = validateEmail
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(label).
				Value(&m.fb.name).
				Validate(validate),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
	return m.form.Init()
}

// StartTeam opens the team form. A zero team creates, anything else edits.
func (m *Model) StartTeam(t model.Team) tea.Cmd {
	m.purpose = NewTeam
	if t.ID != "" {
		m.purpose = EditTeam
	}
	m.target = t.ID
	m.fb.name = t.Name
	m.fb.description = t.Description
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional...").
				Value(&m.fb.description),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
	return m.form.Init()
}

// StartConfirm asks before deleting what.
func (m *Model) StartConfirm(target, what string) tea.Cmd {
	m.purpose = ConfirmDelete
	m.target = target
	m.fb.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", what)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
	return m.form.Init()
}

// Update handles messages for the open form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, m.handleSubmit()
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the open form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(m.purpose.title()) + "\n" + m.form.View()

	return theme.PanelStyle.Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildTaskForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fb.name).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Description").
				Placeholder("Optional details...").
				Value(&m.fb.description),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("High", model.PriorityHigh),
					huh.NewOption("Medium", model.PriorityMedium),
					huh.NewOption("Low", model.PriorityLow),
				).
				Value(&m.fb.priority),
			huh.NewInput().
				Title("Due Date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.dueDate).
				Validate(validateOptionalDate),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	out := SubmittedMsg{
		Purpose: m.purpose,
		Target:  m.target,
		Name:    strings.TrimSpace(m.fb.name),
		Confirm: m.fb.confirm,
	}

	if m.purpose == NewTask || m.purpose == EditTask {
		t := m.base.Clone()
		t.Title = out.Name
		t.Description = m.fb.description
		t.Priority = m.fb.priority
		t.DueDate = nil
		if d, err := time.Parse("2006-01-02", strings.TrimSpace(m.fb.dueDate)); err == nil {
			t.DueDate = &d
		}
		out.Task = t
	}
	if m.purpose == NewTeam || m.purpose == EditTeam {
		out.Description = strings.TrimSpace(m.fb.description)
	}

	return func() tea.Msg { return out }
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 30 {
		w = 30
	}
	if w > 80 {
		w = 80
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	_, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

func validateEmail(s string) error {
	if err := validateRequired("Email")(s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if _, err := mail.ParseAddress(s); err != nil || !strings.Contains(s, "@") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
