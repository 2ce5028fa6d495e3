package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/boardsync/internal/logging"
	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/mutation"
	"github.com/nhle/boardsync/internal/reorder"
	"github.com/nhle/boardsync/internal/theme"
	"github.com/nhle/boardsync/internal/ui/board"
	"github.com/nhle/boardsync/internal/ui/detail"
	"github.com/nhle/boardsync/internal/ui/form"
	"github.com/nhle/boardsync/internal/ui/teams"
)

// dispatchedMsg reports a finished command. prevFolders is set for folder
// reorders, whose display order is kept by the board.
type dispatchedMsg struct {
	cmd         mutation.Command
	result      mutation.Result
	err         error
	prevFolders []string
}

// panelStep is how many cells [ and ] resize a panel by.
const panelStep = 2

// dispatch runs cmd off the UI goroutine. The dispatcher applies the
// optimistic patch before its network call, so the board redraws from
// the store change signal right away.
func (m *Model) dispatch(cmd mutation.Command) tea.Cmd {
	var prev []string
	if rf, ok := cmd.(mutation.ReorderFolders); ok {
		prev = m.board.FolderOrder()
		m.board.SetFolderOrder(rf.IDs)
	}
	d := m.dispatcher
	return func() tea.Msg {
		res, err := d.Dispatch(context.Background(), cmd)
		return dispatchedMsg{cmd: cmd, result: res, err: err, prevFolders: prev}
	}
}

func (m Model) handleDispatched(msg dispatchedMsg) (tea.Model, tea.Cmd) {
	m.syncBoard()
	if msg.err != nil {
		if msg.prevFolders != nil {
			m.board.SetFolderOrder(msg.prevFolders)
		}
		return m, nil
	}
	if _, ok := msg.cmd.(mutation.CreateProject); ok && msg.result.ID != "" {
		m.board.Open(msg.result.ID)
	}
	return m, nil
}

// handleBoardKey processes keys while the board is showing.
func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.board.Selected()

	switch {
	case key.Matches(msg, m.keys.Back):
		if m.engine.State() != reorder.Idle {
			m.engine.Cancel()
			m.board.ClearDrag()
		}
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		m.poller.Stop()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Select):
		if sel.Kind == reorder.KindTask && m.showTask(sel.ProjectID, sel.ID) {
			m.currentView = ViewDetail
			return m, nil
		}

	case key.Matches(msg, m.keys.Jump):
		m.currentView = ViewPalette
		cmd := m.palette.Open(m.cache.Projects())
		return m, cmd

	case key.Matches(msg, m.keys.Inbox):
		m.inboxView.SetData(m.cache.Notifications(), m.cache.DirectMessages(), m.cache.Users(), m.me())
		m.currentView = ViewInbox
		return m, nil

	case key.Matches(msg, m.keys.Teams):
		m.teamsView.SetData(m.cache.Teams(), m.cache.Users(), m.me())
		m.currentView = ViewTeams
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.poller.RefreshNow()

	case key.Matches(msg, m.keys.ToggleTheme):
		m.prefs.Theme = m.prefs.Theme.Toggle()
		return m, m.saveTheme()

	case key.Matches(msg, m.keys.ToggleChat):
		m.chatOpen = !m.chatOpen
		m.board.SetChat(m.chatOpen, m.chat.Width())
		return m, nil

	case key.Matches(msg, m.keys.ShrinkPanel, m.keys.GrowPanel):
		delta := panelStep
		if key.Matches(msg, m.keys.ShrinkPanel) {
			delta = -panelStep
		}
		r := m.sidebar
		if m.chatOpen && m.board.Focus() == board.FocusBoard {
			r = m.chat
		}
		if err := r.Step(delta); err != nil {
			m.notifyError("Could not save panel width.", err)
		}
		m.applyWidths()
		return m, nil

	case key.Matches(msg, m.keys.MarkAllRead):
		cmd := m.markAllRead()
		return m, cmd

	case key.Matches(msg, m.keys.MoveLeft):
		cmd := m.moveSelected(-1, 0)
		return m, cmd
	case key.Matches(msg, m.keys.MoveRight):
		cmd := m.moveSelected(1, 0)
		return m, cmd
	case key.Matches(msg, m.keys.MoveUp):
		cmd := m.moveSelected(0, -1)
		return m, cmd
	case key.Matches(msg, m.keys.MoveDown):
		cmd := m.moveSelected(0, 1)
		return m, cmd

	case key.Matches(msg, m.keys.NewTask):
		colID := sel.ColumnID
		if colID == "" {
			if p, ok := m.cache.Project(m.board.Current()); ok && len(p.ColumnOrder) > 0 {
				colID = p.ColumnOrder[0]
			}
		}
		if colID == "" {
			return m, nil
		}
		open := m.formView.StartTask(colID, model.Task{})
		return m.openForm(open)

	case key.Matches(msg, m.keys.NewColumn):
		if m.board.Current() == "" {
			return m, nil
		}
		open := m.formView.StartName(form.NewColumn, m.board.Current(), "")
		return m.openForm(open)

	case key.Matches(msg, m.keys.NewProject):
		open := m.formView.StartName(form.NewProject, "", "")
		return m.openForm(open)

	case key.Matches(msg, m.keys.NewFolder):
		open := m.formView.StartName(form.NewFolder, "", "")
		return m.openForm(open)

	case key.Matches(msg, m.keys.SendChat):
		if m.board.Current() == "" {
			return m, nil
		}
		if !m.chatOpen {
			m.chatOpen = true
			m.board.SetChat(true, m.chat.Width())
		}
		open := m.formView.StartName(form.ChatMessage, m.board.Current(), "")
		return m.openForm(open)

	case key.Matches(msg, m.keys.Rename):
		return m.rename(sel)

	case key.Matches(msg, m.keys.Delete):
		return m.confirmDelete(sel)

	case key.Matches(msg, m.keys.ToggleDone):
		if sel.Kind != reorder.KindTask {
			return m, nil
		}
		p, ok := m.cache.Project(sel.ProjectID)
		if !ok {
			return m, nil
		}
		t := p.Tasks[sel.ID]
		t.Completed = !t.Completed
		cmd := m.dispatch(mutation.UpdateTask{ProjectID: p.ID, Task: t})
		return m, cmd
	}

	return m.updateActiveView(msg)
}

func (m Model) openForm(init tea.Cmd) (tea.Model, tea.Cmd) {
	m.previousView = m.currentView
	m.currentView = ViewForm
	return m, init
}

func (m *Model) moveSelected(dx, dy int) tea.Cmd {
	cmd, ok := m.board.MoveSelected(dx, dy)
	if !ok {
		return nil
	}
	return m.dispatch(cmd)
}

func (m Model) rename(sel board.Selection) (tea.Model, tea.Cmd) {
	switch sel.Kind {
	case reorder.KindTask:
		p, ok := m.cache.Project(sel.ProjectID)
		if !ok {
			return m, nil
		}
		open := m.formView.StartTask(sel.ColumnID, p.Tasks[sel.ID])
		return m.openForm(open)
	case reorder.KindColumn:
		p, ok := m.cache.Project(sel.ProjectID)
		if !ok {
			return m, nil
		}
		open := m.formView.StartName(form.RenameColumn, sel.ID, p.Columns[sel.ID].Title)
		return m.openForm(open)
	case reorder.KindProject:
		p, ok := m.cache.Project(sel.ID)
		if !ok {
			return m, nil
		}
		open := m.formView.StartName(form.RenameProject, sel.ID, p.Name)
		return m.openForm(open)
	case reorder.KindFolder:
		f, ok := m.cache.Folder(sel.ID)
		if !ok {
			return m, nil
		}
		open := m.formView.StartName(form.RenameFolder, sel.ID, f.Name)
		return m.openForm(open)
	}
	return m, nil
}

func (m Model) confirmDelete(sel board.Selection) (tea.Model, tea.Cmd) {
	var what string
	switch sel.Kind {
	case reorder.KindTask:
		p, _ := m.cache.Project(sel.ProjectID)
		what = fmt.Sprintf("task %q", p.Tasks[sel.ID].Title)
		m.pendingDelete = mutation.DeleteTask{ProjectID: sel.ProjectID, TaskID: sel.ID}
	case reorder.KindColumn:
		p, _ := m.cache.Project(sel.ProjectID)
		what = fmt.Sprintf("column %q and move its tasks", p.Columns[sel.ID].Title)
		m.pendingDelete = mutation.DeleteColumn{ProjectID: sel.ProjectID, ColumnID: sel.ID}
	case reorder.KindProject:
		p, _ := m.cache.Project(sel.ID)
		what = fmt.Sprintf("project %q", p.Name)
		m.pendingDelete = mutation.DeleteProject{ID: sel.ID}
	case reorder.KindFolder:
		f, _ := m.cache.Folder(sel.ID)
		what = fmt.Sprintf("folder %q", f.Name)
		m.pendingDelete = mutation.DeleteFolder{ID: sel.ID}
	default:
		return m, nil
	}
	open := m.formView.StartConfirm(sel.ID, what)
	return m.openForm(open)
}

// submit turns a completed form into a command.
func (m *Model) submit(msg form.SubmittedMsg) tea.Cmd {
	current := m.board.Current()
	var cmd mutation.Command

	switch msg.Purpose {
	case form.NewTask:
		cmd = mutation.CreateTask{ProjectID: current, ColumnID: msg.Target, Task: msg.Task}
	case form.EditTask:
		cmd = mutation.UpdateTask{ProjectID: current, Task: msg.Task}
	case form.NewColumn:
		cmd = mutation.CreateColumn{ProjectID: msg.Target, Title: msg.Name}
	case form.RenameColumn:
		cmd = mutation.UpdateColumn{ProjectID: current, ColumnID: msg.Target, Title: msg.Name}
	case form.NewProject:
		cmd = mutation.CreateProject{Name: msg.Name, TeamID: m.defaultTeam()}
	case form.RenameProject:
		p, ok := m.cache.Project(msg.Target)
		if !ok {
			return nil
		}
		p.Name = msg.Name
		cmd = mutation.UpdateProject{Project: p}
	case form.NewFolder:
		cmd = mutation.CreateFolder{Name: msg.Name}
	case form.RenameFolder:
		f, ok := m.cache.Folder(msg.Target)
		if !ok {
			return nil
		}
		f.Name = msg.Name
		cmd = mutation.UpdateFolder{Folder: f}
	case form.ChatMessage:
		cmd = mutation.SendChatMessage{ProjectID: msg.Target, Content: msg.Name}
	case form.NewComment, form.NewSubtask:
		pid, t, ok := m.detailView.Task()
		if !ok || t.ID != msg.Target {
			return nil
		}
		if msg.Purpose == form.NewComment {
			cmd = mutation.AddComment{ProjectID: pid, TaskID: t.ID, Content: msg.Name}
		} else {
			cmd = mutation.CreateSubtask{ProjectID: pid, TaskID: t.ID, Title: msg.Name}
		}
	case form.DirectMessage:
		cmd = mutation.SendDirectMessage{ReceiverID: msg.Target, Content: msg.Name}
	case form.NewTeam:
		cmd = mutation.CreateTeam{Name: msg.Name, Description: msg.Description}
	case form.EditTeam:
		t, ok := m.cache.Team(msg.Target)
		if !ok {
			return nil
		}
		t.Name, t.Description = msg.Name, msg.Description
		cmd = mutation.UpdateTeam{Team: t}
	case form.InviteMember:
		cmd = mutation.InviteMember{TeamID: msg.Target, Email: msg.Name}
	case form.ConfirmDelete:
		cmd, m.pendingDelete = m.pendingDelete, nil
		if !msg.Confirm {
			return nil
		}
	}
	if cmd == nil {
		return nil
	}
	return m.dispatch(cmd)
}

func (m Model) handleDetailAction(msg detail.ActionMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case detail.ActionComment:
		open := m.formView.StartName(form.NewComment, msg.TaskID, "")
		return m.openForm(open)
	case detail.ActionAddSubtask:
		open := m.formView.StartName(form.NewSubtask, msg.TaskID, "")
		return m.openForm(open)
	case detail.ActionToggleSubtask:
		done := msg.Completed
		cmd := m.dispatch(mutation.UpdateSubtask{
			ProjectID: msg.ProjectID,
			TaskID:    msg.TaskID,
			SubtaskID: msg.SubtaskID,
			Completed: &done,
		})
		return m, cmd
	case detail.ActionDeleteSubtask:
		cmd := m.dispatch(mutation.DeleteSubtask{ProjectID: msg.ProjectID, TaskID: msg.TaskID, SubtaskID: msg.SubtaskID})
		return m, cmd
	case detail.ActionDeleteAttachment:
		cmd := m.dispatch(mutation.DeleteAttachment{ProjectID: msg.ProjectID, TaskID: msg.TaskID, AttachmentID: msg.AttachmentID})
		return m, cmd
	}
	return m, nil
}

func (m Model) handleTeamAction(msg teams.ActionMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case teams.ActionCreate:
		open := m.formView.StartTeam(model.Team{})
		return m.openForm(open)
	case teams.ActionEdit:
		open := m.formView.StartTeam(msg.Team)
		return m.openForm(open)
	case teams.ActionDelete:
		m.pendingDelete = mutation.DeleteTeam{ID: msg.Team.ID}
		open := m.formView.StartConfirm(msg.Team.ID, fmt.Sprintf("team %q", msg.Team.Name))
		return m.openForm(open)
	case teams.ActionInvite:
		open := m.formView.StartName(form.InviteMember, msg.Team.ID, "")
		return m.openForm(open)
	case teams.ActionJoin:
		cmd := m.dispatch(mutation.RequestToJoin{TeamID: msg.Team.ID})
		return m, cmd
	case teams.ActionApprove, teams.ActionDeny:
		cmd := m.dispatch(mutation.ManageJoinRequest{
			TeamID:  msg.Team.ID,
			UserID:  msg.UserID,
			Approve: msg.Action == teams.ActionApprove,
		})
		return m, cmd
	}
	return m, nil
}

// defaultTeam picks the team of the open project, or the first team by id.
func (m Model) defaultTeam() string {
	if p, ok := m.cache.Project(m.board.Current()); ok && p.TeamID != "" {
		return p.TeamID
	}
	teams := m.cache.Teams()
	ids := make([]string, 0, len(teams))
	for id := range teams {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func (m *Model) markAllRead() tea.Cmd {
	var cmds []tea.Cmd
	for _, n := range m.cache.Notifications() {
		if !n.Read {
			cmds = append(cmds, m.dispatch(mutation.MarkNotificationRead{ID: n.ID}))
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) saveTheme() tea.Cmd {
	theme.Apply(m.prefs.Theme)
	s, t := m.prefStore, m.prefs.Theme
	return func() tea.Msg {
		if err := s.SetTheme(context.Background(), t); err != nil {
			logging.Logger.WithError(err).Warn("saving theme")
		}
		return nil
	}
}

func (m Model) markOnboarded() tea.Cmd {
	s := m.prefStore
	return func() tea.Msg {
		if err := s.MarkOnboarded(context.Background()); err != nil {
			logging.Logger.WithError(err).Warn("saving onboarding flag")
		}
		return nil
	}
}

// applyWidths pushes the resizer widths into the layout and the board.
func (m *Model) applyWidths() {
	m.layout.SetSidebarWidth(m.sidebar.Width())
	m.board.SetLayout(m.layout)
	m.board.SetChat(m.chatOpen, m.chat.Width())
}

func (m *Model) notifyError(message string, err error) {
	logging.Logger.WithError(err).Warn(message)
	m.notices.Notify(mutation.Notice{Kind: mutation.NoticeError, Message: message})
}
