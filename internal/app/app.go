package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sony/gobreaker"

	"github.com/nhle/boardsync/internal/cache"
	"github.com/nhle/boardsync/internal/keys"
	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/mutation"
	"github.com/nhle/boardsync/internal/reorder"
	"github.com/nhle/boardsync/internal/session"
	"github.com/nhle/boardsync/internal/store"
	appsync "github.com/nhle/boardsync/internal/sync"
	"github.com/nhle/boardsync/internal/theme"
	"github.com/nhle/boardsync/internal/ui"
	"github.com/nhle/boardsync/internal/ui/board"
	"github.com/nhle/boardsync/internal/ui/command"
	"github.com/nhle/boardsync/internal/ui/detail"
	"github.com/nhle/boardsync/internal/ui/form"
	"github.com/nhle/boardsync/internal/ui/inbox"
	"github.com/nhle/boardsync/internal/ui/teams"
	helpview "github.com/nhle/boardsync/internal/ui/help"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewBoard ViewState = iota
	ViewHelp
	ViewForm
	ViewWelcome
	ViewExpired
	ViewDetail
	ViewInbox
	ViewPalette
	ViewTeams
)

// storeChangedMsg is sent after the entity store was written.
type storeChangedMsg struct{}

// sessionExpiredMsg is sent once the session has been torn down.
type sessionExpiredMsg struct{}

// noticeExpiredMsg clears the notice shown since at.
type noticeExpiredMsg struct {
	at time.Time
}

// Deps are the services the terminal UI drives.
type Deps struct {
	Config      *model.AppConfig
	Cache       *cache.Store
	Dispatcher  *mutation.Dispatcher
	Notices     *mutation.Notices
	Poller      *appsync.Poller
	Prefs       store.Store
	Session     *session.Session
	Preferences model.Preferences
}

// Model is the root Bubble Tea model: it routes views, renders the frame
// and turns keys and mouse gestures into commands on the dispatcher.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	cache      *cache.Store
	dispatcher *mutation.Dispatcher
	notices    *mutation.Notices
	poller     *appsync.Poller
	prefStore  store.Store
	prefs      model.Preferences
	session    *session.Session

	board      board.Model
	helpView   helpview.Model
	formView   form.Model
	detailView detail.Model
	inboxView  inbox.Model
	teamsView  teams.Model
	palette    command.Model
	spinner    spinner.Model

	engine   *reorder.Engine
	sidebar  *reorder.Resizer
	chat     *reorder.Resizer
	resizing *reorder.Resizer
	chatOpen bool

	// pendingDelete runs once the delete prompt is confirmed.
	pendingDelete mutation.Command

	notice      *mutation.Notice
	unreadCount int
	expired     chan struct{}
	ready       bool
}

// New creates the root model. The session's expiry hook is registered
// here so the UI can leave the board when the server rejects the token.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	disp := d.Config.Display
	theme.Apply(d.Preferences.Theme)

	expired := make(chan struct{}, 1)
	if d.Session != nil {
		d.Session.OnExpired(func() {
			select {
			case expired <- struct{}{}:
			default:
			}
		})
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.HelpStyle

	sidebar := reorder.NewResizer(reorder.PanelSidebar, disp.SidebarMin, disp.SidebarMax, d.Preferences.SidebarWidth, d.Prefs)
	layout := ui.NewLayout(80, 24, sidebar.Width())

	m := Model{
		currentView: ViewBoard,
		layout:      layout,
		keys:        k,
		cache:       d.Cache,
		dispatcher:  d.Dispatcher,
		notices:     d.Notices,
		poller:      d.Poller,
		prefStore:   d.Prefs,
		prefs:       d.Preferences,
		session:     d.Session,
		board:       board.New(k, layout),
		helpView:    helpview.New(k, 80, 24),
		formView:    form.New(80, 24),
		detailView:  detail.New(k, 80, 24),
		inboxView:   inbox.New(k, 80, 24),
		teamsView:   teams.New(k, 80, 24),
		palette:     command.New(80, 24),
		spinner:     sp,
		engine:      reorder.NewEngine(reorder.DefaultActivationDistance),
		sidebar:     sidebar,
		chat:        reorder.NewResizer(reorder.PanelChat, disp.ChatMin, disp.ChatMax, d.Preferences.ChatWidth, d.Prefs),
		expired:     expired,
	}
	if !d.Preferences.HasOnboarded {
		m.currentView = ViewWelcome
	}
	m.syncBoard()
	return m
}

// Init starts the refresh loop and the listeners for store changes,
// notices and session expiry.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.poller.Start(),
		m.waitForStore(),
		m.notices.WaitForNotice(),
		m.waitForExpiry(),
		m.spinner.Tick,
	)
}

func (m Model) waitForStore() tea.Cmd {
	ch := m.cache.Subscribe()
	return func() tea.Msg {
		<-ch
		return storeChangedMsg{}
	}
}

func (m Model) waitForExpiry() tea.Cmd {
	ch := m.expired
	return func() tea.Msg {
		<-ch
		return sessionExpiredMsg{}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height, m.sidebar.Width())
		m.ready = true
		m.board.SetLayout(m.layout)
		m.board.SetChat(m.chatOpen, m.chat.Width())
		m.helpView.SetSize(m.layout.Width, m.layout.ContentHeight())
		m.formView.SetSize(m.layout.Width, m.layout.ContentHeight())
		m.detailView.SetSize(m.layout.Width, m.layout.ContentHeight())
		m.inboxView.SetSize(m.layout.Width, m.layout.ContentHeight())
		m.teamsView.SetSize(m.layout.Width, m.layout.ContentHeight())
		m.palette.SetSize(m.layout.Width, m.layout.ContentHeight())
		// Forward to the form so huh can calculate its layout.
		if m.currentView == ViewForm {
			return m.updateActiveView(msg)
		}
		return m, nil

	case storeChangedMsg:
		m.syncBoard()
		return m, m.waitForStore()

	case appsync.RefreshResultMsg:
		if msg.SessionExpired {
			return m.expire()
		}
		return m, m.poller.WaitForNextResult()

	case sessionExpiredMsg:
		return m.expire()

	case mutation.NoticeMsg:
		n := mutation.Notice(msg)
		m.notice = &n
		return m, tea.Batch(
			m.notices.WaitForNotice(),
			tea.Tick(mutation.NoticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{at: n.At} }),
		)

	case noticeExpiredMsg:
		if m.notice != nil && m.notice.At.Equal(msg.at) {
			m.notice = nil
		}
		return m, nil

	case dispatchedMsg:
		return m.handleDispatched(msg)

	case form.SubmittedMsg:
		m.currentView = m.afterForm()
		cmd := m.submit(msg)
		return m, cmd

	case form.CancelMsg:
		m.currentView = m.afterForm()
		m.pendingDelete = nil
		return m, nil

	case detail.BackMsg:
		m.detailView.Close()
		m.currentView = ViewBoard
		return m, nil

	case detail.ActionMsg:
		return m.handleDetailAction(msg)

	case inbox.BackMsg:
		m.currentView = ViewBoard
		return m, nil

	case inbox.ReadMsg:
		cmd := m.dispatch(mutation.MarkNotificationRead{ID: msg.ID})
		return m, cmd

	case inbox.ReadAllMsg:
		cmd := m.markAllRead()
		return m, cmd

	case teams.BackMsg:
		m.currentView = ViewBoard
		return m, nil

	case teams.ActionMsg:
		return m.handleTeamAction(msg)

	case command.JumpMsg:
		m.board.Open(msg.ProjectID)
		m.currentView = ViewBoard
		return m, nil

	case command.CancelMsg:
		m.currentView = ViewBoard
		return m, nil

	case inbox.ReplyMsg:
		open := m.formView.StartName(form.DirectMessage, msg.UserID, "")
		return m.openForm(open)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		switch m.currentView {
		case ViewBoard:
			return m.handleMouse(msg)
		case ViewDetail, ViewInbox, ViewTeams:
			return m.updateActiveView(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.poller.Stop()
			return m, tea.Quit
		}
		switch m.currentView {
		case ViewForm, ViewDetail, ViewInbox, ViewTeams, ViewPalette:
			return m.updateActiveView(msg)
		case ViewExpired:
			if key.Matches(msg, m.keys.Quit, m.keys.Back) {
				return m, tea.Quit
			}
			return m, nil
		case ViewWelcome:
			m.currentView = ViewBoard
			m.prefs.HasOnboarded = true
			return m, m.markOnboarded()
		case ViewHelp:
			if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
				m.currentView = m.previousView
			}
			return m, nil
		}
		return m.handleBoardKey(msg)
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewBoard:
		m.board, cmd = m.board.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewForm:
		m.formView, cmd = m.formView.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewInbox:
		m.inboxView, cmd = m.inboxView.Update(msg)
	case ViewTeams:
		m.teamsView, cmd = m.teamsView.Update(msg)
	case ViewPalette:
		m.palette, cmd = m.palette.Update(msg)
	}

	return m, cmd
}

// syncBoard copies the store into the board and the open task detail.
func (m *Model) syncBoard() {
	m.board.SetData(m.cache.Projects(), m.cache.Folders())
	m.unreadCount = m.cache.UnreadCount()
	m.inboxView.SetData(m.cache.Notifications(), m.cache.DirectMessages(), m.cache.Users(), m.me())
	m.teamsView.SetData(m.cache.Teams(), m.cache.Users(), m.me())

	pid, t, ok := m.detailView.Task()
	if !ok {
		return
	}
	if !m.showTask(pid, t.ID) {
		m.detailView.Close()
		if m.currentView == ViewDetail {
			m.currentView = ViewBoard
		}
	}
}

// showTask loads a task from the store into the detail view.
func (m *Model) showTask(projectID, taskID string) bool {
	p, ok := m.cache.Project(projectID)
	if !ok {
		return false
	}
	t, ok := p.Tasks[taskID]
	if !ok {
		return false
	}
	col, _ := p.ColumnOf(taskID)
	m.detailView.Show(projectID, p.Columns[col].Title, t)
	return true
}

// afterForm is the view a closed form returns to.
func (m Model) afterForm() ViewState {
	switch m.previousView {
	case ViewDetail:
		if _, _, ok := m.detailView.Task(); ok {
			return ViewDetail
		}
	case ViewInbox:
		return ViewInbox
	case ViewTeams:
		return ViewTeams
	}
	return ViewBoard
}

// me returns the signed-in user's id, or "".
func (m Model) me() string {
	if m.session == nil {
		return ""
	}
	c, _ := m.session.Claims()
	return c.UserID
}

// expire leaves the board for the session-expired screen. The poller
// stops so no request runs with cleared credentials, and the cache is
// emptied so no board data outlives the session.
func (m Model) expire() (tea.Model, tea.Cmd) {
	m.poller.Stop()
	m.cache.Clear()
	m.syncBoard()
	m.engine.Cancel()
	m.board.ClearDrag()
	m.formView.Close()
	m.detailView.Close()
	m.currentView = ViewExpired
	return m, nil
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "boardsync"
	if p, ok := m.cache.Project(m.board.Current()); ok {
		title += " · " + p.Name
	}
	if m.unreadCount > 0 {
		title += fmt.Sprintf(" [%d new]", m.unreadCount)
	}
	header := m.layout.RenderHeader(title, m.syncStatus())

	statusBar := m.layout.RenderStatusBar(m.keyHints(), theme.StatusBarStyle)
	if m.notice != nil {
		statusBar = m.layout.RenderStatusBar(m.notice.Message, theme.NoticeStyle(string(m.notice.Kind)))
	}

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	case ViewForm:
		return m.formView.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewInbox:
		return m.inboxView.View()
	case ViewTeams:
		return m.teamsView.View()
	case ViewPalette:
		return m.palette.View()
	case ViewWelcome:
		return theme.PanelStyle.Render(welcomeText)
	case ViewExpired:
		return theme.PanelStyle.Render("Your session has expired.\n\nRun `boardsync login` to sign in again, then restart.\n\nPress q to quit.")
	default:
		return m.board.View()
	}
}

const welcomeText = `Welcome to boardsync.

Your projects are listed on the left, grouped by folder.
Drag cards between columns with the mouse, or select one and use H/L.
Drag a project onto a folder to file it, or onto "Uncategorized".
Drag the sidebar edge to resize it. Press ? for every shortcut.

Press any key to continue.`

// syncStatus returns a short string describing the refresh loop and
// pending mutations.
func (m Model) syncStatus() string {
	st := m.poller.Status()
	pending := m.dispatcher.Tracker().InFlight()

	switch {
	case m.dispatcher.BreakerState() == gobreaker.StateOpen:
		return "⚠ server unreachable, changes paused"
	case st.State == appsync.SyncFetching || pending > 0:
		if pending > 0 {
			return fmt.Sprintf("%s saving (%d)", m.spinner.View(), pending)
		}
		return m.spinner.View() + " syncing"
	case st.State == appsync.SyncError:
		return "⚠ offline"
	case !st.LastSync.IsZero():
		return "synced " + st.LastSync.Format("15:04:05")
	}
	return "idle"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewForm:
		return "enter submit | esc cancel"
	case ViewExpired:
		return "q quit"
	case ViewWelcome:
		return "any key to start"
	case ViewDetail:
		return "a comment | s subtask | space check | D delete | j/k select | esc back"
	case ViewInbox:
		return "enter read/reply | m mark all read | / search | esc back"
	case ViewTeams:
		return "n new | e edit | d delete | I invite | enter join | y/x approve/deny | esc back"
	case ViewPalette:
		return "type to filter | up/down choose | enter open | esc cancel"
	}
	if m.engine.State() == reorder.Dragging {
		return "release to drop | esc cancel"
	}
	if m.board.Focus() == board.FocusSidebar {
		return "enter open | P project | F folder | e rename | d delete | K/J move | tab board | ? help"
	}
	return "n task | N column | e edit | x done | H/L move | c chat | tab sidebar | q quit | ? help"
}
