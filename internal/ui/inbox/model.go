package inbox

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/boardsync/internal/keys"
	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/theme"
)

// BackMsg signals the parent to navigate back to the board.
type BackMsg struct{}

// ReadMsg asks the parent to mark a notification read.
type ReadMsg struct {
	ID string
}

// ReadAllMsg asks the parent to mark every notification read.
type ReadAllMsg struct{}

// ReplyMsg asks the parent to open a direct message to UserID.
type ReplyMsg struct {
	UserID string
	Name   string
}

// Model lists notifications and direct messages.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	all         []Item
	query       string
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates an empty inbox.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, itemDelegate{now: time.Now}, width, height-2)
	l.Title = "Inbox"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search inbox..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		keys:        k,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// SetData rebuilds the rows. Notifications come first, newest first,
// followed by direct messages, newest first. me is the signed-in user.
func (m *Model) SetData(notifications []model.Notification, messages []model.DirectMessage, users map[string]model.User, me string) {
	items := make([]Item, 0, len(notifications)+len(messages))
	for i := range notifications {
		n := notifications[i]
		items = append(items, Item{Notification: &n})
	}
	for i := len(messages) - 1; i >= 0; i-- {
		dm := messages[i]
		peerID, out := dm.SenderID, false
		if dm.SenderID == me {
			peerID, out = dm.ReceiverID, true
		}
		peer, ok := users[peerID]
		if !ok {
			peer = model.User{ID: peerID, Name: peerID}
		}
		items = append(items, Item{Message: &dm, Peer: peer, Outgoing: out})
	}
	m.all = items
	m.applyFilter()
}

// Rows returns the rows currently listed.
func (m Model) Rows() []Item {
	out := make([]Item, 0, len(m.list.Items()))
	for _, li := range m.list.Items() {
		out = append(out, li.(Item))
	}
	return out
}

func (m *Model) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.query))
	items := make([]list.Item, 0, len(m.all))
	for _, it := range m.all {
		if q == "" || strings.Contains(strings.ToLower(it.FilterValue()), q) {
			items = append(items, it)
		}
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
}

// Update handles messages for the inbox.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(kmsg)
		}
		return m.handleNormalKeys(kmsg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.query = m.searchInput.Value()
		m.applyFilter()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.query = ""
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(Item)
		if !ok {
			return m, nil
		}
		if item.Notification != nil {
			if !item.unread() {
				return m, nil
			}
			id := item.Notification.ID
			return m, func() tea.Msg { return ReadMsg{ID: id} }
		}
		peer := item.Peer
		return m, func() tea.Msg { return ReplyMsg{UserID: peer.ID, Name: peer.Name} }

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, func() tea.Msg { return ReadAllMsg{} }

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		cmd := m.searchInput.Focus()
		return m, cmd
	}

	// up/down/pgup/pgdn move through the list.
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the inbox.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		style := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		if m.query != "" {
			return style.Render("Nothing matches \"" + m.query + "\".")
		}
		return style.Render("Inbox is empty.")
	}

	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
