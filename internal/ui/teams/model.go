package teams

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/boardsync/internal/keys"
	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/theme"
)

// Action names what the parent should do for an ActionMsg.
type Action int

const (
	ActionCreate Action = iota + 1
	ActionEdit
	ActionDelete
	ActionInvite
	ActionJoin
	ActionApprove
	ActionDeny
)

// BackMsg signals the parent to navigate back to the board.
type BackMsg struct{}

// ActionMsg asks the parent to run a team action. UserID is set for
// join request decisions.
type ActionMsg struct {
	Action Action
	Team   model.Team
	UserID string
}

// Model lists the teams known to the client.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates an empty team list.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, itemDelegate{}, width, height-2)
	l.Title = "Teams"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetData rebuilds the rows, teams by name. Join requests are listed
// under teams me administers. An empty me skips the role checks; the
// server enforces them anyway.
func (m *Model) SetData(teams map[string]model.Team, users map[string]model.User, me string) {
	sorted := make([]model.Team, 0, len(teams))
	for _, t := range teams {
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool {
		a, b := strings.ToLower(sorted[i].Name), strings.ToLower(sorted[j].Name)
		if a != b {
			return a < b
		}
		return sorted[i].ID < sorted[j].ID
	})

	var items []list.Item
	for _, t := range sorted {
		it := Item{Team: t, Member: me == "", Admin: me == ""}
		for _, mem := range t.Members {
			if mem.User.ID == me {
				it.Member = true
				it.Admin = mem.Role == model.RoleAdmin
			}
		}
		items = append(items, it)
		if !it.Admin {
			continue
		}
		for _, uid := range t.JoinRequests {
			u, ok := users[uid]
			if !ok {
				u = model.User{ID: uid, Name: uid}
			}
			items = append(items, Item{Team: t, Requester: &u, Member: true, Admin: true})
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

// Rows returns the rows currently listed.
func (m Model) Rows() []Item {
	out := make([]Item, 0, len(m.list.Items()))
	for _, li := range m.list.Items() {
		out = append(out, li.(Item))
	}
	return out
}

// Update handles messages for the team list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := m.handleKey(kmsg); handled {
			return m, cmd
		}
	}

	// up/down/pgup/pgdn move through the list.
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, m.keys.Back) {
		return func() tea.Msg { return BackMsg{} }, true
	}
	if key.Matches(msg, m.keys.NewTeam) {
		return emit(ActionMsg{Action: ActionCreate}), true
	}

	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return nil, false
	}

	if item.Requester != nil {
		switch {
		case key.Matches(msg, m.keys.Approve):
			return emit(ActionMsg{Action: ActionApprove, Team: item.Team, UserID: item.Requester.ID}), true
		case key.Matches(msg, m.keys.Deny):
			return emit(ActionMsg{Action: ActionDeny, Team: item.Team, UserID: item.Requester.ID}), true
		}
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Select):
		if item.Member {
			return nil, true
		}
		return emit(ActionMsg{Action: ActionJoin, Team: item.Team}), true
	case key.Matches(msg, m.keys.Rename):
		if !item.Admin {
			return nil, true
		}
		return emit(ActionMsg{Action: ActionEdit, Team: item.Team}), true
	case key.Matches(msg, m.keys.Delete):
		if !item.Admin {
			return nil, true
		}
		return emit(ActionMsg{Action: ActionDelete, Team: item.Team}), true
	case key.Matches(msg, m.keys.Invite):
		if !item.Admin {
			return nil, true
		}
		return emit(ActionMsg{Action: ActionInvite, Team: item.Team}), true
	}
	return nil, false
}

func emit(out ActionMsg) tea.Cmd {
	return func() tea.Msg { return out }
}

// View renders the team list.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No teams yet. Press n to create one.")
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
