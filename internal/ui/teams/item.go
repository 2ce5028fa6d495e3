package teams

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/theme"
)

// Item is one row: a team, or a pending join request under a team the
// current user administers.
type Item struct {
	Team model.Team
	// Requester is set on join request rows.
	Requester *model.User
	Member    bool
	Admin     bool
}

// FilterValue returns the string used for searching.
func (i Item) FilterValue() string {
	if i.Requester != nil {
		return i.Requester.Name
	}
	return i.Team.Name
}

type itemDelegate struct{}

func (d itemDelegate) Height() int  { return 1 }
func (d itemDelegate) Spacing() int { return 0 }

func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single row.
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	item, ok := li.(Item)
	if !ok {
		return
	}
	fmt.Fprint(w, line(item, index == m.Index()))
}

func line(item Item, selected bool) string {
	gray := lipgloss.NewStyle().Foreground(theme.ColorGray)

	var s string
	if item.Requester != nil {
		s = fmt.Sprintf("    ? %s wants to join  %s", item.Requester.Name, gray.Render("y/x"))
	} else {
		role := "join"
		switch {
		case item.Admin:
			role = model.RoleAdmin
		case item.Member:
			role = model.RoleMember
		}
		name := lipgloss.NewStyle().Bold(true).Render(item.Team.Name)
		s = fmt.Sprintf("%s  %s  %s", name,
			gray.Render(fmt.Sprintf("%d members, %d projects", len(item.Team.Members), len(item.Team.ProjectIDs))),
			lipgloss.NewStyle().Foreground(theme.ColorBlue).Render(role))
	}

	if selected {
		return theme.SelectedItemStyle.Render(s)
	}
	if item.Requester == nil && !item.Member {
		return theme.DoneStyle.Render(s)
	}
	return theme.SidebarItemStyle.Render(s)
}
