package inbox

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/theme"
)

// Item is one inbox row: a notification or a direct message.
type Item struct {
	Notification *model.Notification
	Message      *model.DirectMessage
	// Peer is the other user of a direct message.
	Peer model.User
	// Outgoing is set for messages the current user sent.
	Outgoing bool
}

// FilterValue returns the string used for searching.
func (i Item) FilterValue() string {
	if i.Notification != nil {
		return i.Notification.Message
	}
	return i.Peer.Name + " " + i.Message.Content
}

func (i Item) at() time.Time {
	if i.Notification != nil {
		return i.Notification.CreatedAt
	}
	return i.Message.Timestamp
}

func (i Item) unread() bool {
	return i.Notification != nil && !i.Notification.Read
}

// itemDelegate renders inbox rows on a single line.
type itemDelegate struct {
	now func() time.Time
}

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
	fmt.Fprint(w, d.line(item, index == m.Index()))
}

func (d itemDelegate) line(item Item, selected bool) string {
	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(item.at(), d.now()))

	var line string
	if item.Notification != nil {
		bullet := " "
		if item.unread() {
			bullet = lipgloss.NewStyle().Foreground(theme.ColorBlue).Render("●")
		}
		line = fmt.Sprintf("%s %s  %s", bullet, item.Notification.Message, timeStr)
	} else {
		arrow := "←"
		if item.Outgoing {
			arrow = "→"
		}
		who := lipgloss.NewStyle().Bold(true).Render(arrow + " " + item.Peer.Name)
		line = fmt.Sprintf("  %s: %s  %s", who, item.Message.Content, timeStr)
	}

	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	if item.Notification != nil && !item.unread() {
		return theme.DoneStyle.Render(line)
	}
	return theme.SidebarItemStyle.Render(line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}
