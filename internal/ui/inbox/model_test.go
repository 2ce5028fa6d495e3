package inbox

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/boardsync/internal/keys"
	"github.com/nhle/boardsync/internal/model"
)

func fixture() Model {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := New(keys.DefaultKeyMap(), 80, 20)
	m.SetData(
		[]model.Notification{
			{ID: "n2", Message: "Bob moved Ship to Done", CreatedAt: t0.Add(time.Hour)},
			{ID: "n1", Message: "You were added to Core", Read: true, CreatedAt: t0},
		},
		[]model.DirectMessage{
			{ID: "d1", SenderID: "u2", ReceiverID: "u1", Content: "ping", Timestamp: t0},
			{ID: "d2", SenderID: "u1", ReceiverID: "u3", Content: "pong", Timestamp: t0.Add(time.Minute)},
		},
		map[string]model.User{"u2": {ID: "u2", Name: "Bob"}},
		"u1",
	)
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRowsOrder(t *testing.T) {
	rows := fixture().Rows()
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if rows[0].Notification.ID != "n2" || rows[1].Notification.ID != "n1" {
		t.Errorf("notifications out of order: %+v, %+v", rows[0], rows[1])
	}
	if rows[2].Message.ID != "d2" || !rows[2].Outgoing || rows[2].Peer.Name != "u3" {
		t.Errorf("newest message row = %+v", rows[2])
	}
	if rows[3].Message.ID != "d1" || rows[3].Outgoing || rows[3].Peer.Name != "Bob" {
		t.Errorf("oldest message row = %+v", rows[3])
	}
}

func TestSelectActions(t *testing.T) {
	m := fixture()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got, ok := cmd().(ReadMsg); !ok || got.ID != "n2" {
		t.Errorf("enter on unread notification = %#v", cmd())
	}

	m, _ = m.Update(runes("j"))
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter on a read notification produced a command")
	}

	m, _ = m.Update(runes("j"))
	m, _ = m.Update(runes("j"))
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got, ok := cmd().(ReplyMsg); !ok || got.UserID != "u2" {
		t.Errorf("enter on a message = %#v", cmd())
	}

	_, cmd = m.Update(runes("m"))
	if _, ok := cmd().(ReadAllMsg); !ok {
		t.Error("m did not ask to mark all read")
	}
}

func TestSearch(t *testing.T) {
	m := fixture()
	m, _ = m.Update(runes("/"))
	for _, r := range "bob" {
		m, _ = m.Update(runes(string(r)))
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	rows := m.Rows()
	if len(rows) != 2 {
		t.Fatalf("search kept %d rows, want the notification and the message from Bob", len(rows))
	}

	m, _ = m.Update(runes("/"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if n := len(m.Rows()); n != 4 {
		t.Errorf("esc left %d rows, want all 4", n)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
		{15 * 24 * time.Hour, "2w ago"},
	}
	for _, tt := range tests {
		if got := relativeTime(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("relativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
	if got := relativeTime(time.Time{}, now); got != "" {
		t.Errorf("zero time = %q", got)
	}
}
