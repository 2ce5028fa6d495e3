package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/boardsync/internal/model"
)

func projects() []model.Project {
	return []model.Project{
		{ID: "p1", Name: "Website"},
		{ID: "p2", Name: "Mobile app"},
		{ID: "p3", Name: "App backend"},
	}
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func ids(ps []model.Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestMatchesRankPrefixFirst(t *testing.T) {
	m := New(60, 20)
	m.Open(projects())
	if got := ids(m.Matches()); len(got) != 3 || got[0] != "p3" {
		t.Fatalf("empty query = %v, want all sorted by name", got)
	}

	m = typeText(m, "app")
	got := ids(m.Matches())
	if len(got) != 2 || got[0] != "p3" || got[1] != "p2" {
		t.Errorf("matches = %v, want [p3 p2]", got)
	}
}

func TestEnterJumps(t *testing.T) {
	m := New(60, 20)
	m.Open(projects())
	m = typeText(m, "app")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	if msg, ok := cmd().(JumpMsg); !ok || msg.ProjectID != "p2" {
		t.Errorf("enter = %#v, want a jump to p2", cmd())
	}
}

func TestNoMatch(t *testing.T) {
	m := New(60, 20)
	m.Open(projects())
	m = typeText(m, "zzz")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter without matches produced a command")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(CancelMsg); !ok {
		t.Error("esc did not cancel")
	}
}
