package teams

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/boardsync/internal/keys"
	"github.com/nhle/boardsync/internal/model"
)

func fixture(me string) Model {
	m := New(keys.DefaultKeyMap(), 80, 20)
	m.SetData(
		map[string]model.Team{
			"tm2": {ID: "tm2", Name: "ops", Members: []model.TeamMember{
				{User: model.User{ID: "u2"}, Role: model.RoleAdmin},
			}, JoinRequests: []string{"u1"}},
			"tm1": {ID: "tm1", Name: "Core", Members: []model.TeamMember{
				{User: model.User{ID: "u1"}, Role: model.RoleAdmin},
			}, JoinRequests: []string{"u3", "u9"}},
		},
		map[string]model.User{"u3": {ID: "u3", Name: "Cleo"}},
		me,
	)
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func action(t *testing.T, cmd tea.Cmd) ActionMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("no command")
	}
	got, ok := cmd().(ActionMsg)
	if !ok {
		t.Fatalf("got %#v, want ActionMsg", cmd())
	}
	return got
}

func TestRows(t *testing.T) {
	rows := fixture("u1").Rows()
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if rows[0].Team.ID != "tm1" || !rows[0].Admin || rows[0].Requester != nil {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Requester == nil || rows[1].Requester.Name != "Cleo" {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if rows[2].Requester == nil || rows[2].Requester.Name != "u9" {
		t.Errorf("unknown requester row = %+v", rows[2])
	}
	// Requests to teams u1 does not administer stay hidden.
	if rows[3].Team.ID != "tm2" || rows[3].Member || rows[3].Requester != nil {
		t.Errorf("row 3 = %+v", rows[3])
	}
}

func TestAdminActions(t *testing.T) {
	m := fixture("u1")

	tests := []struct {
		key  string
		want Action
	}{
		{"e", ActionEdit},
		{"d", ActionDelete},
		{"I", ActionInvite},
		{"n", ActionCreate},
	}
	for _, tt := range tests {
		_, cmd := m.Update(runes(tt.key))
		got := action(t, cmd)
		if got.Action != tt.want {
			t.Errorf("%s: action %v, want %v", tt.key, got.Action, tt.want)
		}
		if tt.want != ActionCreate && got.Team.ID != "tm1" {
			t.Errorf("%s: team %q", tt.key, got.Team.ID)
		}
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Errorf("enter on own team = %#v", cmd())
	}
}

func TestJoinRequestDecisions(t *testing.T) {
	m := fixture("u1")
	m, _ = m.Update(runes("j"))

	_, cmd := m.Update(runes("y"))
	got := action(t, cmd)
	if got.Action != ActionApprove || got.Team.ID != "tm1" || got.UserID != "u3" {
		t.Errorf("approve = %+v", got)
	}
	_, cmd = m.Update(runes("x"))
	got = action(t, cmd)
	if got.Action != ActionDeny || got.UserID != "u3" {
		t.Errorf("deny = %+v", got)
	}
	if _, cmd := m.Update(runes("d")); cmd != nil {
		t.Errorf("delete on a request row = %#v", cmd())
	}
}

func TestNonMemberCanOnlyJoin(t *testing.T) {
	m := fixture("u1")
	for i := 0; i < 3; i++ {
		m, _ = m.Update(runes("j"))
	}

	for _, k := range []string{"e", "d", "I"} {
		if _, cmd := m.Update(runes(k)); cmd != nil {
			t.Errorf("%s on foreign team = %#v", k, cmd())
		}
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := action(t, cmd); got.Action != ActionJoin || got.Team.ID != "tm2" {
		t.Errorf("enter = %+v", got)
	}
}

func TestBack(t *testing.T) {
	_, cmd := fixture("u1").Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(BackMsg); !ok {
		t.Errorf("esc = %#v", cmd())
	}
}
