package detail

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/boardsync/internal/keys"
	"github.com/nhle/boardsync/internal/model"
)

func task() model.Task {
	return model.Task{
		ID:    "t1",
		Title: "Ship release",
		Subtasks: []model.Subtask{
			{ID: "s1", Title: "tag"},
			{ID: "s2", Title: "notes", Completed: true},
		},
		Comments: []model.Comment{{ID: "m1", Author: model.User{Name: "Ann"}, Content: "on it"}},
	}
}

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

func TestSubtaskActions(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.Show("p1", "Doing", task())

	m, _ = m.Update(keyMsg("j"))
	m, cmd := m.Update(keyMsg(" "))
	got, ok := run(t, cmd).(ActionMsg)
	want := ActionMsg{Action: ActionToggleSubtask, ProjectID: "p1", TaskID: "t1", SubtaskID: "s2", Completed: false}
	if !ok || got != want {
		t.Errorf("toggle = %+v, want %+v", got, want)
	}

	m, _ = m.Update(keyMsg("k"))
	_, cmd = m.Update(keyMsg("D"))
	if got := run(t, cmd).(ActionMsg); got.Action != ActionDeleteSubtask || got.SubtaskID != "s1" {
		t.Errorf("delete = %+v", got)
	}

	_, cmd = m.Update(keyMsg("a"))
	if got := run(t, cmd).(ActionMsg); got.Action != ActionComment || got.TaskID != "t1" {
		t.Errorf("comment = %+v", got)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := run(t, cmd).(BackMsg); !ok {
		t.Error("esc did not go back")
	}
}

func TestAttachmentDelete(t *testing.T) {
	tk := task()
	tk.Attachments = []model.Attachment{{ID: "a1", Name: "brief.pdf", URL: "https://files.example/a1"}}
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.Show("p1", "Doing", tk)

	for i := 0; i < 3; i++ {
		m, _ = m.Update(keyMsg("j"))
	}
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want 2 on the attachment", m.cursor)
	}
	if _, cmd := m.Update(keyMsg(" ")); cmd != nil {
		t.Errorf("space on an attachment = %#v", cmd())
	}

	_, cmd := m.Update(keyMsg("D"))
	got, ok := run(t, cmd).(ActionMsg)
	want := ActionMsg{Action: ActionDeleteAttachment, ProjectID: "p1", TaskID: "t1", AttachmentID: "a1"}
	if !ok || got != want {
		t.Errorf("delete = %+v, want %+v", got, want)
	}

	tk.Attachments = nil
	m.Show("p1", "Doing", tk)
	if m.cursor != 1 {
		t.Errorf("cursor = %d after the attachment went away, want 1", m.cursor)
	}
}

func TestShowKeepsCursorOnRefresh(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.Show("p1", "Doing", task())
	m, _ = m.Update(keyMsg("j"))

	updated := task()
	updated.Subtasks[1].Completed = false
	m.Show("p1", "Doing", updated)
	if m.cursor != 1 {
		t.Errorf("cursor = %d after refresh, want 1", m.cursor)
	}

	shorter := task()
	shorter.Subtasks = shorter.Subtasks[:1]
	m.Show("p1", "Doing", shorter)
	if m.cursor != 0 {
		t.Errorf("cursor = %d past the last subtask", m.cursor)
	}

	other := task()
	other.ID = "t2"
	m.Show("p1", "Doing", other)
	if _, got, ok := m.Task(); !ok || got.ID != "t2" {
		t.Errorf("Task() = %+v, %v", got, ok)
	}
}

func TestRenderContent(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 40)
	m.Show("p1", "Doing", task())
	out := m.renderContent()
	for _, want := range []string{"Ship release", "Subtasks (1/2)", "[x] notes", "Comments (1)", "on it"} {
		if !strings.Contains(out, want) {
			t.Errorf("content is missing %q", want)
		}
	}

	m.Close()
	if _, _, ok := m.Task(); ok {
		t.Error("Task() reports a task after Close")
	}
}
