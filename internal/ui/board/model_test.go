package board

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/boardsync/internal/keys"
	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/mutation"
	"github.com/nhle/boardsync/internal/reorder"
	"github.com/nhle/boardsync/internal/ui"
)

// fixture: folder f1 "Work" holds p1 "Alpha" with c1=[t1,t2], c2=[];
// p2 "Beta" is uncategorized. Screen is 100x30, sidebar 26 wide.
//
//	y=1 Projects   y=2 Work   y=3 Alpha   y=4 Uncategorized   y=5 Beta
//	column c1 at x=27, c2 at x=52; cards start at y=3, 3 rows each.
func fixture(t *testing.T) Model {
	t.Helper()
	p1 := model.Project{
		ID:   "p1",
		Name: "Alpha",
		Columns: map[string]model.Column{
			"c1": {ID: "c1", Title: "Todo", TaskIDs: []string{"t1", "t2"}},
			"c2": {ID: "c2", Title: "Done"},
		},
		ColumnOrder: []string{"c1", "c2"},
		Tasks: map[string]model.Task{
			"t1": {ID: "t1", ProjectID: "p1", Title: "Write tests"},
			"t2": {ID: "t2", ProjectID: "p1", Title: "Ship", Completed: true},
		},
	}
	p2 := model.Project{ID: "p2", Name: "Beta", Columns: map[string]model.Column{}, Tasks: map[string]model.Task{}}
	folders := map[string]model.Folder{"f1": {ID: "f1", Name: "Work", ProjectIDs: []string{"p1"}}}

	m := New(keys.DefaultKeyMap(), ui.NewLayout(100, 30, 26))
	m.SetData([]model.Project{p1, p2}, folders)
	if m.Current() != "p1" {
		t.Fatalf("Current() = %q, want the first listed project p1", m.Current())
	}
	return m
}

func press(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTargetsAgreeWithHitTest(t *testing.T) {
	m := fixture(t)
	var items int
	for _, d := range m.Targets() {
		if d.Kind != reorder.TargetItem || d.Holds == reorder.KindColumn {
			continue
		}
		items++
		at := reorder.Point{X: d.Rect.X + d.Rect.W/2, Y: d.Rect.Y + d.Rect.H/2}
		hit := m.HitTest(at)
		if hit.Zone != ZoneItem || hit.Item.ID != d.ID || hit.Item.Container != d.Container || hit.Item.Index != d.Index {
			t.Errorf("HitTest(%v) = %+v, want item %s in %q at %d", at, hit, d.ID, d.Container, d.Index)
		}
	}
	if items != 4 {
		t.Errorf("found %d item targets, want 2 projects and 2 tasks", items)
	}

	hit := m.HitTest(reorder.Point{X: 60, Y: 2})
	if hit.Item.Kind != reorder.KindColumn || hit.Item.ID != "c2" || hit.Item.Index != 1 || hit.Item.Container != "p1" {
		t.Errorf("column header hit = %+v", hit)
	}
	if got := m.HitTest(reorder.Point{X: 3, Y: 2}).Item; got.Kind != reorder.KindFolder || got.ID != "f1" {
		t.Errorf("folder header hit = %+v", got)
	}
	if got := m.HitTest(reorder.Point{X: 3, Y: 4}); got.Zone != ZoneNone {
		t.Errorf("uncategorized header should not be draggable, got %+v", got)
	}
	if got := m.HitTest(reorder.Point{X: 30, Y: 0}); got.Zone != ZoneNone {
		t.Errorf("header row hit = %+v", got)
	}
}

func TestHandles(t *testing.T) {
	m := fixture(t)
	if got := m.HitTest(reorder.Point{X: 25, Y: 10}).Zone; got != ZoneSidebarHandle {
		t.Errorf("sidebar edge zone = %v, want sidebar handle", got)
	}
	m.SetChat(true, 30)
	if got := m.HitTest(reorder.Point{X: 70, Y: 10}).Zone; got != ZoneChatHandle {
		t.Errorf("chat edge zone = %v, want chat handle", got)
	}
	// The chat panel leaves room for one column only.
	for _, d := range m.Targets() {
		if d.Holds == reorder.KindColumn && d.ID == "c2" {
			t.Errorf("column c2 registered while scrolled off: %+v", d)
		}
	}
}

func drag(t *testing.T, m Model, from, to reorder.Point) (mutation.Command, bool) {
	t.Helper()
	hit := m.HitTest(from)
	if hit.Zone != ZoneItem {
		t.Fatalf("nothing draggable at %v", from)
	}
	e := reorder.NewEngine(0)
	e.SetTargets(m.Targets())
	if err := e.Start(hit.Item, from); err != nil {
		t.Fatal(err)
	}
	e.Move(reorder.Point{X: from.X + 2, Y: from.Y})
	return e.Drop(to)
}

func TestDragOnRenderedBoard(t *testing.T) {
	tests := []struct {
		name     string
		from, to reorder.Point
		want     mutation.Command
	}{
		{
			name: "task into empty column",
			from: reorder.Point{X: 30, Y: 4}, to: reorder.Point{X: 60, Y: 15},
			want: mutation.MoveTask{ProjectID: "p1", TaskID: "t1", ToColumnID: "c2", Position: 0},
		},
		{
			name: "task onto sibling",
			from: reorder.Point{X: 30, Y: 4}, to: reorder.Point{X: 35, Y: 7},
			want: mutation.MoveTask{ProjectID: "p1", TaskID: "t1", ToColumnID: "c1", Position: 1},
		},
		{
			name: "column header onto neighbour",
			from: reorder.Point{X: 60, Y: 2}, to: reorder.Point{X: 35, Y: 20},
			want: mutation.MoveColumn{ProjectID: "p1", ColumnID: "c2", ToIndex: 0},
		},
		{
			name: "project to uncategorized",
			from: reorder.Point{X: 5, Y: 3}, to: reorder.Point{X: 5, Y: 20},
			want: mutation.MoveProjectToFolder{ProjectID: "p1", ToFolderID: "", Position: -1},
		},
		{
			name: "uncategorized project into folder",
			from: reorder.Point{X: 5, Y: 5}, to: reorder.Point{X: 5, Y: 2},
			want: mutation.MoveProjectToFolder{ProjectID: "p2", ToFolderID: "f1", Position: -1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := drag(t, fixture(t), tt.from, tt.to)
			if !ok {
				t.Fatal("drop produced no command")
			}
			if !reflect.DeepEqual(cmd, tt.want) {
				t.Errorf("command = %#v, want %#v", cmd, tt.want)
			}
		})
	}
}

func TestKeyboardMoves(t *testing.T) {
	m := fixture(t)

	m, _ = m.Update(press("j"))
	if sel := m.Selected(); sel.Kind != reorder.KindTask || sel.ID != "t1" {
		t.Fatalf("Selected() = %+v, want task t1", sel)
	}
	cmd, ok := m.MoveSelected(1, 0)
	want := mutation.MoveTask{ProjectID: "p1", TaskID: "t1", ToColumnID: "c2", Position: 0}
	if !ok || !reflect.DeepEqual(cmd, want) {
		t.Errorf("MoveSelected(right) = %#v, %v, want %#v", cmd, ok, want)
	}
	if _, ok := m.MoveSelected(0, -1); ok {
		t.Error("moved the first task further up")
	}

	m, _ = m.Update(press("k"))
	cmd, ok = m.MoveSelected(1, 0)
	if want := (mutation.MoveColumn{ProjectID: "p1", ColumnID: "c1", ToIndex: 1}); !ok || !reflect.DeepEqual(cmd, want) {
		t.Errorf("MoveSelected on column = %#v, %v, want %#v", cmd, ok, want)
	}

	m, _ = m.Update(press("tab"))
	m, _ = m.Update(press("j"))
	m, _ = m.Update(press("j"))
	if sel := m.Selected(); sel.Kind != reorder.KindProject || sel.ID != "p2" {
		t.Fatalf("sidebar selection = %+v, want project p2", sel)
	}
	m, _ = m.Update(press("enter"))
	if m.Current() != "p2" || m.Focus() != FocusBoard {
		t.Errorf("enter opened %q with focus %v", m.Current(), m.Focus())
	}
}

func TestFolderOrder(t *testing.T) {
	m := New(keys.DefaultKeyMap(), ui.NewLayout(100, 30, 26))
	folders := map[string]model.Folder{
		"f1": {ID: "f1", Name: "Work"},
		"f2": {ID: "f2", Name: "Home"},
	}
	m.SetData(nil, folders)
	if got := m.FolderOrder(); !reflect.DeepEqual(got, []string{"f2", "f1"}) {
		t.Fatalf("initial order = %v, want by name", got)
	}

	m, _ = m.Update(press("tab"))
	cmd, ok := m.MoveSelected(0, 1)
	if want := (mutation.ReorderFolders{IDs: []string{"f1", "f2"}}); !ok || !reflect.DeepEqual(cmd, want) {
		t.Errorf("MoveSelected on folder = %#v, %v, want %#v", cmd, ok, want)
	}

	m.SetFolderOrder([]string{"f1", "gone", "f2"})
	folders["f3"] = model.Folder{ID: "f3", Name: "Archive"}
	m.SetData(nil, folders)
	if got := m.FolderOrder(); !reflect.DeepEqual(got, []string{"f1", "f2", "f3"}) {
		t.Errorf("order after new folder = %v", got)
	}
	delete(folders, "f1")
	m.SetData(nil, folders)
	if got := m.FolderOrder(); !reflect.DeepEqual(got, []string{"f2", "f3"}) {
		t.Errorf("order after delete = %v", got)
	}
}

func TestViewFillsContentArea(t *testing.T) {
	m := fixture(t)
	for _, chat := range []bool{false, true} {
		m.SetChat(chat, 30)
		lines := strings.Split(m.View(), "\n")
		if len(lines) != 28 {
			t.Errorf("chat=%v: %d lines, want 28", chat, len(lines))
		}
		for i, l := range lines {
			if w := lipgloss.Width(l); w > 100 {
				t.Errorf("chat=%v: line %d is %d cells wide", chat, i, w)
			}
		}
	}
}

func TestFitCards(t *testing.T) {
	tests := []struct {
		n, h          int
		visible, more int
	}{
		{n: 2, h: 28, visible: 2, more: 0},
		{n: 9, h: 30, visible: 9, more: 0},
		{n: 10, h: 30, visible: 8, more: 2},
		{n: 3, h: 2, visible: 0, more: 3},
	}
	for _, tt := range tests {
		v, more := fitCards(tt.n, tt.h)
		if v != tt.visible || more != tt.more {
			t.Errorf("fitCards(%d, %d) = %d, %d, want %d, %d", tt.n, tt.h, v, more, tt.visible, tt.more)
		}
	}
}
