package reorder

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nhle/boardsync/internal/mutation"
)

// board lays out project p1 with columns c1=[t1,t2] and c2=[] side by
// side, 20 cells wide; each task card is 3 rows tall.
func board() []Droppable {
	return []Droppable{
		{ID: "c1", Kind: TargetItem, Holds: KindColumn, Container: "p1", Index: 0, Rect: Rect{X: 0, Y: 0, W: 20, H: 30}},
		{ID: "c2", Kind: TargetItem, Holds: KindColumn, Container: "p1", Index: 1, Rect: Rect{X: 20, Y: 0, W: 20, H: 30}},
		{ID: "c1", Kind: TargetContainer, Holds: KindTask, Container: "p1", Count: 2, Rect: Rect{X: 0, Y: 0, W: 20, H: 30}},
		{ID: "c2", Kind: TargetContainer, Holds: KindTask, Container: "p1", Count: 0, Rect: Rect{X: 20, Y: 0, W: 20, H: 30}},
		{ID: "t1", Kind: TargetItem, Holds: KindTask, Container: "c1", Index: 0, Rect: Rect{X: 1, Y: 2, W: 18, H: 3}},
		{ID: "t2", Kind: TargetItem, Holds: KindTask, Container: "c1", Index: 1, Rect: Rect{X: 1, Y: 5, W: 18, H: 3}},
	}
}

// sidebar lists folders f1=[P], f2=[Q] and the uncategorized zone with R.
func sidebar() []Droppable {
	return []Droppable{
		{ID: "f1", Kind: TargetContainer, Holds: KindProject, Index: 0, Count: 1, Rect: Rect{X: 0, Y: 0, W: 20, H: 2}},
		{ID: "P", Kind: TargetItem, Holds: KindProject, Container: "f1", Index: 0, Rect: Rect{X: 0, Y: 2, W: 20, H: 1}},
		{ID: "f2", Kind: TargetContainer, Holds: KindProject, Index: 1, Count: 1, Rect: Rect{X: 0, Y: 3, W: 20, H: 2}},
		{ID: "Q", Kind: TargetItem, Holds: KindProject, Container: "f2", Index: 0, Rect: Rect{X: 0, Y: 5, W: 20, H: 1}},
		{ID: "uncategorized", Kind: TargetUncategorized, Holds: KindProject, Rect: Rect{X: 0, Y: 6, W: 20, H: 4}},
		{ID: "R", Kind: TargetItem, Holds: KindProject, Container: "", Index: 0, Rect: Rect{X: 0, Y: 8, W: 20, H: 1}},
	}
}

func drag(t *testing.T, targets []Droppable, item Draggable, from, to Point) (mutation.Command, bool) {
	t.Helper()
	e := NewEngine(0)
	e.SetTargets(targets)
	if err := e.Start(item, from); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Move(Point{X: from.X + 1, Y: from.Y})
	cmd, ok := e.Drop(to)
	if e.State() != Idle {
		t.Errorf("state after drop = %s, want idle", e.State())
	}
	return cmd, ok
}

func TestDrop(t *testing.T) {
	task := Draggable{ID: "t1", Kind: KindTask, Container: "c1", Index: 0, ProjectID: "p1"}
	tests := []struct {
		name    string
		targets []Droppable
		item    Draggable
		from    Point
		to      Point
		want    mutation.Command
	}{
		{
			name:    "task onto empty column",
			targets: board(),
			item:    task,
			from:    Point{5, 3}, to: Point{30, 10},
			want:    mutation.MoveTask{ProjectID: "p1", TaskID: "t1", ToColumnID: "c2", Position: 0},
		},
		{
			name:    "task onto sibling",
			targets: board(),
			item:    task,
			from:    Point{5, 3}, to: Point{10, 6},
			want:    mutation.MoveTask{ProjectID: "p1", TaskID: "t1", ToColumnID: "c1", Position: 1},
		},
		{
			name:    "task onto own column appends",
			targets: board(),
			item:    task,
			from:    Point{5, 3}, to: Point{10, 20},
			want:    mutation.MoveTask{ProjectID: "p1", TaskID: "t1", ToColumnID: "c1", Position: 1},
		},
		{
			name:    "column onto column",
			targets: board(),
			item:    Draggable{ID: "c2", Kind: KindColumn, Container: "p1", Index: 1},
			from:    Point{30, 0}, to: Point{5, 15},
			want:    mutation.MoveColumn{ProjectID: "p1", ColumnID: "c2", ToIndex: 0},
		},
		{
			name:    "project to uncategorized",
			targets: sidebar(),
			item:    Draggable{ID: "P", Kind: KindProject, Container: "f1", Index: 0},
			from:    Point{5, 2}, to: Point{5, 7},
			want:    mutation.MoveProjectToFolder{ProjectID: "P", ToFolderID: "", Position: -1},
		},
		{
			name:    "project onto folder",
			targets: sidebar(),
			item:    Draggable{ID: "P", Kind: KindProject, Container: "f1", Index: 0},
			from:    Point{5, 2}, to: Point{5, 3},
			want:    mutation.MoveProjectToFolder{ProjectID: "P", ToFolderID: "f2", Position: -1},
		},
		{
			name:    "project onto project in another folder",
			targets: sidebar(),
			item:    Draggable{ID: "R", Kind: KindProject, Container: "", Index: 0},
			from:    Point{5, 8}, to: Point{5, 5},
			want:    mutation.MoveProjectToFolder{ProjectID: "R", ToFolderID: "f2", Position: 0},
		},
		{
			name:    "folder onto folder",
			targets: sidebar(),
			item:    Draggable{ID: "f2", Kind: KindFolder, Index: 1},
			from:    Point{5, 3}, to: Point{5, 0},
			want:    mutation.ReorderFolders{IDs: []string{"f2", "f1"}},
		},
		{
			name:    "folder onto project stands for its folder",
			targets: sidebar(),
			item:    Draggable{ID: "f1", Kind: KindFolder, Index: 0},
			from:    Point{5, 0}, to: Point{5, 5},
			want:    mutation.ReorderFolders{IDs: []string{"f2", "f1"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := drag(t, tt.targets, tt.item, tt.from, tt.to)
			if !ok {
				t.Fatalf("Drop returned no command, want %#v", tt.want)
			}
			if !reflect.DeepEqual(cmd, tt.want) {
				t.Errorf("Drop = %#v, want %#v", cmd, tt.want)
			}
		})
	}
}

func TestDropWithoutChange(t *testing.T) {
	tests := []struct {
		name    string
		targets []Droppable
		item    Draggable
		from    Point
		to      Point
	}{
		{
			name:    "task onto itself",
			targets: board(),
			item:    Draggable{ID: "t1", Kind: KindTask, Container: "c1", Index: 0, ProjectID: "p1"},
			from:    Point{5, 3}, to: Point{10, 3},
		},
		{
			name:    "last task onto own column",
			targets: board(),
			item:    Draggable{ID: "t2", Kind: KindTask, Container: "c1", Index: 1, ProjectID: "p1"},
			from:    Point{5, 6}, to: Point{10, 20},
		},
		{
			name:    "column onto itself",
			targets: board(),
			item:    Draggable{ID: "c1", Kind: KindColumn, Container: "p1", Index: 0},
			from:    Point{5, 0}, to: Point{10, 20},
		},
		{
			name:    "uncategorized project to uncategorized",
			targets: sidebar(),
			item:    Draggable{ID: "R", Kind: KindProject, Container: "", Index: 0},
			from:    Point{5, 8}, to: Point{5, 7},
		},
		{
			name:    "outside every target",
			targets: board(),
			item:    Draggable{ID: "t1", Kind: KindTask, Container: "c1", Index: 0, ProjectID: "p1"},
			from:    Point{5, 3}, to: Point{60, 60},
		},
		{
			name:    "folder onto uncategorized project",
			targets: sidebar(),
			item:    Draggable{ID: "f1", Kind: KindFolder, Index: 0},
			from:    Point{5, 0}, to: Point{5, 8},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if cmd, ok := drag(t, tt.targets, tt.item, tt.from, tt.to); ok {
				t.Errorf("Drop = %#v, want no command", cmd)
			}
		})
	}
}

func TestClickIsNotADrag(t *testing.T) {
	e := NewEngine(2)
	e.SetTargets(board())
	item := Draggable{ID: "t1", Kind: KindTask, Container: "c1", Index: 0, ProjectID: "p1"}
	if err := e.Start(item, Point{5, 3}); err != nil {
		t.Fatal(err)
	}
	if _, hit := e.Move(Point{6, 3}); hit {
		t.Error("target reported before activation")
	}
	if e.State() != Pending {
		t.Errorf("state = %s, want pending", e.State())
	}
	if cmd, ok := e.Drop(Point{6, 3}); ok {
		t.Errorf("click produced %#v", cmd)
	}
}

func TestCancel(t *testing.T) {
	e := NewEngine(0)
	e.SetTargets(board())
	item := Draggable{ID: "t1", Kind: KindTask, Container: "c1", Index: 0, ProjectID: "p1"}
	if err := e.Start(item, Point{5, 3}); err != nil {
		t.Fatal(err)
	}
	if over, hit := e.Move(Point{30, 10}); !hit || over.ID != "c2" {
		t.Fatalf("Move over = %+v, %v; want c2", over, hit)
	}
	e.Cancel()
	if _, ok := e.Active(); ok {
		t.Error("item still active after cancel")
	}
	if cmd, ok := e.Drop(Point{30, 10}); ok {
		t.Errorf("drop after cancel produced %#v", cmd)
	}
}

func TestStartRejectsUnknownItems(t *testing.T) {
	e := NewEngine(0)
	for _, item := range []Draggable{
		{ID: "x", Kind: Kind(99)},
		{Kind: KindColumn},
		{ID: "t1", Kind: KindTask, Container: "c1"},
	} {
		if err := e.Start(item, Point{}); !errors.Is(err, ErrNotDraggable) {
			t.Errorf("Start(%+v) = %v, want ErrNotDraggable", item, err)
		}
	}
	if e.State() != Idle {
		t.Errorf("state = %s after rejected starts", e.State())
	}
}
