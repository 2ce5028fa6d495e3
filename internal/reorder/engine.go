// Package reorder turns pointer gestures into move commands for tasks,
// columns, projects and folders.
package reorder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nhle/boardsync/internal/logging"
	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/mutation"
)

// ErrNotDraggable is returned by Start for items that cannot be dragged.
var ErrNotDraggable = errors.New("item is not draggable")

// DefaultActivationDistance is how far, in cells, the pointer must travel
// before a press becomes a drag.
const DefaultActivationDistance = 1

// Kind identifies what sort of item is dragged or held by a target.
type Kind int

const (
	KindTask Kind = iota + 1
	KindColumn
	KindProject
	KindFolder
)

func (k Kind) String() string {
	switch k {
	case KindTask:
		return "task"
	case KindColumn:
		return "column"
	case KindProject:
		return "project"
	case KindFolder:
		return "folder"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// TargetKind distinguishes drop targets.
type TargetKind int

const (
	// TargetItem is another item; a drop takes its container and index.
	TargetItem TargetKind = iota
	// TargetContainer is a column or folder; a drop appends to it.
	TargetContainer
	// TargetUncategorized is the zone for projects outside every folder.
	TargetUncategorized
)

// Draggable is the item under the pointer when a drag starts.
type Draggable struct {
	ID   string
	Kind Kind
	// Container is the column of a task, the project of a column and the
	// folder of a project ("" when uncategorized). Folders have none.
	Container string
	Index     int
	// ProjectID is required for tasks.
	ProjectID string
}

// Droppable is a registered drop target.
type Droppable struct {
	ID   string
	Kind TargetKind
	// Holds is the kind of the item itself for TargetItem, or of the items
	// inside for containers.
	Holds     Kind
	Container string
	Index     int
	// Count is the number of items a container holds.
	Count int
	Rect  Rect
}

// State is the drag state.
type State int

const (
	Idle State = iota
	// Pending means the pointer is down but has not moved far enough.
	Pending
	Dragging
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Engine tracks one drag gesture at a time. It is driven from the UI
// goroutine and is not safe for concurrent use.
type Engine struct {
	activation int
	targets    []Droppable

	state  State
	item   Draggable
	origin Point
	over   *Droppable
}

// NewEngine returns an idle engine. activation <= 0 selects
// DefaultActivationDistance.
func NewEngine(activation int) *Engine {
	if activation <= 0 {
		activation = DefaultActivationDistance
	}
	return &Engine{activation: activation}
}

// SetTargets replaces the registered drop targets, typically after every
// render.
func (e *Engine) SetTargets(ds []Droppable) {
	e.targets = append(e.targets[:0], ds...)
	e.over = nil
}

// State returns the current drag state.
func (e *Engine) State() State { return e.state }

// Active returns the item being dragged.
func (e *Engine) Active() (Draggable, bool) {
	if e.state == Idle {
		return Draggable{}, false
	}
	return e.item, true
}

// Over returns the target currently under the pointer.
func (e *Engine) Over() (Droppable, bool) {
	if e.state != Dragging || e.over == nil {
		return Droppable{}, false
	}
	return *e.over, true
}

// Start begins a gesture on item. The drag activates once the pointer
// has moved the activation distance.
func (e *Engine) Start(item Draggable, at Point) error {
	if item.ID == "" {
		return ErrNotDraggable
	}
	switch item.Kind {
	case KindTask:
		if item.ProjectID == "" {
			return fmt.Errorf("task %s without project: %w", item.ID, ErrNotDraggable)
		}
	case KindColumn, KindProject, KindFolder:
	default:
		return fmt.Errorf("%s %s: %w", item.Kind, item.ID, ErrNotDraggable)
	}
	e.state = Pending
	e.item = item
	e.origin = at
	e.over = nil
	return nil
}

// Move updates the pointer position and returns the target under it.
func (e *Engine) Move(at Point) (Droppable, bool) {
	switch e.state {
	case Idle:
		return Droppable{}, false
	case Pending:
		dx, dy := at.X-e.origin.X, at.Y-e.origin.Y
		if dx*dx+dy*dy < e.activation*e.activation {
			return Droppable{}, false
		}
		e.state = Dragging
		logging.Logger.WithField("kind", e.item.Kind.String()).WithField("id", e.item.ID).Debug("drag started")
	}
	e.over = e.closest(at)
	return e.Over()
}

// Cancel abandons the gesture.
func (e *Engine) Cancel() {
	e.reset()
}

// Drop ends the gesture at the given point and returns the command that
// applies it. ok is false for clicks, cancelled drags and drops that
// change nothing.
func (e *Engine) Drop(at Point) (cmd mutation.Command, ok bool) {
	defer e.reset()
	if e.state == Idle {
		return nil, false
	}
	target, hit := e.Move(at)
	if e.state != Dragging || !hit {
		return nil, false
	}
	cmd = e.resolve(target)
	if cmd == nil {
		return nil, false
	}
	logging.Logger.WithField("op", cmd.Op()).WithField("id", e.item.ID).Debug("drag dropped")
	return cmd, true
}

func (e *Engine) reset() {
	e.state = Idle
	e.item = Draggable{}
	e.over = nil
}

// closest picks, among accepting targets under the pointer, the one
// whose centre is nearest.
func (e *Engine) closest(at Point) *Droppable {
	var best *Droppable
	bestDist := 0
	for i := range e.targets {
		d := &e.targets[i]
		if !accepts(e.item.Kind, *d) || !d.Rect.Contains(at) {
			continue
		}
		if dist := distance2(at, d.Rect); best == nil || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

func accepts(k Kind, d Droppable) bool {
	switch k {
	case KindTask:
		return d.Holds == KindTask && d.Kind != TargetUncategorized
	case KindColumn:
		return d.Holds == KindColumn && d.Kind == TargetItem
	case KindProject:
		return d.Holds == KindProject
	case KindFolder:
		return d.Holds == KindProject && d.Kind != TargetUncategorized
	}
	return false
}

func (e *Engine) resolve(d Droppable) mutation.Command {
	item := e.item
	switch item.Kind {
	case KindTask:
		to, idx := placement(item, d)
		if to == item.Container && idx == item.Index {
			return nil
		}
		return mutation.MoveTask{ProjectID: item.ProjectID, TaskID: item.ID, ToColumnID: to, Position: idx}

	case KindColumn:
		if d.Container != item.Container || d.Index == item.Index {
			return nil
		}
		return mutation.MoveColumn{ProjectID: item.Container, ColumnID: item.ID, ToIndex: d.Index}

	case KindProject:
		if d.Kind == TargetUncategorized {
			if item.Container == "" {
				return nil
			}
			return mutation.MoveProjectToFolder{ProjectID: item.ID, ToFolderID: "", Position: -1}
		}
		to, idx := placement(item, d)
		if to == item.Container && (to == "" || idx == item.Index) {
			return nil
		}
		if to != item.Container && d.Kind == TargetContainer {
			idx = -1
		}
		return mutation.MoveProjectToFolder{ProjectID: item.ID, ToFolderID: to, Position: idx}

	case KindFolder:
		return e.resolveFolder(d)
	}
	return nil
}

// placement returns the container and index an item lands at when dropped
// on d. Dropping on a container appends.
func placement(item Draggable, d Droppable) (string, int) {
	if d.Kind == TargetItem {
		return d.Container, d.Index
	}
	if d.ID == item.Container {
		return d.ID, d.Count - 1
	}
	return d.ID, d.Count
}

// resolveFolder reorders folders. A project target stands for its folder.
func (e *Engine) resolveFolder(d Droppable) mutation.Command {
	targetID := d.ID
	if d.Kind == TargetItem {
		if d.Container == "" {
			return nil
		}
		targetID = d.Container
	}

	var folders []Droppable
	for _, t := range e.targets {
		if t.Kind == TargetContainer && t.Holds == KindProject {
			folders = append(folders, t)
		}
	}
	sort.SliceStable(folders, func(i, j int) bool { return folders[i].Index < folders[j].Index })
	order := make([]string, 0, len(folders))
	from, to := -1, -1
	for i, f := range folders {
		order = append(order, f.ID)
		if f.ID == e.item.ID {
			from = i
		}
		if f.ID == targetID {
			to = i
		}
	}
	if from < 0 || to < 0 || from == to {
		return nil
	}
	return mutation.ReorderFolders{IDs: model.ArrayMove(order, from, to)}
}
