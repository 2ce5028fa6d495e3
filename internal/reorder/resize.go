package reorder

import (
	"fmt"

	"github.com/nhle/boardsync/internal/logging"
)

// Resizable panels.
const (
	PanelSidebar = "sidebar"
	PanelChat    = "chat"
)

// WidthSaver persists a panel width.
type WidthSaver interface {
	SaveWidth(panel string, width int) error
}

// Resizer tracks a drag on a panel edge. The width follows the pointer,
// clamped to [Min, Max], and is saved when the pointer is released.
type Resizer struct {
	panel    string
	min, max int
	width    int
	saver    WidthSaver
	// dir is -1 for panels anchored to the right edge, whose handle is on
	// their left.
	dir int

	active bool
	startX int
	startW int
}

// NewResizer returns a resizer for panel starting at width. saver may be
// nil.
func NewResizer(panel string, min, max, width int, saver WidthSaver) *Resizer {
	r := &Resizer{panel: panel, min: min, max: max, saver: saver, dir: 1}
	if panel == PanelChat {
		r.dir = -1
	}
	r.width = r.clamp(width)
	return r
}

// Width returns the current width.
func (r *Resizer) Width() int { return r.width }

// Resizing reports whether a resize gesture is in progress.
func (r *Resizer) Resizing() bool { return r.active }

// Press starts a resize at pointer column x.
func (r *Resizer) Press(x int) {
	r.active = true
	r.startX = x
	r.startW = r.width
}

// Drag moves the edge to pointer column x and returns the new width.
func (r *Resizer) Drag(x int) int {
	if r.active {
		r.width = r.clamp(r.startW + r.dir*(x-r.startX))
	}
	return r.width
}

// Release ends the gesture and saves the width if it changed.
func (r *Resizer) Release() error {
	if !r.active {
		return nil
	}
	r.active = false
	if r.width == r.startW || r.saver == nil {
		return nil
	}
	if err := r.saver.SaveWidth(r.panel, r.width); err != nil {
		return fmt.Errorf("saving %s width: %w", r.panel, err)
	}
	logging.Logger.WithField("panel", r.panel).WithField("width", r.width).Debug("panel resized")
	return nil
}

// Step changes the width by delta cells, as the keyboard does, and saves
// the result.
func (r *Resizer) Step(delta int) error {
	if r.active {
		return nil
	}
	r.Press(0)
	r.width = r.clamp(r.startW + delta)
	return r.Release()
}

// SetWidth sets the width without a gesture, for example from stored
// preferences.
func (r *Resizer) SetWidth(w int) {
	r.width = r.clamp(w)
}

func (r *Resizer) clamp(w int) int {
	if w < r.min {
		return r.min
	}
	if w > r.max {
		return r.max
	}
	return w
}
