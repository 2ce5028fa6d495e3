package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/boardsync/internal/logging"
	"github.com/nhle/boardsync/internal/reorder"
	"github.com/nhle/boardsync/internal/ui/board"
)

// handleMouse turns pointer events into panel resizes, drags and clicks.
// A press that is released before the pointer moves is a click.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	at := reorder.Point{X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		hit := m.board.HitTest(at)
		switch hit.Zone {
		case board.ZoneSidebarHandle:
			m.resizing = m.sidebar
			m.resizing.Press(msg.X)
		case board.ZoneChatHandle:
			m.resizing = m.chat
			m.resizing.Press(msg.X)
		case board.ZoneItem:
			m.engine.SetTargets(m.board.Targets())
			if err := m.engine.Start(hit.Item, at); err != nil {
				logging.Logger.WithError(err).Debug("press ignored")
			}
		}
		return m, nil

	case tea.MouseActionMotion:
		if m.resizing != nil {
			m.resizing.Drag(msg.X)
			m.applyWidths()
			return m, nil
		}
		if m.engine.State() == reorder.Idle {
			return m, nil
		}
		over, ok := m.engine.Move(at)
		if m.engine.State() == reorder.Dragging {
			active, _ := m.engine.Active()
			m.board.SetDrag(active, over, ok)
		}
		return m, nil

	case tea.MouseActionRelease:
		if m.resizing != nil {
			r := m.resizing
			m.resizing = nil
			r.Drag(msg.X)
			if err := r.Release(); err != nil {
				m.notifyError("Could not save panel width.", err)
			}
			m.applyWidths()
			return m, nil
		}
		if m.engine.State() == reorder.Idle {
			return m, nil
		}
		item, _ := m.engine.Active()
		wasClick := m.engine.State() == reorder.Pending
		cmd, ok := m.engine.Drop(at)
		m.board.ClearDrag()
		if ok {
			dcmd := m.dispatch(cmd)
			return m, dcmd
		}
		if wasClick {
			m.board.Select(item)
		}
		return m, nil
	}
	return m, nil
}
