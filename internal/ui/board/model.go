// Package board renders the sidebar, the kanban columns of the open
// project and its chat, and maps screen cells back to draggable items and
// drop targets.
package board

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/boardsync/internal/keys"
	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/mutation"
	"github.com/nhle/boardsync/internal/reorder"
	"github.com/nhle/boardsync/internal/ui"
)

// Focus is the pane receiving cursor keys.
type Focus int

const (
	FocusSidebar Focus = iota
	FocusBoard
)

// Selection is the item under the keyboard cursor. Kind is zero when
// nothing is selected.
type Selection struct {
	Kind      reorder.Kind
	ID        string
	ProjectID string
	ColumnID  string
	FolderID  string
}

// dragView is what the board needs to know about a drag in progress.
type dragView struct {
	active  reorder.Draggable
	over    reorder.Droppable
	hasOver bool
}

// Model is the board component. It holds copies of the store's projects
// and folders, refreshed through SetData.
type Model struct {
	keys   *keys.KeyMap
	layout ui.Layout

	projects     map[string]model.Project
	projectOrder []string
	folders      map[string]model.Folder
	folderOrder  []string
	current      string

	focus   Focus
	sideRow rowKind
	sideID  string
	selCol  string
	selTask string

	colOffset int
	chatOpen  bool
	chatWidth int

	drag dragView
}

// New creates an empty board.
func New(k *keys.KeyMap, l ui.Layout) Model {
	return Model{
		keys:     k,
		layout:   l,
		projects: make(map[string]model.Project),
		folders:  make(map[string]model.Folder),
		focus:    FocusBoard,
	}
}

// SetLayout applies new terminal dimensions or sidebar width.
func (m *Model) SetLayout(l ui.Layout) {
	m.layout = l
	m.scrollToSelection()
}

// SetChat shows or hides the chat panel at the given width.
func (m *Model) SetChat(open bool, width int) {
	m.chatOpen = open
	m.chatWidth = width
	m.scrollToSelection()
}

// SetData replaces the board's copy of the store. projects must be sorted
// the way the sidebar lists uncategorized projects.
func (m *Model) SetData(projects []model.Project, folders map[string]model.Folder) {
	m.projects = make(map[string]model.Project, len(projects))
	m.projectOrder = m.projectOrder[:0]
	for _, p := range projects {
		m.projects[p.ID] = p
		m.projectOrder = append(m.projectOrder, p.ID)
	}
	m.folders = folders
	if m.folders == nil {
		m.folders = make(map[string]model.Folder)
	}
	m.folderOrder = reconcileOrder(m.folderOrder, m.folders)

	if _, ok := m.projects[m.current]; !ok {
		m.current = ""
		for _, r := range m.sidebarRows() {
			if r.kind == rowProject {
				m.current = r.id
				break
			}
		}
		m.selCol, m.selTask, m.colOffset = "", "", 0
	}
	m.fixSelection()
}

// Current returns the id of the open project, or "".
func (m Model) Current() string {
	return m.current
}

// Open shows project id on the board.
func (m *Model) Open(id string) {
	if _, ok := m.projects[id]; !ok || id == m.current {
		return
	}
	m.current = id
	m.selCol, m.selTask, m.colOffset = "", "", 0
	m.fixSelection()
}

// FolderOrder returns the display order of folders.
func (m Model) FolderOrder() []string {
	return append([]string(nil), m.folderOrder...)
}

// SetFolderOrder replaces the display order of folders. Unknown ids are
// dropped and missing ones appended.
func (m *Model) SetFolderOrder(ids []string) {
	m.folderOrder = reconcileOrder(ids, m.folders)
}

// Focus returns the focused pane.
func (m Model) Focus() Focus {
	return m.focus
}

// Selected returns the item under the keyboard cursor.
func (m Model) Selected() Selection {
	if m.focus == FocusSidebar {
		switch m.sideRow {
		case rowFolder:
			return Selection{Kind: reorder.KindFolder, ID: m.sideID, FolderID: m.sideID}
		case rowProject:
			return Selection{Kind: reorder.KindProject, ID: m.sideID, ProjectID: m.sideID,
				FolderID: model.FolderOf(m.folders, m.sideID)}
		}
		return Selection{}
	}
	if m.current == "" || m.selCol == "" {
		return Selection{}
	}
	if m.selTask != "" {
		return Selection{Kind: reorder.KindTask, ID: m.selTask, ProjectID: m.current, ColumnID: m.selCol}
	}
	return Selection{Kind: reorder.KindColumn, ID: m.selCol, ProjectID: m.current, ColumnID: m.selCol}
}

// Select moves the cursor to a clicked item. Clicking a project opens it.
func (m *Model) Select(item reorder.Draggable) {
	switch item.Kind {
	case reorder.KindFolder:
		m.focus, m.sideRow, m.sideID = FocusSidebar, rowFolder, item.ID
	case reorder.KindProject:
		m.focus, m.sideRow, m.sideID = FocusSidebar, rowProject, item.ID
		m.Open(item.ID)
	case reorder.KindColumn:
		m.focus, m.selCol, m.selTask = FocusBoard, item.ID, ""
	case reorder.KindTask:
		m.focus, m.selCol, m.selTask = FocusBoard, item.Container, item.ID
	}
	m.scrollToSelection()
}

// SetDrag tells the board what is being dragged and what is under the
// pointer so it can highlight both.
func (m *Model) SetDrag(active reorder.Draggable, over reorder.Droppable, hasOver bool) {
	m.drag = dragView{active: active, over: over, hasOver: hasOver}
}

// ClearDrag removes drag highlighting.
func (m *Model) ClearDrag() {
	m.drag = dragView{}
}

// Update handles cursor keys. Editing keys are left to the caller.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(kmsg, m.keys.Focus):
		if m.focus == FocusSidebar {
			m.focus = FocusBoard
		} else {
			m.focus = FocusSidebar
		}
	case key.Matches(kmsg, m.keys.Select):
		if m.focus == FocusSidebar && m.sideRow == rowProject {
			m.Open(m.sideID)
			m.focus = FocusBoard
		}
	case key.Matches(kmsg, m.keys.Up):
		m.step(0, -1)
	case key.Matches(kmsg, m.keys.Down):
		m.step(0, 1)
	case key.Matches(kmsg, m.keys.Left):
		m.step(-1, 0)
	case key.Matches(kmsg, m.keys.Right):
		m.step(1, 0)
	}
	return m, nil
}

func (m *Model) step(dx, dy int) {
	if m.focus == FocusSidebar {
		if dy == 0 {
			return
		}
		rows := m.selectableRows()
		if len(rows) == 0 {
			return
		}
		i := m.sideIndex(rows)
		i = clampIndex(i+dy, len(rows))
		m.sideRow, m.sideID = rows[i].kind, rows[i].id
		return
	}

	p, ok := m.projects[m.current]
	if !ok || len(p.ColumnOrder) == 0 {
		return
	}
	ci := clampIndex(p.ColumnIndex(m.selCol), len(p.ColumnOrder))
	ti := -1
	if m.selTask != "" {
		ti = model.IndexOf(p.Columns[m.selCol].TaskIDs, m.selTask)
	}
	if dx != 0 {
		ci = clampIndex(ci+dx, len(p.ColumnOrder))
	}
	m.selCol = p.ColumnOrder[ci]
	ids := p.Columns[m.selCol].TaskIDs
	ti += dy
	if ti >= len(ids) {
		ti = len(ids) - 1
	}
	if ti < 0 {
		m.selTask = ""
	} else {
		m.selTask = ids[ti]
	}
	m.scrollToSelection()
}

// MoveSelected returns the command moving the selected item one step in
// direction (dx, dy), as the keyboard alternative to dragging.
func (m Model) MoveSelected(dx, dy int) (mutation.Command, bool) {
	sel := m.Selected()
	switch sel.Kind {
	case reorder.KindTask:
		p := m.projects[m.current]
		ci := p.ColumnIndex(sel.ColumnID)
		ti := model.IndexOf(p.Columns[sel.ColumnID].TaskIDs, sel.ID)
		if dx != 0 {
			to := ci + dx
			if to < 0 || to >= len(p.ColumnOrder) {
				return nil, false
			}
			dest := p.ColumnOrder[to]
			pos := ti
			if n := len(p.Columns[dest].TaskIDs); pos > n {
				pos = n
			}
			return mutation.MoveTask{ProjectID: p.ID, TaskID: sel.ID, ToColumnID: dest, Position: pos}, true
		}
		to := ti + dy
		if to < 0 || to >= len(p.Columns[sel.ColumnID].TaskIDs) {
			return nil, false
		}
		return mutation.MoveTask{ProjectID: p.ID, TaskID: sel.ID, ToColumnID: sel.ColumnID, Position: to}, true

	case reorder.KindColumn:
		p := m.projects[m.current]
		from := p.ColumnIndex(sel.ID)
		to := from + dx
		if dx == 0 || to < 0 || to >= len(p.ColumnOrder) {
			return nil, false
		}
		return mutation.MoveColumn{ProjectID: p.ID, ColumnID: sel.ID, ToIndex: to}, true

	case reorder.KindProject:
		if dy == 0 || sel.FolderID == "" {
			return nil, false
		}
		ids := m.folders[sel.FolderID].ProjectIDs
		to := model.IndexOf(ids, sel.ID) + dy
		if to < 0 || to >= len(ids) {
			return nil, false
		}
		return mutation.MoveProjectToFolder{ProjectID: sel.ID, ToFolderID: sel.FolderID, Position: to}, true

	case reorder.KindFolder:
		from := model.IndexOf(m.folderOrder, sel.ID)
		to := from + dy
		if dy == 0 || from < 0 || to < 0 || to >= len(m.folderOrder) {
			return nil, false
		}
		return mutation.ReorderFolders{IDs: model.ArrayMove(m.folderOrder, from, to)}, true
	}
	return nil, false
}

func (m Model) selectableRows() []sideRow {
	var out []sideRow
	for _, r := range m.sidebarRows() {
		if r.kind == rowFolder || r.kind == rowProject {
			out = append(out, r)
		}
	}
	return out
}

func (m Model) sideIndex(rows []sideRow) int {
	for i, r := range rows {
		if r.kind == m.sideRow && r.id == m.sideID {
			return i
		}
	}
	return 0
}

// fixSelection moves cursors off items that no longer exist.
func (m *Model) fixSelection() {
	rows := m.selectableRows()
	if len(rows) == 0 {
		m.sideRow, m.sideID = rowTitle, ""
	} else {
		r := rows[m.sideIndex(rows)]
		m.sideRow, m.sideID = r.kind, r.id
	}

	p, ok := m.projects[m.current]
	if !ok || len(p.ColumnOrder) == 0 {
		m.selCol, m.selTask = "", ""
		return
	}
	if _, ok := p.Columns[m.selCol]; !ok {
		m.selCol = p.ColumnOrder[0]
		m.selTask = ""
	}
	if m.selTask != "" {
		if col, ok := p.ColumnOf(m.selTask); ok {
			m.selCol = col
		} else {
			m.selTask = ""
		}
	}
	m.scrollToSelection()
}

// scrollToSelection keeps the selected column on screen.
func (m *Model) scrollToSelection() {
	p, ok := m.projects[m.current]
	if !ok {
		m.colOffset = 0
		return
	}
	n := m.visibleColumns()
	if i := p.ColumnIndex(m.selCol); i >= 0 {
		if i < m.colOffset {
			m.colOffset = i
		}
		if i >= m.colOffset+n {
			m.colOffset = i - n + 1
		}
	}
	if last := len(p.ColumnOrder) - n; m.colOffset > last {
		m.colOffset = last
	}
	if m.colOffset < 0 {
		m.colOffset = 0
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
