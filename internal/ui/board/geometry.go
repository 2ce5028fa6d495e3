package board

import (
	"sort"

	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/reorder"
)

// ColumnWidth is the outer width of a board column, borders included.
const ColumnWidth = 24

// cardHeight is the outer height of a task card.
const cardHeight = 3

// uncategorizedID names the drop zone for projects outside every folder.
const uncategorizedID = "uncategorized"

type rowKind int

const (
	rowTitle rowKind = iota
	rowFolder
	rowProject
	rowUncategorized
)

// sideRow is one line of the sidebar. For projects, folder is the
// containing folder ("" when uncategorized) and index the position in it.
// For folders, index is the display position and count the number of
// project ids the folder holds.
type sideRow struct {
	kind   rowKind
	id     string
	folder string
	index  int
	count  int
	label  string
}

func (m Model) sidebarRows() []sideRow {
	rows := []sideRow{{kind: rowTitle, label: "Projects"}}
	filed := make(map[string]bool)

	for i, fid := range m.folderOrder {
		f := m.folders[fid]
		rows = append(rows, sideRow{kind: rowFolder, id: fid, index: i, count: len(f.ProjectIDs), label: f.Name})
		for j, pid := range f.ProjectIDs {
			p, ok := m.projects[pid]
			if !ok {
				continue
			}
			filed[pid] = true
			rows = append(rows, sideRow{kind: rowProject, id: pid, folder: fid, index: j, label: p.Name})
		}
	}

	rows = append(rows, sideRow{kind: rowUncategorized, label: "Uncategorized"})
	j := 0
	for _, pid := range m.projectOrder {
		if filed[pid] {
			continue
		}
		rows = append(rows, sideRow{kind: rowProject, id: pid, index: j, label: m.projects[pid].Name})
		j++
	}
	return rows
}

// sidebarContentWidth excludes the resize handle in the last column.
func (m Model) sidebarContentWidth() int {
	if w := m.layout.SidebarWidth - 1; w > 0 {
		return w
	}
	return 0
}

func (m Model) chatLeft() int {
	return m.layout.Width - m.chatWidth
}

// boardWidth is the room between the sidebar and the chat panel.
func (m Model) boardWidth() int {
	w := m.layout.BoardWidth()
	if m.chatOpen {
		w -= m.chatWidth + 1
	}
	if w < 0 {
		return 0
	}
	return w
}

// visibleColumns returns how many columns fit the board, at least one.
func (m Model) visibleColumns() int {
	n := (m.boardWidth() + 1) / (ColumnWidth + 1)
	if n < 1 {
		return 1
	}
	return n
}

func (m Model) columnX(i int) int {
	return m.layout.BoardLeft() + (i-m.colOffset)*(ColumnWidth+1)
}

// shownColumns returns the indexes into ColumnOrder currently on screen.
func (m Model) shownColumns(p model.Project) []int {
	var out []int
	for i := m.colOffset; i < len(p.ColumnOrder) && i < m.colOffset+m.visibleColumns(); i++ {
		out = append(out, i)
	}
	return out
}

// fitCards returns how many cards of n fit a column of height h and how
// many are left over for the "+N more" line.
func fitCards(n, h int) (visible, more int) {
	avail := h - 3
	if avail < 0 {
		return 0, n
	}
	if n*cardHeight <= avail {
		return n, 0
	}
	visible = (avail - 1) / cardHeight
	if visible < 0 {
		visible = 0
	}
	return visible, n - visible
}

func cardRect(colX, top, j int) reorder.Rect {
	return reorder.Rect{X: colX + 1, Y: top + 2 + j*cardHeight, W: ColumnWidth - 2, H: cardHeight}
}

// Targets returns every drop target on screen. Folder containers are
// always registered, with an empty rect when scrolled off, so a folder
// drag sees the full folder order.
func (m Model) Targets() []reorder.Droppable {
	var out []reorder.Droppable
	top, h := m.layout.ContentTop(), m.layout.ContentHeight()
	sw := m.sidebarContentWidth()

	for i, r := range m.sidebarRows() {
		y := top + i
		row := reorder.Rect{X: 0, Y: y, W: sw, H: 1}
		if i >= h {
			row.H = 0
		}
		switch r.kind {
		case rowFolder:
			out = append(out, reorder.Droppable{
				ID: r.id, Kind: reorder.TargetContainer, Holds: reorder.KindProject,
				Index: r.index, Count: r.count, Rect: row,
			})
		case rowProject:
			if i < h {
				out = append(out, reorder.Droppable{
					ID: r.id, Kind: reorder.TargetItem, Holds: reorder.KindProject,
					Container: r.folder, Index: r.index, Rect: row,
				})
			}
		case rowUncategorized:
			if i < h {
				row.H = top + h - y
				out = append(out, reorder.Droppable{
					ID: uncategorizedID, Kind: reorder.TargetUncategorized, Holds: reorder.KindProject, Rect: row,
				})
			}
		}
	}

	p, ok := m.projects[m.current]
	if !ok {
		return out
	}
	for _, i := range m.shownColumns(p) {
		colID := p.ColumnOrder[i]
		c := p.Columns[colID]
		x := m.columnX(i)
		rect := reorder.Rect{X: x, Y: top, W: ColumnWidth, H: h}
		out = append(out,
			reorder.Droppable{ID: colID, Kind: reorder.TargetItem, Holds: reorder.KindColumn, Container: p.ID, Index: i, Rect: rect},
			reorder.Droppable{ID: colID, Kind: reorder.TargetContainer, Holds: reorder.KindTask, Container: p.ID, Count: len(c.TaskIDs), Rect: rect},
		)
		visible, _ := fitCards(len(c.TaskIDs), h)
		for j := 0; j < visible; j++ {
			out = append(out, reorder.Droppable{
				ID: c.TaskIDs[j], Kind: reorder.TargetItem, Holds: reorder.KindTask,
				Container: colID, Index: j, Rect: cardRect(x, top, j),
			})
		}
	}
	return out
}

// Zone classifies what lies under the pointer.
type Zone int

const (
	ZoneNone Zone = iota
	// ZoneItem is a draggable item.
	ZoneItem
	ZoneSidebarHandle
	ZoneChatHandle
)

// Hit is the result of HitTest.
type Hit struct {
	Zone Zone
	Item reorder.Draggable
}

// HitTest finds what a press at pt grabs.
func (m Model) HitTest(pt reorder.Point) Hit {
	top, h := m.layout.ContentTop(), m.layout.ContentHeight()
	if pt.Y < top || pt.Y >= top+h {
		return Hit{}
	}

	if pt.X == m.layout.SidebarWidth-1 {
		return Hit{Zone: ZoneSidebarHandle}
	}
	if m.chatOpen && pt.X == m.chatLeft() {
		return Hit{Zone: ZoneChatHandle}
	}

	if pt.X < m.sidebarContentWidth() {
		rows := m.sidebarRows()
		i := pt.Y - top
		if i >= len(rows) {
			return Hit{}
		}
		r := rows[i]
		switch r.kind {
		case rowFolder:
			return Hit{Zone: ZoneItem, Item: reorder.Draggable{ID: r.id, Kind: reorder.KindFolder, Index: r.index}}
		case rowProject:
			return Hit{Zone: ZoneItem, Item: reorder.Draggable{ID: r.id, Kind: reorder.KindProject, Container: r.folder, Index: r.index}}
		}
		return Hit{}
	}

	p, ok := m.projects[m.current]
	if !ok {
		return Hit{}
	}
	for _, i := range m.shownColumns(p) {
		x := m.columnX(i)
		if pt.X < x || pt.X >= x+ColumnWidth {
			continue
		}
		colID := p.ColumnOrder[i]
		if pt.Y == top+1 {
			return Hit{Zone: ZoneItem, Item: reorder.Draggable{ID: colID, Kind: reorder.KindColumn, Container: p.ID, Index: i}}
		}
		c := p.Columns[colID]
		visible, _ := fitCards(len(c.TaskIDs), h)
		for j := 0; j < visible; j++ {
			if cardRect(x, top, j).Contains(pt) {
				return Hit{Zone: ZoneItem, Item: reorder.Draggable{
					ID: c.TaskIDs[j], Kind: reorder.KindTask, Container: colID, Index: j, ProjectID: p.ID,
				}}
			}
		}
	}
	return Hit{}
}

// reconcileOrder keeps the known order of folders still present and
// appends new ones by name.
func reconcileOrder(prev []string, folders map[string]model.Folder) []string {
	out := make([]string, 0, len(folders))
	seen := make(map[string]bool, len(folders))
	for _, id := range prev {
		if _, ok := folders[id]; ok && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	var fresh []string
	for id := range folders {
		if !seen[id] {
			fresh = append(fresh, id)
		}
	}
	sort.Slice(fresh, func(i, j int) bool {
		a, b := folders[fresh[i]], folders[fresh[j]]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return append(out, fresh...)
}
