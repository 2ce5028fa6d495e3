package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/reorder"
	"github.com/nhle/boardsync/internal/theme"
)

// View renders the content area: sidebar, handle, board and the chat
// panel when open. Its rows line up with Targets and HitTest.
func (m Model) View() string {
	h := m.layout.ContentHeight()
	if h <= 0 {
		return ""
	}
	parts := []string{
		m.renderSidebar(h),
		blank(1, h),
		m.renderBoard(h),
	}
	if m.chatOpen {
		parts = append(parts, blank(1, h), m.renderChat(h))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderSidebar(h int) string {
	w := m.sidebarContentWidth()
	rows := m.sidebarRows()
	lines := make([]string, 0, h)
	handle := theme.HandleStyle.Render("│")

	for i := 0; i < h; i++ {
		var line string
		if i < len(rows) {
			line = m.renderSideRow(rows[i], w)
		}
		lines = append(lines, fit(line, w)+handle)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSideRow(r sideRow, w int) string {
	label := truncate(r.label, w-4)
	selected := m.focus == FocusSidebar && r.kind == m.sideRow && r.id == m.sideID
	over := m.drag.hasOver && m.drag.over.Holds == reorder.KindProject &&
		((r.kind == rowUncategorized && m.drag.over.Kind == reorder.TargetUncategorized) ||
			(r.id != "" && r.id == m.drag.over.ID))
	dragged := m.drag.active.ID != "" && m.drag.active.ID == r.id &&
		(m.drag.active.Kind == reorder.KindProject || m.drag.active.Kind == reorder.KindFolder)

	var out string
	switch r.kind {
	case rowTitle:
		out = theme.ColumnTitleStyle.Render(label)
	case rowFolder, rowUncategorized:
		style := theme.SidebarFolderStyle
		if selected {
			style = theme.SelectedItemStyle
		}
		out = style.Render("▾ " + label)
	case rowProject:
		style := theme.SidebarItemStyle
		switch {
		case selected:
			style = theme.SelectedItemStyle
		case r.id == m.current:
			style = theme.CurrentProjectStyle
		}
		out = style.Render(label)
	}
	if over {
		out = lipgloss.NewStyle().Foreground(theme.ColorYellow).Render("» ") + out
	}
	if dragged {
		out = theme.DraggedStyle.Render(out)
	}
	return out
}

func (m Model) renderBoard(h int) string {
	w := m.boardWidth()
	p, ok := m.projects[m.current]
	var content string
	switch {
	case !ok:
		content = theme.HelpStyle.Render("No project selected. Press P to create one.")
	case len(p.ColumnOrder) == 0:
		content = theme.HelpStyle.Render("No columns. Press N to add one.")
	default:
		cols := make([]string, 0, len(p.ColumnOrder))
		for _, i := range m.shownColumns(p) {
			cols = append(cols, lipgloss.NewStyle().MarginRight(1).Render(m.renderColumn(p, i, h)))
		}
		content = lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	}
	clipped := lipgloss.NewStyle().MaxWidth(w).MaxHeight(h).Render(content)
	return lipgloss.NewStyle().Width(w).Height(h).Render(clipped)
}

func (m Model) renderColumn(p model.Project, i, h int) string {
	colID := p.ColumnOrder[i]
	c := p.Columns[colID]
	inner := ColumnWidth - 2

	titleStyle := theme.ColumnTitleStyle
	if m.focus == FocusBoard && m.selCol == colID && m.selTask == "" {
		titleStyle = titleStyle.Reverse(true)
	}
	lines := []string{titleStyle.Render(truncate(fmt.Sprintf("%s (%d)", c.Title, len(c.TaskIDs)), inner))}

	visible, more := fitCards(len(c.TaskIDs), h)
	for j := 0; j < visible; j++ {
		lines = append(lines, m.renderCard(p, colID, c.TaskIDs[j]))
	}
	if more > 0 {
		lines = append(lines, theme.HelpStyle.Render(fmt.Sprintf("+%d more", more)))
	}

	style := theme.ColumnStyle
	if m.drag.hasOver && m.drag.over.ID == colID &&
		(m.drag.over.Kind == reorder.TargetContainer || m.drag.over.Holds == reorder.KindColumn) {
		style = style.BorderForeground(theme.ColorYellow)
	}
	out := style.Width(inner).Height(h - 2).MaxHeight(h).Render(strings.Join(lines, "\n"))
	if m.drag.active.Kind == reorder.KindColumn && m.drag.active.ID == colID {
		out = theme.DraggedStyle.Render(out)
	}
	return out
}

func (m Model) renderCard(p model.Project, colID, taskID string) string {
	t := p.Tasks[taskID]
	width := ColumnWidth - 4

	marker := theme.PriorityStyle(t.Priority).Render("●")
	title := truncate(t.Title, width-2)
	if t.Completed {
		marker = theme.DoneStyle.Render("✓")
		title = theme.DoneStyle.Render(title)
	}

	style := theme.CardStyle
	switch {
	case m.drag.hasOver && m.drag.over.Holds == reorder.KindTask &&
		m.drag.over.Kind == reorder.TargetItem && m.drag.over.ID == taskID:
		style = theme.DropTargetStyle
	case m.focus == FocusBoard && m.selCol == colID && m.selTask == taskID:
		style = theme.SelectedCardStyle
	}
	out := style.Width(width).Render(marker + " " + title)
	if m.drag.active.Kind == reorder.KindTask && m.drag.active.ID == taskID {
		out = theme.DraggedStyle.Render(out)
	}
	return out
}

func (m Model) renderChat(h int) string {
	w := m.chatWidth - 1
	p, ok := m.projects[m.current]

	lines := []string{theme.ColumnTitleStyle.Render(truncate("Chat", w))}
	if ok {
		lines[0] = theme.ColumnTitleStyle.Render(truncate("Chat · "+p.Name, w))
		msgs := p.ChatMessages
		if room := h - 1; len(msgs) > room {
			msgs = msgs[len(msgs)-room:]
		}
		for _, msg := range msgs {
			author := theme.SidebarFolderStyle.Render(truncate(msg.Author.Name, w/3) + ":")
			lines = append(lines, author+" "+truncate(msg.Content, w-lipgloss.Width(author)-1))
		}
	}

	handle := theme.HandleStyle.Render("│")
	out := make([]string, 0, h)
	for i := 0; i < h; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		out = append(out, handle+fit(line, w))
	}
	return strings.Join(out, "\n")
}

// fit pads or cuts a single rendered line to exactly w cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Width(w).Render(lipgloss.NewStyle().MaxWidth(w).Render(s))
}

func blank(w, h int) string {
	line := strings.Repeat(" ", w)
	lines := make([]string, h)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// truncate shortens plain text to at most w cells, marking the cut.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= w {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if used+rw > w-1 {
			break
		}
		b.WriteRune(r)
		used += rw
	}
	return b.String() + "…"
}
