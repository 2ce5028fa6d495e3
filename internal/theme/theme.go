package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/boardsync/internal/model"
)

// Adaptive color pairs (dark value, light value). Apply selects which side
// is used.
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// Apply switches adaptive colours to the stored preference instead of the
// detected terminal background.
func Apply(t model.Theme) {
	lipgloss.SetHasDarkBackground(t != model.ThemeLight)
}

// HeaderStyle is used for the title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps overlays such as help and forms.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// SidebarItemStyle is the base style for project rows.
var SidebarItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SidebarFolderStyle renders folder headers.
var SidebarFolderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGray)

// SelectedItemStyle highlights the focused sidebar row.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// CurrentProjectStyle marks the open project in the sidebar.
var CurrentProjectStyle = SidebarItemStyle.
	Foreground(ColorBlue)

// ColumnStyle frames a board column.
var ColumnStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ColumnTitleStyle renders the column heading.
var ColumnTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// CardStyle frames a task card.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorSubtle)

// SelectedCardStyle frames the card under the keyboard cursor.
var SelectedCardStyle = CardStyle.
	BorderForeground(ColorBlue).
	Bold(true)

// DropTargetStyle highlights what a dragged item would land on.
var DropTargetStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(ColorYellow)

// DraggedStyle dims the item being dragged.
var DraggedStyle = lipgloss.NewStyle().
	Faint(true)

// HandleStyle draws the sidebar resize handle.
var HandleStyle = lipgloss.NewStyle().
	Foreground(ColorSubtle)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DoneStyle renders completed tasks.
var DoneStyle = lipgloss.NewStyle().
	Strikethrough(true).
	Foreground(ColorGray)

// NoticeStyle returns the status bar style for a notice kind.
func NoticeStyle(kind string) lipgloss.Style {
	base := StatusBarStyle.Bold(true)

	switch kind {
	case "success":
		return base.Background(ColorGreen)
	case "error":
		return base.Background(ColorRed)
	default:
		return base.Background(ColorBlue)
	}
}

// PriorityStyle returns a color-coded style for a task priority.
func PriorityStyle(priority string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch priority {
	case model.PriorityHigh:
		return base.Foreground(ColorRed)
	case model.PriorityMedium:
		return base.Foreground(ColorOrange)
	case model.PriorityLow:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}
