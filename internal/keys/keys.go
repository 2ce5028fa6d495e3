package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding
	Focus key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Inbox
	Inbox  key.Binding
	Search key.Binding

	// Jump opens the go-to-project palette
	Jump key.Binding

	// Board editing
	NewTask     key.Binding
	NewColumn   key.Binding
	NewProject  key.Binding
	NewFolder   key.Binding
	Rename      key.Binding
	Delete      key.Binding
	ToggleDone  key.Binding
	MarkAllRead key.Binding
	MoveLeft    key.Binding
	MoveRight   key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
	ToggleTheme key.Binding
	ShrinkPanel key.Binding
	GrowPanel   key.Binding

	// Chat panel
	ToggleChat key.Binding
	SendChat   key.Binding

	// Task detail
	Comment       key.Binding
	AddSubtask    key.Binding
	ToggleSubtask key.Binding
	DeleteSubtask key.Binding

	// Teams
	Teams   key.Binding
	NewTeam key.Binding
	Invite  key.Binding
	Approve key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "right"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "sidebar/board"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open project/task"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back / cancel drag"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Inbox: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "inbox"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search inbox"),
		),
		Jump: key.NewBinding(
			key.WithKeys(":", "ctrl+p"),
			key.WithHelp(":", "go to project"),
		),
		NewTask: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		NewColumn: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "new column"),
		),
		NewProject: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "new project"),
		),
		NewFolder: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "new folder"),
		),
		Rename: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		ToggleDone: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle done"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark notifications read"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("H", "<"),
			key.WithHelp("H", "move left"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys("L", ">"),
			key.WithHelp("L", "move right"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "move down"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "light/dark"),
		),
		ShrinkPanel: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "narrow sidebar"),
		),
		GrowPanel: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "widen sidebar"),
		),
		ToggleChat: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "toggle chat"),
		),
		SendChat: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "send chat message"),
		),
		Comment: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add comment"),
		),
		AddSubtask: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "add subtask"),
		),
		ToggleSubtask: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "check subtask"),
		),
		DeleteSubtask: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete subtask or file"),
		),
		Teams: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "teams"),
		),
		NewTeam: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new team"),
		),
		Invite: key.NewBinding(
			key.WithKeys("I"),
			key.WithHelp("I", "invite member"),
		),
		Approve: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "approve request"),
		),
		Deny: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "deny request"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Focus, k.NewTask, k.MoveLeft, k.MoveRight,
		k.Refresh, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.Focus, k.Select, k.Back},
		{k.NewTask, k.NewColumn, k.NewProject, k.NewFolder, k.Rename, k.Delete, k.ToggleDone},
		{k.MoveLeft, k.MoveRight, k.MoveUp, k.MoveDown, k.ShrinkPanel, k.GrowPanel},
		{k.ToggleChat, k.SendChat, k.Refresh, k.MarkAllRead, k.ToggleTheme, k.Help, k.Quit},
		{k.Comment, k.AddSubtask, k.ToggleSubtask, k.DeleteSubtask, k.Inbox, k.Search, k.Jump},
		{k.Teams, k.NewTeam, k.Invite, k.Approve, k.Deny},
	}
}
