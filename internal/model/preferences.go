package model

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Preferences are the scalar settings kept between sessions.
type Preferences struct {
	Theme        Theme
	SidebarWidth int
	ChatWidth    int
	HasOnboarded bool
}

// DefaultPreferences returns the preferences of a fresh install, with
// panel widths centred in their configured bounds.
func DefaultPreferences(d DisplayConfig) Preferences {
	return Preferences{
		Theme:        ThemeDark,
		SidebarWidth: (d.SidebarMin + d.SidebarMax) / 2,
		ChatWidth:    (d.ChatMin + d.ChatMax) / 2,
	}
}
