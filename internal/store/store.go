package store

import (
	"context"

	"github.com/nhle/boardsync/internal/model"
)

// Preference keys.
const (
	KeyTheme        = "theme"
	KeySidebarWidth = "sidebar_width"
	KeyChatWidth    = "chat_width"
	KeyHasOnboarded = "has_onboarded"
)

// Store persists scalar preferences. Board data is never stored locally.
type Store interface {
	// LoadPreferences returns the stored preferences, taking any key that
	// was never saved from defaults.
	LoadPreferences(ctx context.Context, defaults model.Preferences) (model.Preferences, error)

	SetTheme(ctx context.Context, theme model.Theme) error
	MarkOnboarded(ctx context.Context) error

	// SaveWidth stores a panel width; panel is "sidebar" or "chat".
	SaveWidth(panel string, width int) error

	Close() error
}
