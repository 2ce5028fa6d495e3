package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/reorder"
	"github.com/nhle/boardsync/internal/store"
	"github.com/nhle/boardsync/tests/testutil"
)

var defaults = model.Preferences{Theme: model.ThemeDark, SidebarWidth: 26, ChatWidth: 32}

func TestLoadPreferencesDefaults(t *testing.T) {
	s := testutil.NewTestStore(t)
	got, err := s.LoadPreferences(context.Background(), defaults)
	if err != nil {
		t.Fatal(err)
	}
	if got != defaults {
		t.Errorf("LoadPreferences() = %+v, want defaults %+v", got, defaults)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	if err := s.SetTheme(ctx, model.ThemeLight); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkOnboarded(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveWidth(reorder.PanelChat, 44); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadPreferences(ctx, defaults)
	if err != nil {
		t.Fatal(err)
	}
	want := model.Preferences{Theme: model.ThemeLight, SidebarWidth: 26, ChatWidth: 44, HasOnboarded: true}
	if got != want {
		t.Errorf("LoadPreferences() = %+v, want %+v", got, want)
	}
}

func TestUnreadablePreferenceKeepsDefault(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	if err := s.SetPreference(ctx, store.KeySidebarWidth, "wide"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPreference(ctx, store.KeyTheme, "sepia"); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadPreferences(ctx, defaults)
	if err != nil {
		t.Fatal(err)
	}
	if got.SidebarWidth != 26 || got.Theme != model.ThemeDark {
		t.Errorf("LoadPreferences() = %+v, want defaults for unreadable values", got)
	}
}

func TestSaveWidthUnknownPanel(t *testing.T) {
	s := testutil.NewTestStore(t)
	if err := s.SaveWidth("footer", 10); err == nil {
		t.Error("SaveWidth accepted an unknown panel")
	}
}

func TestResizePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.db")
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}

	r := reorder.NewResizer(reorder.PanelSidebar, 22, 40, 26, s)
	r.Press(100)
	r.Drag(130)
	if err := r.Release(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.LoadPreferences(context.Background(), defaults)
	if err != nil {
		t.Fatal(err)
	}
	if got.SidebarWidth != 40 {
		t.Errorf("sidebar width = %d, want the clamped 40", got.SidebarWidth)
	}
	if v, ok, err := reopened.Preference(context.Background(), store.KeySidebarWidth); err != nil || !ok || v != "40" {
		t.Errorf("Preference() = %q, %v, %v", v, ok, err)
	}
}
