package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/boardsync/internal/logging"
	"github.com/nhle/boardsync/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and writes serial.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

type preferenceRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// LoadPreferences reads every stored preference over defaults. Values that
// fail to parse are logged and left at their default.
func (s *SQLiteStore) LoadPreferences(
	ctx context.Context,
	defaults model.Preferences,
) (model.Preferences, error) {
	var rows []preferenceRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT key, value FROM preferences"); err != nil {
		return defaults, fmt.Errorf("querying preferences: %w", err)
	}

	p := defaults
	for _, r := range rows {
		switch r.Key {
		case KeyTheme:
			if t := model.Theme(r.Value); t == model.ThemeDark || t == model.ThemeLight {
				p.Theme = t
			} else {
				badPreference(r)
			}
		case KeySidebarWidth:
			p.SidebarWidth = intPreference(r, p.SidebarWidth)
		case KeyChatWidth:
			p.ChatWidth = intPreference(r, p.ChatWidth)
		case KeyHasOnboarded:
			p.HasOnboarded = r.Value == "true"
		}
	}
	return p, nil
}

func intPreference(r preferenceRow, fallback int) int {
	n, err := strconv.Atoi(r.Value)
	if err != nil {
		badPreference(r)
		return fallback
	}
	return n
}

func badPreference(r preferenceRow) {
	logging.Logger.WithField("key", r.Key).WithField("value", r.Value).Warn("ignoring unreadable preference")
}

// Preference returns a single raw value.
func (s *SQLiteStore) Preference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM preferences WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting preference %s: %w", key, err)
	}
	return value, true, nil
}

// SetPreference inserts or replaces a single raw value.
func (s *SQLiteStore) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting preference %s: %w", key, err)
	}
	return nil
}

// SetTheme stores the colour scheme.
func (s *SQLiteStore) SetTheme(ctx context.Context, theme model.Theme) error {
	return s.SetPreference(ctx, KeyTheme, string(theme))
}

// MarkOnboarded records that the welcome screen was shown.
func (s *SQLiteStore) MarkOnboarded(ctx context.Context) error {
	return s.SetPreference(ctx, KeyHasOnboarded, "true")
}

// SaveWidth stores a panel width. It satisfies reorder.WidthSaver.
func (s *SQLiteStore) SaveWidth(panel string, width int) error {
	var key string
	switch panel {
	case "sidebar":
		key = KeySidebarWidth
	case "chat":
		key = KeyChatWidth
	default:
		return fmt.Errorf("unknown panel %q", panel)
	}
	return s.SetPreference(context.Background(), key, strconv.Itoa(width))
}
