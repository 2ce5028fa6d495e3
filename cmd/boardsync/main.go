package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nhle/boardsync/internal/api"
	"github.com/nhle/boardsync/internal/app"
	"github.com/nhle/boardsync/internal/cache"
	"github.com/nhle/boardsync/internal/credential"
	"github.com/nhle/boardsync/internal/logging"
	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/mutation"
	"github.com/nhle/boardsync/internal/session"
	"github.com/nhle/boardsync/internal/store"
	appsync "github.com/nhle/boardsync/internal/sync"
)

var Version = "dev"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "boardsync",
		Short:         "Kanban boards in the terminal, kept in sync with the board service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBoard,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "config file")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(refreshCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the board (default)",
		RunE:  runBoard,
	}
}

// env is what every command needs: configuration, logging and the stored
// session.
type env struct {
	cfg    *model.AppConfig
	sess   *session.Session
	client *api.Client
}

func setup() (*env, error) {
	// A missing .env is fine; it only supplies BOARDSYNC_* overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := logging.Init(cfg.Log); err != nil {
		return nil, err
	}

	vault, err := credential.Open(filepath.Dir(configPath))
	if err != nil {
		return nil, err
	}
	sess := session.New(vault)
	if err := sess.Load(); err != nil && !errors.Is(err, session.ErrNoSession) {
		return nil, err
	}

	return &env{
		cfg:    cfg,
		sess:   sess,
		client: api.NewClient(cfg.API.BaseURL, sess, cfg.RequestTimeout()),
	}, nil
}

// services wires the cache, dispatcher and poller around one client.
func (e *env) services(notices *mutation.Notices) (*cache.Store, *mutation.Dispatcher, *appsync.Poller) {
	c := cache.New()
	tracker := mutation.NewTracker()
	d := mutation.NewDispatcher(e.client, c, mutation.Options{
		Tracker:          tracker,
		Notifier:         notices,
		MaxFailures:      uint32(e.cfg.Breaker.MaxFailures),
		OpenTimeout:      e.cfg.BreakerTimeout(),
		OnSessionExpired: e.sess.Expire,
		CurrentUser:      e.currentUser(c),
	})
	p := appsync.New(e.client, c, tracker, e.cfg.PollInterval())
	p.OnSessionExpired(e.sess.Expire)
	return c, d, p
}

func (e *env) currentUser(c *cache.Store) func() model.User {
	return func() model.User {
		claims, ok := e.sess.Claims()
		if !ok {
			return model.User{}
		}
		if u, ok := c.User(claims.UserID); ok {
			return u
		}
		return model.User{ID: claims.UserID}
	}
}

func runBoard(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	if !e.sess.LoggedIn() {
		return errors.New("not logged in; run `boardsync login` first")
	}

	prefStore, err := store.NewSQLiteStore(e.cfg.Data.DBPath)
	if err != nil {
		return err
	}
	defer prefStore.Close()

	prefs, err := prefStore.LoadPreferences(context.Background(), model.DefaultPreferences(e.cfg.Display))
	if err != nil {
		return err
	}

	notices := mutation.NewNotices(32)
	c, d, p := e.services(notices)
	defer p.Stop()

	logging.Logger.WithField("version", Version).Info("starting board")
	program := tea.NewProgram(app.New(app.Deps{
		Config:      e.cfg,
		Cache:       c,
		Dispatcher:  d,
		Notices:     notices,
		Poller:      p,
		Prefs:       prefStore,
		Session:     e.sess,
		Preferences: prefs,
	}), tea.WithAltScreen(), tea.WithMouseCellMotion())

	_, err = program.Run()
	return err
}
