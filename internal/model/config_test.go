package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.PollInterval() != 4500*time.Millisecond {
		t.Errorf("PollInterval() = %v, want 4.5s", cfg.PollInterval())
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout() = %v, want 30s", cfg.RequestTimeout())
	}
	if cfg.Breaker.MaxFailures != 5 {
		t.Errorf("Breaker.MaxFailures = %d, want 5", cfg.Breaker.MaxFailures)
	}
	if cfg.BreakerTimeout() != 10*time.Second {
		t.Errorf("BreakerTimeout() = %v, want 10s", cfg.BreakerTimeout())
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.API.BaseURL = "https://boards.example.com"
	cfg.Sync.PollIntervalMS = 1000
	cfg.Display.SidebarMax = 60

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if got.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("API.BaseURL = %q, want %q", got.API.BaseURL, cfg.API.BaseURL)
	}
	if got.Sync.PollIntervalMS != 1000 {
		t.Errorf("Sync.PollIntervalMS = %d, want 1000", got.Sync.PollIntervalMS)
	}
	if got.Display.SidebarMax != 60 {
		t.Errorf("Display.SidebarMax = %d, want 60", got.Display.SidebarMax)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BOARDSYNC_API_BASE_URL", "http://env.example.com")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.API.BaseURL != "http://env.example.com" {
		t.Errorf("API.BaseURL = %q, want env override", cfg.API.BaseURL)
	}
}

func TestLoadConfigRejectsInvertedRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("display:\n  sidebar_min: 50\n  sidebar_max: 20\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() accepted sidebar_min > sidebar_max")
	}
}
