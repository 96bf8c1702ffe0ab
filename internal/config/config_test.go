package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.CacheSize != 200 {
		t.Errorf("default cache_size = %d, want 200", cfg.CacheSize)
	}
	if cfg.CacheTTL.Duration != 30*time.Minute {
		t.Errorf("default cache_ttl = %s, want 30m", cfg.CacheTTL)
	}
	if cfg.Player != "mpv" {
		t.Errorf("default player = %q, want mpv", cfg.Player)
	}
	if !cfg.History {
		t.Error("default history should be true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"zero cache size", func(c *Config) { c.CacheSize = 0 }, true},
		{"zero ttl", func(c *Config) { c.CacheTTL.Duration = 0 }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeout.Duration = -time.Second }, true},
		{"tiny page cap", func(c *Config) { c.MaxPageBytes = 10 }, true},
		{"invalid player", func(c *Config) { c.Player = "notepad" }, true},
		{"invalid log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"empty listen", func(c *Config) { c.Listen = "" }, true},
		{"valid vlc", func(c *Config) { c.Player = "vlc" }, false},
		{"uppercase level", func(c *Config) { c.LogLevel = "WARN" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func writeConfig(t *testing.T, content string) {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	dir := filepath.Join(tmpDir, "instatrack")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFromTOML(t *testing.T) {
	writeConfig(t, `
cache_size = 50
cache_ttl = "5m"
request_timeout = "10s"
player = "vlc"
history = false
log_level = "debug"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.CacheSize != 50 {
		t.Errorf("cache_size = %d, want 50", cfg.CacheSize)
	}
	if cfg.CacheTTL.Duration != 5*time.Minute {
		t.Errorf("cache_ttl = %s, want 5m", cfg.CacheTTL)
	}
	if cfg.RequestTimeout.Duration != 10*time.Second {
		t.Errorf("request_timeout = %s, want 10s", cfg.RequestTimeout)
	}
	if cfg.Player != "vlc" {
		t.Errorf("player = %q, want vlc", cfg.Player)
	}
	if cfg.History {
		t.Error("history should be false")
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("unset listen should keep default, got %q", cfg.Listen)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad duration", `cache_ttl = "soon"`},
		{"unknown key", `provider = "Vidcloud"`},
		{"invalid value", `cache_size = -1`},
		{"syntax", `cache_size = `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.content)
			if _, err := Load(); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not error on missing file: %v", err)
	}
	if cfg.Player != "mpv" {
		t.Errorf("missing file should return defaults, got player = %q", cfg.Player)
	}
}

func TestEffectiveLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "WARN"
	if got := cfg.EffectiveLogLevel(); got != "warn" {
		t.Errorf("EffectiveLogLevel() = %q, want warn", got)
	}
	cfg.Debug = true
	if got := cfg.EffectiveLogLevel(); got != "debug" {
		t.Errorf("EffectiveLogLevel() with debug = %q, want debug", got)
	}
}

func TestExpandDownloadDir(t *testing.T) {
	cfg := Default()
	cfg.DownloadDir = "/tmp/test-downloads"

	dir, err := cfg.ExpandDownloadDir()
	if err != nil {
		t.Fatalf("ExpandDownloadDir() error: %v", err)
	}
	if dir != "/tmp/test-downloads" {
		t.Errorf("got %q, want /tmp/test-downloads", dir)
	}
}

func TestHistoryPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	path, err := HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath() error: %v", err)
	}
	if path != filepath.Join("/data", "instatrack", "history.db") {
		t.Errorf("HistoryPath() = %q", path)
	}
}
