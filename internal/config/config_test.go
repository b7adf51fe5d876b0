package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"poll too fast", func(c *Config) { c.Watcher.PollInterval = time.Millisecond }, true},
		{"poll too slow", func(c *Config) { c.Watcher.PollInterval = time.Minute }, true},
		{"zero lookback", func(c *Config) { c.Watcher.Lookback = 0 }, true},
		{"unknown platform", func(c *Config) { c.Apps.Monitored = []string{"myspace"} }, true},
		{"known platforms", func(c *Config) { c.Apps.Monitored = []string{"telegram", "whatsapp"} }, false},
		{"negative offset", func(c *Config) { c.Overlay.OffsetY = -1 }, true},
		{"bad port", func(c *Config) { c.Web.Port = 70000 }, true},
		{"empty host", func(c *Config) { c.Web.Host = "" }, true},
		{"empty pid file", func(c *Config) { c.Daemon.PIDFile = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("QUICKSWITCH_DB_PATH", "/tmp/qs-test.db")
	t.Setenv("QUICKSWITCH_POLL_INTERVAL_MS", "200")
	t.Setenv("QUICKSWITCH_LOOKBACK_MS", "750")
	t.Setenv("QUICKSWITCH_APPS", "telegram, whatsapp,")
	t.Setenv("QUICKSWITCH_WEB_PORT", "18080")

	cfg := Default()
	LoadFromEnv(cfg)

	if cfg.Database.Path != "/tmp/qs-test.db" {
		t.Errorf("Database.Path = %s", cfg.Database.Path)
	}
	if cfg.Watcher.PollInterval != 200*time.Millisecond {
		t.Errorf("PollInterval = %v, want 200ms", cfg.Watcher.PollInterval)
	}
	if cfg.Watcher.Lookback != 750*time.Millisecond {
		t.Errorf("Lookback = %v, want 750ms", cfg.Watcher.Lookback)
	}
	if len(cfg.Apps.Monitored) != 2 || cfg.Apps.Monitored[1] != "whatsapp" {
		t.Errorf("Apps.Monitored = %v", cfg.Apps.Monitored)
	}
	if cfg.Web.Port != 18080 {
		t.Errorf("Web.Port = %d, want 18080", cfg.Web.Port)
	}
}

func TestLoadFromEnvIgnoresOutOfRange(t *testing.T) {
	t.Setenv("QUICKSWITCH_POLL_INTERVAL_MS", "1")
	t.Setenv("QUICKSWITCH_WEB_PORT", "not-a-port")

	cfg := Default()
	port := cfg.Web.Port
	LoadFromEnv(cfg)

	if cfg.Watcher.PollInterval != 100*time.Millisecond {
		t.Errorf("PollInterval = %v, want default", cfg.Watcher.PollInterval)
	}
	if cfg.Web.Port != port {
		t.Errorf("Web.Port = %d, want %d", cfg.Web.Port, port)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
poll_interval_ms = 150
apps = ["telegram", "linkedin"]

[overlay]
offset_x = 0
offset_y = 40

[platform.telegram]
command = "flatpak run org.telegram.desktop"
icon = "/opt/icons/telegram.png"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if cfg.Watcher.PollInterval != 150*time.Millisecond {
		t.Errorf("PollInterval = %v, want 150ms", cfg.Watcher.PollInterval)
	}
	if cfg.Overlay.OffsetY != 40 {
		t.Errorf("OffsetY = %d, want 40", cfg.Overlay.OffsetY)
	}

	table := cfg.Table()
	platforms := table.Platforms()
	if len(platforms) != 2 {
		t.Fatalf("Table() has %d platforms, want 2", len(platforms))
	}
	tg, ok := table.ByID("telegram")
	if !ok {
		t.Fatal("telegram missing from table")
	}
	if tg.Command != "flatpak run org.telegram.desktop" {
		t.Errorf("telegram command = %q", tg.Command)
	}
	if tg.Icon != "/opt/icons/telegram.png" {
		t.Errorf("telegram icon = %q", tg.Icon)
	}
	if table.Monitored().Contains("com.whatsapp") {
		t.Error("whatsapp should not be monitored")
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("apps = [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadFile(Default(), path); err == nil {
		t.Error("LoadFile() error = nil, want parse error")
	}
}

func TestDefaultTableHasAllPlatforms(t *testing.T) {
	if n := Default().Table().Monitored().Len(); n != 7 {
		t.Errorf("default monitored set has %d entries, want 7", n)
	}
}

func TestFilePathFromEnv(t *testing.T) {
	t.Setenv("QUICKSWITCH_CONFIG", "/etc/quickswitch.toml")
	if got := FilePath(); got != "/etc/quickswitch.toml" {
		t.Errorf("FilePath() = %s", got)
	}
}
