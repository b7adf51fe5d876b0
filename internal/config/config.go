package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/actionsum/quickswitch/pkg/apps"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Watcher configuration
	Watcher WatcherConfig

	// Overlay configuration
	Overlay OverlayConfig

	// Platform selection and per-platform overrides
	Apps AppsConfig

	// Icon cache configuration
	Icons IconConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Bridge server configuration
	Web WebConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string // Path to SQLite database file
}

// WatcherConfig holds foreground sampling configuration
type WatcherConfig struct {
	PollInterval    time.Duration // How often to sample the foreground app
	MinPollInterval time.Duration // Minimum allowed poll interval
	MaxPollInterval time.Duration // Maximum allowed poll interval
	Lookback        time.Duration // Trailing window queried on each sample
}

// OverlayConfig holds the floating bar geometry
type OverlayConfig struct {
	OffsetX  int // Initial offset from the left edge
	OffsetY  int // Initial offset from the bottom edge
	CellSize int // Icon cell size in pixels
	Margin   int // Margin around each cell
}

// AppsConfig selects which platforms are monitored and how they start
type AppsConfig struct {
	Monitored []string          // Platform IDs; empty means all built-in platforms
	Commands  map[string]string // Platform ID -> launch command override
	Icons     map[string]string // Platform ID -> icon file override
}

// IconConfig holds icon export configuration
type IconConfig struct {
	CacheDir string // Directory for exported icon files
	Size     int    // Exported icon edge in pixels
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
	LogFile string // Log destination when running detached
}

// WebConfig holds bridge server configuration
type WebConfig struct {
	Host string // Host to bind the bridge server to
	Port int    // Port for the bridge server
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means database.DefaultPath
		},
		Watcher: WatcherConfig{
			PollInterval:    100 * time.Millisecond,
			MinPollInterval: 50 * time.Millisecond,
			MaxPollInterval: 5 * time.Second,
			Lookback:        500 * time.Millisecond,
		},
		Overlay: OverlayConfig{
			OffsetX:  0,
			OffsetY:  16,
			CellSize: 36,
			Margin:   4,
		},
		Apps: AppsConfig{
			Commands: map[string]string{},
			Icons:    map[string]string{},
		},
		Icons: IconConfig{
			CacheDir: filepath.Join(os.TempDir(), fmt.Sprintf("quickswitch-%d", os.Getuid()), "icons"),
			Size:     96,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/quickswitch-%d.pid", os.Getuid()),
			LogFile: "/tmp/quickswitch.log",
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 20000 + os.Getuid()%10000,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Watcher.PollInterval < c.Watcher.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Watcher.PollInterval, c.Watcher.MinPollInterval)
	}

	if c.Watcher.PollInterval > c.Watcher.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Watcher.PollInterval, c.Watcher.MaxPollInterval)
	}

	if c.Watcher.Lookback <= 0 {
		return fmt.Errorf("lookback must be positive")
	}

	if c.Overlay.CellSize <= 0 {
		return fmt.Errorf("overlay cell size must be positive, got %d", c.Overlay.CellSize)
	}

	if c.Overlay.OffsetX < 0 || c.Overlay.OffsetY < 0 {
		return fmt.Errorf("overlay offset cannot be negative")
	}

	for _, id := range c.Apps.Monitored {
		if _, ok := apps.Builtin(id); !ok {
			return fmt.Errorf("unknown platform %q", id)
		}
	}

	if c.Icons.Size <= 0 {
		return fmt.Errorf("icon size must be positive, got %d", c.Icons.Size)
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return fmt.Errorf("web host cannot be empty")
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Watcher.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Watcher.MinPollInterval)
	}
	if interval > c.Watcher.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Watcher.MaxPollInterval)
	}
	c.Watcher.PollInterval = interval
	return nil
}

// SetWebPort sets the bridge server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// Table builds the platform table from the monitored list and overrides
func (c *Config) Table() *apps.Table {
	ids := c.Apps.Monitored
	if len(ids) == 0 {
		ids = apps.Order
	}

	platforms := make([]apps.Platform, 0, len(ids))
	for _, id := range ids {
		p, ok := apps.Builtin(id)
		if !ok {
			continue
		}
		if cmd, ok := c.Apps.Commands[id]; ok && cmd != "" {
			p.Command = cmd
		}
		if icon, ok := c.Apps.Icons[id]; ok && icon != "" {
			p.Icon = icon
		}
		platforms = append(platforms, p)
	}
	return apps.NewTable(platforms)
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Database:
    Path: %s
  Watcher:
    Poll Interval: %v
    Lookback: %v
  Overlay:
    Offset: %d,%d
    Cell Size: %d
  Apps:
    Monitored: %v
  Icons:
    Cache Dir: %s
    Size: %d
  Daemon:
    PID File: %s
    Log File: %s
  Web:
    Host: %s
    Port: %d`,
		c.Database.Path,
		c.Watcher.PollInterval,
		c.Watcher.Lookback,
		c.Overlay.OffsetX, c.Overlay.OffsetY,
		c.Overlay.CellSize,
		c.Apps.Monitored,
		c.Icons.CacheDir,
		c.Icons.Size,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Web.Host,
		c.Web.Port,
	)
}
