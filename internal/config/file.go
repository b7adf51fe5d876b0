package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// fileConfig is the on-disk TOML layout
type fileConfig struct {
	PollIntervalMS int                     `toml:"poll_interval_ms"`
	LookbackMS     int                     `toml:"lookback_ms"`
	Database       string                  `toml:"database"`
	Apps           []string                `toml:"apps"`
	Overlay        *fileOverlay            `toml:"overlay"`
	Platform       map[string]filePlatform `toml:"platform"`
}

type fileOverlay struct {
	OffsetX  *int `toml:"offset_x"`
	OffsetY  *int `toml:"offset_y"`
	CellSize int  `toml:"cell_size"`
}

type filePlatform struct {
	Command string `toml:"command,omitempty"`
	Icon    string `toml:"icon,omitempty"`
}

// FilePath returns the config file to read, or "" when there is none
func FilePath() string {
	if path := os.Getenv("QUICKSWITCH_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".config", "quickswitch", "config.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// LoadFile applies a TOML config file on top of cfg
func LoadFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}

	if fc.PollIntervalMS > 0 {
		cfg.Watcher.PollInterval = millis(fc.PollIntervalMS)
	}
	if fc.LookbackMS > 0 {
		cfg.Watcher.Lookback = millis(fc.LookbackMS)
	}
	if fc.Database != "" {
		cfg.Database.Path = fc.Database
	}
	if len(fc.Apps) > 0 {
		cfg.Apps.Monitored = fc.Apps
	}
	if fc.Overlay != nil {
		if fc.Overlay.OffsetX != nil {
			cfg.Overlay.OffsetX = *fc.Overlay.OffsetX
		}
		if fc.Overlay.OffsetY != nil {
			cfg.Overlay.OffsetY = *fc.Overlay.OffsetY
		}
		if fc.Overlay.CellSize > 0 {
			cfg.Overlay.CellSize = fc.Overlay.CellSize
		}
	}
	if cfg.Apps.Commands == nil {
		cfg.Apps.Commands = map[string]string{}
	}
	if cfg.Apps.Icons == nil {
		cfg.Apps.Icons = map[string]string{}
	}
	for id, p := range fc.Platform {
		if p.Command != "" {
			cfg.Apps.Commands[id] = p.Command
		}
		if p.Icon != "" {
			cfg.Apps.Icons[id] = p.Icon
		}
	}
	return nil
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
