package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads the first .env file found in the working directory or
// the user config directory. Variables already set in the environment win.
func LoadDotEnv() {
	candidates := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "quickswitch", ".env"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				log.Printf("Failed to load %s: %v", path, err)
			}
			return
		}
	}
}

// LoadFromEnv loads configuration from environment variables
// Environment variables override default values
func LoadFromEnv(cfg *Config) {
	// Database configuration
	if dbPath := os.Getenv("QUICKSWITCH_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Watcher configuration
	if pollInterval := os.Getenv("QUICKSWITCH_POLL_INTERVAL_MS"); pollInterval != "" {
		if ms, err := strconv.Atoi(pollInterval); err == nil && ms > 0 {
			interval := time.Duration(ms) * time.Millisecond
			if interval >= cfg.Watcher.MinPollInterval && interval <= cfg.Watcher.MaxPollInterval {
				cfg.Watcher.PollInterval = interval
			}
		}
	}

	if lookback := os.Getenv("QUICKSWITCH_LOOKBACK_MS"); lookback != "" {
		if ms, err := strconv.Atoi(lookback); err == nil && ms > 0 {
			cfg.Watcher.Lookback = time.Duration(ms) * time.Millisecond
		}
	}

	// Platform selection
	if monitored := os.Getenv("QUICKSWITCH_APPS"); monitored != "" {
		var ids []string
		for _, id := range strings.Split(monitored, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		cfg.Apps.Monitored = ids
	}

	// Icon configuration
	if cacheDir := os.Getenv("QUICKSWITCH_ICON_CACHE_DIR"); cacheDir != "" {
		cfg.Icons.CacheDir = cacheDir
	}

	// Daemon configuration
	if pidFile := os.Getenv("QUICKSWITCH_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if logFile := os.Getenv("QUICKSWITCH_LOG_FILE"); logFile != "" {
		cfg.Daemon.LogFile = logFile
	}

	// Web configuration
	if webHost := os.Getenv("QUICKSWITCH_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("QUICKSWITCH_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}
}

// New creates a new Config from defaults, the optional config file, .env and the environment
func New() *Config {
	LoadDotEnv()

	cfg := Default()
	if path := FilePath(); path != "" {
		if err := LoadFile(cfg, path); err != nil {
			log.Printf("Ignoring config file: %v", err)
		}
	}
	LoadFromEnv(cfg)
	return cfg
}
