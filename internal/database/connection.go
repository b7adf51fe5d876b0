package database

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/actionsum/quickswitch/internal/models"
)

const (
	appDirName = "quickswitch"
	dbFileName = "quickswitch.db"

	// The daemon and one-shot commands share the file; writers wait
	// this long for the lock instead of failing with SQLITE_BUSY.
	busyTimeoutMillis = "5000"
)

// DB is the preference store shared by the daemon and the CLI.
type DB struct {
	*gorm.DB
	path string
}

// DefaultPath returns $XDG_CONFIG_HOME/quickswitch/quickswitch.db,
// falling back to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "locate config directory")
	}
	return filepath.Join(dir, appDirName, dbFileName), nil
}

// Open opens the store at path, or at DefaultPath when path is empty,
// creating the parent directory and migrating the schema.
func Open(path string) (*DB, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create directory for %s", path)
	}

	gdb, err := gorm.Open(sqlite.Open(dsn(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	db := &DB{DB: gdb, path: path}
	if err := db.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func dsn(path string) string {
	return path + "?_journal_mode=WAL&_busy_timeout=" + busyTimeoutMillis
}

func (db *DB) migrate() error {
	err := db.AutoMigrate(&models.Preference{}, &models.ErrorLog{})
	return errors.Wrap(err, "migrate schema")
}

// Path is the file the store was opened at.
func (db *DB) Path() string { return db.path }

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return errors.Wrap(err, "close database")
	}
	return sqlDB.Close()
}
