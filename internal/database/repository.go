package database

import (
	"log"
	"time"

	"github.com/actionsum/quickswitch/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles preference and error log storage
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// GetPreference returns the stored value for key; ok is false when unset
func (r *Repository) GetPreference(key string) (string, bool, error) {
	var pref models.Preference
	result := r.db.Where("name = ?", key).First(&pref)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(result.Error, "failed to read preference %s", key)
	}
	return pref.Value, true, nil
}

// SetPreference inserts or replaces the value for key
func (r *Repository) SetPreference(key, value string) error {
	pref := models.Preference{Key: key, Value: value}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "failed to write preference %s", key)
	}
	return nil
}

// LastOpenedApp returns the package launched most recently through the overlay
func (r *Repository) LastOpenedApp() (string, bool, error) {
	return r.GetPreference(models.PrefLastOpenedApp)
}

// SetLastOpenedApp records pkg as the last launched package
func (r *Repository) SetLastOpenedApp(pkg string) error {
	return r.SetPreference(models.PrefLastOpenedApp, pkg)
}

// IsFirstRun reports whether the first-run flag is still set. Unset counts as first run.
func (r *Repository) IsFirstRun() (bool, error) {
	value, ok, err := r.GetPreference(models.PrefFirstTime)
	if err != nil {
		return false, err
	}
	return !ok || value != "false", nil
}

// CompleteFirstRun clears the first-run flag
func (r *Repository) CompleteFirstRun() error {
	return r.SetPreference(models.PrefFirstTime, "false")
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// RecentErrors returns up to limit error logs, newest first
func (r *Repository) RecentErrors(limit int) ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog
	result := r.db.Order("timestamp DESC").Limit(limit).Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// DeleteErrorsBefore removes error logs older than before
func (r *Repository) DeleteErrorsBefore(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.ErrorLog{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old error logs")
	}
	return result.RowsAffected, nil
}

// ErrorRecorder stores errors for one source
type ErrorRecorder struct {
	repo   *Repository
	source string
}

// Recorder returns an ErrorRecorder tagging logs with source
func (r *Repository) Recorder(source string) *ErrorRecorder {
	return &ErrorRecorder{repo: r, source: source}
}

// RecordError stores err, logging when the store itself fails
func (e *ErrorRecorder) RecordError(err error) {
	errorLog := &models.ErrorLog{
		Timestamp: time.Now(),
		Source:    e.source,
		ErrorMsg:  err.Error(),
	}

	if dbErr := e.repo.CreateErrorLog(errorLog); dbErr != nil {
		log.Printf("Failed to store error in database: %v (original error: %v)", dbErr, err)
	}
}
