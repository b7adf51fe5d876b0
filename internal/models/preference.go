package models

import "time"

// Preference keys
const (
	PrefLastOpenedApp = "last_opened_app"
	PrefFirstTime     = "first_time"
)

// Preference is one key-value pair that survives restarts
type Preference struct {
	Key       string    `gorm:"primaryKey;column:name;size:64" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
