package models

import (
	"time"

	"gorm.io/datatypes"
)

// ReminderPolicy holds a user's deadline reminder settings. One row per
// user, created lazily with defaults on first access.
type ReminderPolicy struct {
	UserID uint64 `gorm:"primarykey" json:"user_id"`
	// No column default: a false value must round-trip as written, and the
	// service seeds the enabled default when it creates the row.
	Enabled bool `gorm:"not null" json:"enabled"`
	// Thresholds are lead times in hours before a deadline. Set semantics:
	// non-empty, strictly positive, no duplicates.
	Thresholds datatypes.JSONSlice[int] `gorm:"not null" json:"thresholds"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
