package models

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	ID        uint64     `gorm:"primarykey" json:"id"`
	Title     string     `gorm:"type:varchar(200);not null" json:"title"`
	CreatorID uint64     `gorm:"not null;index" json:"creator_id"`
	Deadline  *time.Time `gorm:"index" json:"deadline"`
	// LastNotificationSent is the reminder watermark. It is advanced only by
	// the deadline watcher, and only through a conditional update guarded by
	// the previously observed value.
	LastNotificationSent *time.Time     `json:"last_notification_sent"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator User            `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
}
