package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is append-only except for the read flag.
type Notification struct {
	BaseModel
	UserID  string           `gorm:"type:varchar(36);not null;index"`
	Type    NotificationType `gorm:"type:varchar(40);not null"`
	Title   string           `gorm:"type:varchar(255);not null"`
	Message string
	Data    datatypes.JSON // {"donation_id": "..."}
	IsRead  bool           `gorm:"default:false;index"`
	ReadAt  *time.Time
}
