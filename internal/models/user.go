package models

import "time"

// Identity is the authentication principal. Its ID is the identity key that
// profiles, donations and notifications refer to.
type Identity struct {
	BaseModel
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
}

type RefreshToken struct {
	BaseModel
	IdentityID string    `gorm:"type:varchar(36);not null;index"`
	Token      string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}
