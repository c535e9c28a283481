package models

import (
	"strings"
	"time"
)

// Profile is keyed by the identity key; at most one exists per identity.
type Profile struct {
	IdentityID       string    `gorm:"type:varchar(36);primaryKey"`
	Name             string    `gorm:"type:varchar(255)"`
	Email            string    `gorm:"type:varchar(255);index"`
	Role             UserRole  `gorm:"type:varchar(20);not null;default:'donor';index"`
	ContactInfo      string    `gorm:"type:varchar(255)"`
	OrganizationName string    `gorm:"type:varchar(255)"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// DisplayName falls back to the local part of the email.
func (p *Profile) DisplayName() string {
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return EmailLocalPart(p.Email)
}

func EmailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
