package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrIdentityNotFound     = errors.New("identity not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileExists        = errors.New("profile already exists")
	ErrDonationNotFound     = errors.New("donation not found")
	ErrTransitionConflict   = errors.New("donation status changed concurrently")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// isDuplicate recognises unique violations across drivers. TranslateError
// covers postgres and mysql; the string match is a fallback for drivers that
// do not implement translation.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

// normalizePage clamps pagination input.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
