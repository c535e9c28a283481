package repositories

import (
	"time"

	"foodshare_backend/internal/models"
)

// DonationSort is one of the browse sort options.
type DonationSort string

const (
	SortCreatedDesc DonationSort = "createdAt_desc"
	SortCreatedAsc  DonationSort = "createdAt_asc"
	SortExpiryAsc   DonationSort = "expiryDate_asc"
	SortExpiryDesc  DonationSort = "expiryDate_desc"
)

// ParseDonationSort falls back to newest first.
func ParseDonationSort(s string) DonationSort {
	switch DonationSort(s) {
	case SortCreatedAsc, SortExpiryAsc, SortExpiryDesc:
		return DonationSort(s)
	default:
		return SortCreatedDesc
	}
}

func (s DonationSort) orderClause() string {
	switch s {
	case SortCreatedAsc:
		return "created_at ASC, id ASC"
	case SortExpiryAsc:
		return "expiry_date ASC, created_at DESC"
	case SortExpiryDesc:
		return "expiry_date DESC, created_at DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

type DonationCriteria struct {
	Status    models.DonationStatus
	Category  string
	Search    string // case-insensitive match on food item or notes
	DonorID   string
	ClaimedBy string
	Sort      DonationSort
	Page      int
	PageSize  int
}

type NotificationCriteria struct {
	UnreadOnly bool
	Page       int
	PageSize   int
}

type ProfileCriteria struct {
	Role     models.UserRole
	Search   string // name or email
	Page     int
	PageSize int
}

// StatusCounts is a per-status tally.
type StatusCounts map[models.DonationStatus]int64

// RoleCounts is a per-role tally.
type RoleCounts map[models.UserRole]int64

// ExpiringCriteria selects available donations that expire before Before and
// have not been reminded yet.
type ExpiringCriteria struct {
	Before time.Time
	Limit  int
}
