package models

import "strings"

type UserRole string
type DonationStatus string
type NotificationType string

const (
	UserRoleDonor UserRole = "donor"
	UserRoleNGO   UserRole = "ngo"
	UserRoleAdmin UserRole = "admin"

	DonationStatusAvailable DonationStatus = "available"
	DonationStatusClaimed   DonationStatus = "claimed"
	DonationStatusCollected DonationStatus = "collected"

	NotificationDonationClaimed   NotificationType = "donation_claimed"
	NotificationDonationCollected NotificationType = "donation_collected"
	NotificationDonationExpiring  NotificationType = "donation_expiring"
	NotificationRoleChanged       NotificationType = "role_changed"
	NotificationAnnouncement      NotificationType = "announcement"
)

// DefaultRole is assigned to every profile created without an explicit role.
const DefaultRole = UserRoleDonor

// Roles lists the closed set of roles.
func Roles() []UserRole {
	return []UserRole{UserRoleDonor, UserRoleNGO, UserRoleAdmin}
}

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleDonor, UserRoleNGO, UserRoleAdmin:
		return true
	default:
		return false
	}
}

// ParseUserRole accepts any casing and surrounding whitespace.
func ParseUserRole(s string) (UserRole, bool) {
	r := UserRole(strings.ToLower(strings.TrimSpace(s)))
	return r, r.IsValid()
}

func (s DonationStatus) IsValid() bool {
	switch s {
	case DonationStatusAvailable, DonationStatusClaimed, DonationStatusCollected:
		return true
	default:
		return false
	}
}

// Next returns the only status reachable from s. Collected is terminal.
func (s DonationStatus) Next() (DonationStatus, bool) {
	switch s {
	case DonationStatusAvailable:
		return DonationStatusClaimed, true
	case DonationStatusClaimed:
		return DonationStatusCollected, true
	case DonationStatusCollected:
		return "", false
	default:
		return "", false
	}
}

// CanBecome reports whether s -> to is a legal lifecycle step.
func (s DonationStatus) CanBecome(to DonationStatus) bool {
	next, ok := s.Next()
	return ok && next == to
}

func ParseDonationStatus(s string) (DonationStatus, bool) {
	st := DonationStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.IsValid()
}

// Categories offered on the donate form.
var DonationCategories = []string{
	"cooked", "raw_produce", "packaged", "baked", "dairy", "meat", "other",
}

// Category labels offered by the browse filter.
var DonationCategoryLabels = []string{
	"Fruits & Vegetables", "Grains & Bread", "Meat & Poultry", "Dairy & Eggs",
	"Canned Goods", "Baked Goods", "Beverages", "Prepared Meals", "Other",
}
