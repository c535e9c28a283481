package auth

import "foodshare_backend/internal/models"

// Permission names one gated action.
type Permission string

const (
	PermDonationsCreate   Permission = "donations:create"
	PermDonationsBrowse   Permission = "donations:browse"
	PermDonationsClaim    Permission = "donations:claim"
	PermDonationsModerate Permission = "donations:moderate"
	PermUsersManage       Permission = "users:manage"
	PermNotifySend        Permission = "notifications:send"
	PermStatsPlatform     Permission = "stats:platform"
)

var (
	donorPermissions = []Permission{
		PermDonationsCreate,
		PermDonationsBrowse,
	}
	ngoPermissions = []Permission{
		PermDonationsBrowse,
		PermDonationsClaim,
	}
	adminPermissions = []Permission{
		PermDonationsCreate,
		PermDonationsBrowse,
		PermDonationsClaim,
		PermDonationsModerate,
		PermUsersManage,
		PermNotifySend,
		PermStatsPlatform,
	}
)

// PermissionsFor returns the permission set of role. Unknown roles get none.
func PermissionsFor(role models.UserRole) []Permission {
	switch role {
	case models.UserRoleDonor:
		return donorPermissions
	case models.UserRoleNGO:
		return ngoPermissions
	case models.UserRoleAdmin:
		return adminPermissions
	default:
		return nil
	}
}

func HasPermission(role models.UserRole, permission Permission) bool {
	for _, p := range PermissionsFor(role) {
		if p == permission {
			return true
		}
	}
	return false
}

func IsAdmin(role models.UserRole) bool {
	return role == models.UserRoleAdmin
}
