// Package access decides what a session may render. Every decision is one of
// exactly three outcomes.
package access

import (
	"sort"

	"foodshare_backend/internal/models"
	"foodshare_backend/internal/session"
)

type Outcome int

const (
	Render Outcome = iota
	AccessDenied
	Login
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case AccessDenied:
		return "access_denied"
	case Login:
		return "login"
	default:
		return "unknown"
	}
}

// View routes.
const (
	ViewHome           = "/"
	ViewAuth           = "/auth"
	ViewDonate         = "/donate"
	ViewDonations      = "/view-donations"
	ViewMyDonations    = "/my-donations"
	ViewProfile        = "/profile"
	ViewNotifications  = "/notifications"
	ViewDonorDashboard = "/donor-dashboard"
	ViewNGODashboard   = "/ngo-dashboard"
	ViewAdminDashboard = "/admin-dashboard"
	ViewAdminUsers     = "/admin/users"
)

// RoleSet is a set of roles allowed to render a view.
type RoleSet map[models.UserRole]struct{}

func Roles(roles ...models.UserRole) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(r models.UserRole) bool {
	_, ok := s[r]
	return ok
}

var (
	allRoles  = Roles(models.UserRoleDonor, models.UserRoleNGO, models.UserRoleAdmin)
	donorSide = Roles(models.UserRoleDonor, models.UserRoleAdmin)
	ngoSide   = Roles(models.UserRoleNGO, models.UserRoleAdmin)
	adminOnly = Roles(models.UserRoleAdmin)
)

// views maps every gated route to the roles that may render it.
var views = map[string]RoleSet{
	ViewDonate:         donorSide,
	ViewDonations:      allRoles,
	ViewMyDonations:    donorSide,
	ViewProfile:        allRoles,
	ViewNotifications:  allRoles,
	ViewDonorDashboard: donorSide,
	ViewNGODashboard:   ngoSide,
	ViewAdminDashboard: adminOnly,
	ViewAdminUsers:     adminOnly,
}

// IsPublic reports whether path renders without a session.
func IsPublic(path string) bool {
	return path == ViewHome || path == ViewAuth
}

// IsEntry reports whether path is one a resolved session is redirected away from.
func IsEntry(path string) bool {
	return IsPublic(path)
}

// Allowed returns the role set of a gated view.
func Allowed(path string) (RoleSet, bool) {
	set, ok := views[path]
	return set, ok
}

// Decide is the gate. A nil session always yields Login.
func Decide(s *session.Session, allowed RoleSet) Outcome {
	if s == nil {
		return Login
	}
	if allowed.Has(s.Role) {
		return Render
	}
	return AccessDenied
}

// DecideView resolves the gate for a route path. Public routes always render
// and unknown routes are treated as admin-only.
func DecideView(s *session.Session, path string) Outcome {
	if IsPublic(path) {
		return Render
	}
	allowed, ok := views[path]
	if !ok {
		allowed = adminOnly
	}
	return Decide(s, allowed)
}

// VisibleViews lists the gated views the session may render, sorted.
func VisibleViews(s *session.Session) []string {
	var out []string
	for path, allowed := range views {
		if Decide(s, allowed) == Render {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// Landing returns the role-specific landing view.
func Landing(role models.UserRole) string {
	switch role {
	case models.UserRoleDonor:
		return ViewDonorDashboard
	case models.UserRoleNGO:
		return ViewNGODashboard
	case models.UserRoleAdmin:
		return ViewAdminDashboard
	default:
		return ViewHome
	}
}

// RedirectAfterLogin returns the landing view when the caller sits on an
// entry page, and "" otherwise.
func RedirectAfterLogin(role models.UserRole, from string) string {
	if IsEntry(from) {
		return Landing(role)
	}
	return ""
}

// RedirectAfterLogout returns the login view unless the caller is already on
// a public page.
func RedirectAfterLogout(from string) string {
	if IsPublic(from) {
		return ""
	}
	return ViewAuth
}
