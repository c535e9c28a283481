package access

import (
	"testing"

	"foodshare_backend/internal/models"
	"foodshare_backend/internal/session"

	"github.com/stretchr/testify/assert"
)

func sess(role models.UserRole) *session.Session {
	return &session.Session{IdentityID: "u-" + string(role), Role: role}
}

func TestDecide(t *testing.T) {
	allowed := Roles(models.UserRoleNGO)

	assert.Equal(t, Login, Decide(nil, allowed))
	assert.Equal(t, Render, Decide(sess(models.UserRoleNGO), allowed))
	assert.Equal(t, AccessDenied, Decide(sess(models.UserRoleDonor), allowed))
	assert.Equal(t, AccessDenied, Decide(sess(models.UserRoleAdmin), allowed))
	assert.Equal(t, AccessDenied, Decide(sess("ghost"), allowed))
}

func TestDecideView(t *testing.T) {
	cases := []struct {
		path string
		role models.UserRole
		want Outcome
	}{
		{ViewDonate, models.UserRoleDonor, Render},
		{ViewDonate, models.UserRoleNGO, AccessDenied},
		{ViewDonate, models.UserRoleAdmin, Render},
		{ViewDonations, models.UserRoleNGO, Render},
		{ViewMyDonations, models.UserRoleNGO, AccessDenied},
		{ViewNGODashboard, models.UserRoleNGO, Render},
		{ViewNGODashboard, models.UserRoleDonor, AccessDenied},
		{ViewAdminDashboard, models.UserRoleNGO, AccessDenied},
		{ViewAdminUsers, models.UserRoleAdmin, Render},
		{"/not-a-view", models.UserRoleDonor, AccessDenied},
		{"/not-a-view", models.UserRoleAdmin, Render},
	}
	for _, tc := range cases {
		t.Run(tc.path+"/"+string(tc.role), func(t *testing.T) {
			assert.Equal(t, tc.want, DecideView(sess(tc.role), tc.path))
		})
	}

	assert.Equal(t, Login, DecideView(nil, ViewProfile))
	assert.Equal(t, Render, DecideView(nil, ViewHome))
	assert.Equal(t, Render, DecideView(nil, ViewAuth))
}

func TestVisibleViews(t *testing.T) {
	assert.Empty(t, VisibleViews(nil))

	ngoViews := VisibleViews(sess(models.UserRoleNGO))
	assert.Equal(t, []string{ViewNGODashboard, ViewNotifications, ViewProfile, ViewDonations}, ngoViews)

	adminViews := VisibleViews(sess(models.UserRoleAdmin))
	assert.Len(t, adminViews, len(views))
}

func TestLandingAndRedirects(t *testing.T) {
	assert.Equal(t, ViewDonorDashboard, Landing(models.UserRoleDonor))
	assert.Equal(t, ViewNGODashboard, Landing(models.UserRoleNGO))
	assert.Equal(t, ViewAdminDashboard, Landing(models.UserRoleAdmin))
	assert.Equal(t, ViewHome, Landing("ghost"))

	assert.Equal(t, ViewNGODashboard, RedirectAfterLogin(models.UserRoleNGO, ViewAuth))
	assert.Equal(t, ViewDonorDashboard, RedirectAfterLogin(models.UserRoleDonor, ViewHome))
	assert.Equal(t, "", RedirectAfterLogin(models.UserRoleDonor, ViewDonations))

	assert.Equal(t, ViewAuth, RedirectAfterLogout(ViewProfile))
	assert.Equal(t, "", RedirectAfterLogout(ViewHome))
	assert.Equal(t, "", RedirectAfterLogout(ViewAuth))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "render", Render.String())
	assert.Equal(t, "access_denied", AccessDenied.String())
	assert.Equal(t, "login", Login.String())
}
