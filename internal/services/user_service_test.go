package services

import (
	"testing"

	"foodshare_backend/internal/events"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/services/dto"
	"foodshare_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeRole(t *testing.T) {
	f := newFixture(t)
	admin := f.account(t, "root@example.com", models.UserRoleAdmin)
	user := f.account(t, "u@example.com", models.UserRoleDonor)
	users := f.svc.UserService

	_, err := users.ChangeRole(f.ctx, user, admin.IdentityID, "donor")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	_, err = users.ChangeRole(f.ctx, admin, admin.IdentityID, "donor")
	assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)

	_, err = users.ChangeRole(f.ctx, admin, user.IdentityID, "superuser")
	assert.ErrorIs(t, err, apperrors.ErrInvalidUserRole)

	_, err = users.ChangeRole(f.ctx, admin, "missing", "ngo")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	resp, err := users.ChangeRole(f.ctx, admin, user.IdentityID, "NGO")
	require.NoError(t, err)
	assert.Equal(t, string(models.UserRoleNGO), resp.Role)

	p, err := f.repos.Profiles.FindByID(f.ctx, user.IdentityID)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleNGO, p.Role)

	feed, err := f.svc.NotificationService.List(f.ctx, user, false, 1, 20)
	require.NoError(t, err)
	require.Len(t, feed.Notifications, 1)
	assert.Equal(t, string(models.NotificationRoleChanged), feed.Notifications[0].Type)
	assert.Contains(t, f.pub.Types(), events.ProfileUpdated)

	// Same role again changes nothing and sends nothing.
	_, err = users.ChangeRole(f.ctx, admin, user.IdentityID, "ngo")
	require.NoError(t, err)
	count, err := f.svc.NotificationService.UnreadCount(f.ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	admin := f.account(t, "root@example.com", models.UserRoleAdmin)
	f.account(t, "alice@example.com", models.UserRoleDonor)
	f.account(t, "bob@example.com", models.UserRoleNGO)

	all, err := f.svc.UserService.ListUsers(f.ctx, admin, dto.ListProfilesQuery{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)

	ngos, err := f.svc.UserService.ListUsers(f.ctx, admin, dto.ListProfilesQuery{Role: "ngo"}, 1, 20)
	require.NoError(t, err)
	require.Len(t, ngos.Users, 1)
	assert.Equal(t, "bob@example.com", ngos.Users[0].Email)

	found, err := f.svc.UserService.ListUsers(f.ctx, admin, dto.ListProfilesQuery{Search: "ALI"}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, found.Total)
}

func TestDeleteUser_ProfileComesBackAsDonor(t *testing.T) {
	f := newFixture(t)
	admin := f.account(t, "root@example.com", models.UserRoleAdmin)
	ngo := f.account(t, "ngo@example.com", models.UserRoleNGO)

	assert.ErrorIs(t, f.svc.UserService.DeleteUser(f.ctx, admin, admin.IdentityID), apperrors.ErrCannotModifySelf)
	require.NoError(t, f.svc.UserService.DeleteUser(f.ctx, admin, ngo.IdentityID))

	err := f.svc.UserService.DeleteUser(f.ctx, admin, ngo.IdentityID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	s, err := f.svc.SessionService.Resolve(f.ctx, ngo.IdentityID, ngo.Email)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleDonor, s.Role)
	assert.Contains(t, f.pub.Types(), events.ProfileDeleted)
}

func TestProfile_GetAndUpdate(t *testing.T) {
	f := newFixture(t)
	donor := f.account(t, "donor@example.com", models.UserRoleDonor)
	ngo := f.account(t, "ngo@example.com", models.UserRoleNGO)
	profiles := f.svc.ProfileService

	name := " Dana "
	org := "Pantry"
	resp, err := profiles.UpdateProfile(f.ctx, donor, &dto.UpdateProfileRequest{Name: &name, OrganizationName: &org})
	require.NoError(t, err)
	assert.Equal(t, "Dana", resp.Name)
	assert.Empty(t, resp.OrganizationName, "donors have no organization")
	assert.Equal(t, string(models.UserRoleDonor), resp.Role)

	resp, err = profiles.UpdateProfile(f.ctx, ngo, &dto.UpdateProfileRequest{OrganizationName: &org})
	require.NoError(t, err)
	assert.Equal(t, "Pantry", resp.OrganizationName)

	got, err := profiles.GetProfile(f.ctx, ngo)
	require.NoError(t, err)
	assert.Equal(t, "Pantry", got.OrganizationName)
	assert.Equal(t, "ngo@example.com", got.Email)

	_, err = profiles.GetProfile(f.ctx, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestDashboards(t *testing.T) {
	f := newFixture(t)
	donor := f.account(t, "donor@example.com", models.UserRoleDonor)
	ngo := f.account(t, "ngo@example.com", models.UserRoleNGO)
	admin := f.account(t, "root@example.com", models.UserRoleAdmin)

	a := f.donate(t, donor, "A")
	b := f.donate(t, donor, "B")
	f.donate(t, donor, "C")
	_, err := f.svc.DonationService.Claim(f.ctx, ngo, a.ID)
	require.NoError(t, err)
	_, err = f.svc.DonationService.Claim(f.ctx, ngo, b.ID)
	require.NoError(t, err)
	_, err = f.svc.DonationService.Collect(f.ctx, donor, b.ID)
	require.NoError(t, err)

	dd, err := f.svc.DashboardService.Donor(f.ctx, donor)
	require.NoError(t, err)
	assert.EqualValues(t, 3, dd.Total)
	assert.Equal(t, map[string]int64{"available": 1, "claimed": 1, "collected": 1}, dd.Counts)
	assert.Len(t, dd.Recent, 3)

	nd, err := f.svc.DashboardService.NGO(f.ctx, ngo)
	require.NoError(t, err)
	assert.EqualValues(t, 1, nd.Available)
	assert.Equal(t, map[string]int64{"available": 0, "claimed": 1, "collected": 1}, nd.ClaimCounts)
	assert.Len(t, nd.Recent, 2)

	ad, err := f.svc.DashboardService.Admin(f.ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 3, ad.TotalUsers)
	assert.EqualValues(t, 1, ad.UsersByRole["ngo"])
	assert.EqualValues(t, 3, ad.TotalDonations)

	_, err = f.svc.DashboardService.NGO(f.ctx, donor)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	_, err = f.svc.DashboardService.Admin(f.ctx, ngo)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	_, err = f.svc.DashboardService.Donor(f.ctx, ngo)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}
