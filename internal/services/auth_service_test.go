package services

import (
	"testing"

	"foodshare_backend/internal/access"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/services/dto"
	"foodshare_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signUp(t *testing.T, f *fixture, email, role string) *dto.AuthResponse {
	t.Helper()
	resp, err := f.svc.AuthService.SignUp(f.ctx, &dto.SignUpRequest{
		Email:            email,
		Password:         "secret123",
		Role:             role,
		OrganizationName: "City Pantry",
	})
	require.NoError(t, err)
	return resp
}

func TestSignUp(t *testing.T) {
	f := newFixture(t)

	resp := signUp(t, f, "Donor@Example.com", "")
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "donor@example.com", resp.Session.Email)
	assert.Equal(t, string(models.UserRoleDonor), resp.Session.Role)
	assert.Equal(t, access.ViewDonorDashboard, resp.Redirect)

	p, err := f.repos.Profiles.FindByID(f.ctx, resp.Session.IdentityKey)
	require.NoError(t, err)
	assert.Empty(t, p.OrganizationName, "only NGOs keep an organization name")

	ngo := signUp(t, f, "ngo@example.com", "ngo")
	p, err = f.repos.Profiles.FindByID(f.ctx, ngo.Session.IdentityKey)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleNGO, p.Role)
	assert.Equal(t, "City Pantry", p.OrganizationName)
}

func TestSignUp_Rejections(t *testing.T) {
	f := newFixture(t)
	signUp(t, f, "taken@example.com", "donor")

	cases := []struct {
		name string
		req  dto.SignUpRequest
		want error
	}{
		{"admin role", dto.SignUpRequest{Email: "a@example.com", Password: "secret123", Role: "admin"}, nil},
		{"bad role", dto.SignUpRequest{Email: "b@example.com", Password: "secret123", Role: "chef"}, apperrors.ErrInvalidUserRole},
		{"weak password", dto.SignUpRequest{Email: "c@example.com", Password: "123"}, apperrors.ErrWeakPassword},
		{"duplicate", dto.SignUpRequest{Email: "TAKEN@example.com", Password: "secret123"}, apperrors.ErrEmailAlreadyExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.AuthService.SignUp(f.ctx, &tc.req)
			require.Error(t, err)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			} else {
				assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
			}
		})
	}
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)
	signUp(t, f, "ngo@example.com", "ngo")

	_, err := f.svc.AuthService.SignIn(f.ctx, &dto.SignInRequest{Email: "ngo@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.AuthService.SignIn(f.ctx, &dto.SignInRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	resp, err := f.svc.AuthService.SignIn(f.ctx, &dto.SignInRequest{Email: "NGO@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, access.ViewNGODashboard, resp.Redirect)

	resp, err = f.svc.AuthService.SignIn(f.ctx, &dto.SignInRequest{Email: "ngo@example.com", Password: "secret123", From: access.ViewDonations})
	require.NoError(t, err)
	assert.Empty(t, resp.Redirect)
}

func TestRefresh_Rotates(t *testing.T) {
	f := newFixture(t)
	first := signUp(t, f, "d@example.com", "")

	second, err := f.svc.AuthService.Refresh(f.ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.svc.AuthService.Refresh(f.ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = f.svc.AuthService.Refresh(f.ctx, "unknown")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestSignOut(t *testing.T) {
	f := newFixture(t)
	resp := signUp(t, f, "d@example.com", "")

	out, err := f.svc.AuthService.SignOut(f.ctx, &dto.SignOutRequest{RefreshToken: resp.RefreshToken, From: access.ViewProfile})
	require.NoError(t, err)
	assert.Equal(t, access.ViewAuth, out.Redirect)

	_, err = f.svc.AuthService.Refresh(f.ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	// Signing out twice is harmless.
	out, err = f.svc.AuthService.SignOut(f.ctx, &dto.SignOutRequest{RefreshToken: resp.RefreshToken, From: access.ViewHome})
	require.NoError(t, err)
	assert.Empty(t, out.Redirect)
}

func TestAuthenticate_RoleComesFromProfile(t *testing.T) {
	f := newFixture(t)
	resp := signUp(t, f, "d@example.com", "")

	s, err := f.svc.AuthService.Authenticate(f.ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleDonor, s.Role)

	require.NoError(t, f.repos.Profiles.UpdateRole(f.ctx, s.IdentityID, models.UserRoleNGO))

	s, err = f.svc.AuthService.Authenticate(f.ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleNGO, s.Role, "the token carries no role")

	_, err = f.svc.AuthService.Authenticate(f.ctx, "garbage")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	_, err = f.svc.AuthService.Authenticate(f.ctx, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}
