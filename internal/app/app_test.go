package app_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	_ "foodshare_backend/docs"
	"foodshare_backend/internal/app"
	"foodshare_backend/internal/config"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/repositories/memory"
	"foodshare_backend/internal/services/dto"
	"foodshare_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expiry(days int) string {
	return time.Now().AddDate(0, 0, days).Format(models.DateLayout)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := testutil.NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok","live_connections":0}`, body)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))

	ts.SendRequest(t, http.MethodGet, "/api/v1/views", "", nil)
	res, body = ts.SendRequest(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "http_requests_total")
}

func TestAuthFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)

	// Arrange
	signed := ts.SignUp(t, "donor@example.com", models.UserRoleDonor)
	assert.Equal(t, "donor", signed.Session.Role)
	assert.Equal(t, "Bearer", signed.TokenType)

	// Act / Assert: duplicate email
	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"email": "DONOR@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode, body)

	// Act / Assert: bad credentials
	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]interface{}{
		"email": "donor@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	// Act / Assert: refresh rotates the refresh token
	var refreshed dto.AuthResponse
	ts.DecodeJSON(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": signed.RefreshToken,
	}, http.StatusOK, &refreshed)
	assert.NotEqual(t, signed.RefreshToken, refreshed.RefreshToken)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": signed.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	// Act / Assert: current session
	var sess dto.SessionResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/session", refreshed.AccessToken, nil, http.StatusOK, &sess)
	assert.Equal(t, "donor@example.com", sess.Email)
	assert.Equal(t, "/donor-dashboard", sess.Landing)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/session", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestSignUp_Validation(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "bad email", body: map[string]interface{}{"email": "nope", "password": "password123"}},
		{name: "short password", body: map[string]interface{}{"email": "a@example.com", "password": "123"}},
		{name: "unknown role", body: map[string]interface{}{"email": "a@example.com", "password": "password123", "role": "chef"}},
	}
	for _, tt := range tests {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/signup", "", tt.body)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, tt.name+": "+body)
	}
}

func TestViews(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ngo := ts.SignUp(t, "ngo@example.com", models.UserRoleNGO)

	var check dto.ViewCheckResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/views/check?path=/donate", ngo.AccessToken, nil, http.StatusOK, &check)
	assert.Equal(t, "access_denied", check.Outcome)

	ts.DecodeJSON(t, http.MethodGet, "/api/v1/views/check?path=/donate", "", nil, http.StatusOK, &check)
	assert.Equal(t, "login", check.Outcome)

	ts.DecodeJSON(t, http.MethodGet, "/api/v1/views/check?path=/view-donations", ngo.AccessToken, nil, http.StatusOK, &check)
	assert.Equal(t, "render", check.Outcome)

	var views dto.ViewsResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/views", "", nil, http.StatusOK, &views)
	assert.Empty(t, views.Views)
	assert.Equal(t, "/", views.Landing)

	ts.DecodeJSON(t, http.MethodGet, "/api/v1/views", ngo.AccessToken, nil, http.StatusOK, &views)
	assert.Contains(t, views.Views, "/ngo-dashboard")
	assert.Equal(t, "/ngo-dashboard", views.Landing)
}

func TestDonationLifecycle(t *testing.T) {
	ts := testutil.NewTestServer(t)
	donor := ts.SignUp(t, "donor@example.com", models.UserRoleDonor)
	ngo := ts.SignUp(t, "ngo@example.com", models.UserRoleNGO)
	rival := ts.SignUp(t, "rival@example.com", models.UserRoleNGO)

	// NGOs cannot post donations.
	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/donations", ngo.AccessToken, map[string]interface{}{
		"food_item": "Rice", "category": "grains", "quantity": "5kg", "expiry_date": expiry(2),
		"pickup_location": "Depot", "contact_info": "555",
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	d := ts.Donate(t, donor.AccessToken, "Bagels", expiry(2))
	assert.Equal(t, "available", d.Status)

	// Donors cannot claim.
	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/donations/"+d.ID+"/claim", donor.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	var claimed dto.DonationResponse
	ts.DecodeJSON(t, http.MethodPost, "/api/v1/donations/"+d.ID+"/claim", ngo.AccessToken, nil, http.StatusOK, &claimed)
	assert.Equal(t, "claimed", claimed.Status)
	assert.Equal(t, ngo.Session.IdentityKey, claimed.ClaimedBy)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/donations/"+d.ID+"/claim", rival.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	// Claimed donations are frozen for the donor.
	res, _ = ts.SendRequest(t, http.MethodPut, "/api/v1/donations/"+d.ID, donor.AccessToken, map[string]interface{}{"quantity": "20"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	// Only the donor or an admin confirms the pickup.
	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/donations/"+d.ID+"/collect", ngo.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	var collected dto.DonationResponse
	ts.DecodeJSON(t, http.MethodPost, "/api/v1/donations/"+d.ID+"/collect", donor.AccessToken, nil, http.StatusOK, &collected)
	assert.Equal(t, "collected", collected.Status)
	assert.Equal(t, donor.Session.IdentityKey, collected.CollectedBy)

	// A collected donation is closed to every NGO.
	for _, token := range []string{ngo.AccessToken, rival.AccessToken} {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/donations/"+d.ID+"/claim", token, nil)
		assert.Equal(t, http.StatusConflict, res.StatusCode, body)
		assert.Contains(t, body, `"code":"INVALID_STATUS"`)
	}

	var claims dto.DonationListResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/donations/claims", ngo.AccessToken, nil, http.StatusOK, &claims)
	require.Len(t, claims.Donations, 1)
	assert.Equal(t, d.ID, claims.Donations[0].ID)

	// The donor was told about the claim, the NGO about the collection.
	var donorInbox dto.NotificationListResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/notifications", donor.AccessToken, nil, http.StatusOK, &donorInbox)
	require.Len(t, donorInbox.Notifications, 1)
	assert.Equal(t, string(models.NotificationDonationClaimed), donorInbox.Notifications[0].Type)

	var ngoInbox dto.NotificationListResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/notifications", ngo.AccessToken, nil, http.StatusOK, &ngoInbox)
	require.Len(t, ngoInbox.Notifications, 1)
	assert.Equal(t, string(models.NotificationDonationCollected), ngoInbox.Notifications[0].Type)
}

func TestDonationEditAndDelete(t *testing.T) {
	ts := testutil.NewTestServer(t)
	donor := ts.SignUp(t, "donor@example.com", models.UserRoleDonor)
	other := ts.SignUp(t, "other@example.com", models.UserRoleDonor)
	d := ts.Donate(t, donor.AccessToken, "Apples", expiry(4))

	res, _ := ts.SendRequest(t, http.MethodPut, "/api/v1/donations/"+d.ID, other.AccessToken, map[string]interface{}{"quantity": "1"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	var updated dto.DonationResponse
	ts.DecodeJSON(t, http.MethodPut, "/api/v1/donations/"+d.ID, donor.AccessToken,
		map[string]interface{}{"quantity": "3 crates"}, http.StatusOK, &updated)
	assert.Equal(t, "3 crates", updated.Quantity)
	assert.Equal(t, "Apples", updated.FoodItem)

	// Required fields can be changed but not cleared.
	res, body := ts.SendRequest(t, http.MethodPut, "/api/v1/donations/"+d.ID, donor.AccessToken,
		map[string]interface{}{"food_item": "", "pickup_location": "", "contact_info": "  "})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
	assert.Contains(t, body, "food_item")

	var current dto.DonationResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/donations/"+d.ID, donor.AccessToken, nil, http.StatusOK, &current)
	assert.Equal(t, "Apples", current.FoodItem)
	assert.Equal(t, "1 Main St", current.PickupLocation)
	assert.Equal(t, "555-0100", current.ContactInfo)

	var mine dto.DonationListResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/donations/mine", donor.AccessToken, nil, http.StatusOK, &mine)
	assert.Len(t, mine.Donations, 1)

	res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/donations/"+d.ID, donor.AccessToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/donations/"+d.ID, donor.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDonationRoundTrip(t *testing.T) {
	ts := testutil.NewTestServer(t)
	donor := ts.SignUp(t, "donor@example.com", models.UserRoleDonor)
	ngo := ts.SignUp(t, "ngo@example.com", models.UserRoleNGO)

	// Arrange
	submitted := map[string]interface{}{
		"food_item":       "Rice",
		"category":        "Grains & Bread",
		"quantity":        "5kg",
		"expiry_date":     "2025-01-01",
		"pickup_location": "123 Main St",
		"contact_info":    "555-0100",
	}

	// Act
	var created dto.DonationResponse
	ts.DecodeJSON(t, http.MethodPost, "/api/v1/donations", donor.AccessToken, submitted, http.StatusCreated, &created)
	var read dto.DonationResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/donations/"+created.ID, ngo.AccessToken, nil, http.StatusOK, &read)

	// Assert
	assert.Equal(t, "available", read.Status)
	assert.Equal(t, "Rice", read.FoodItem)
	assert.Equal(t, "Grains & Bread", read.Category)
	assert.Equal(t, "5kg", read.Quantity)
	assert.Equal(t, "2025-01-01", read.ExpiryDate)
	assert.Equal(t, "123 Main St", read.PickupLocation)
	assert.Equal(t, "555-0100", read.ContactInfo)
	assert.Equal(t, donor.Session.IdentityKey, read.DonorID)
	assert.Empty(t, read.ClaimedBy)
}

func TestListDonations_Filters(t *testing.T) {
	ts := testutil.NewTestServer(t)
	donor := ts.SignUp(t, "donor@example.com", models.UserRoleDonor)
	ngo := ts.SignUp(t, "ngo@example.com", models.UserRoleNGO)
	first := ts.Donate(t, donor.AccessToken, "Croissants", expiry(1))
	ts.Donate(t, donor.AccessToken, "Baguettes", expiry(5))
	ts.SendRequest(t, http.MethodPost, "/api/v1/donations/"+first.ID+"/claim", ngo.AccessToken, nil)

	var list dto.DonationListResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/donations?status=available", ngo.AccessToken, nil, http.StatusOK, &list)
	require.Len(t, list.Donations, 1)
	assert.Equal(t, "Baguettes", list.Donations[0].FoodItem)

	ts.DecodeJSON(t, http.MethodGet, "/api/v1/donations?search=croiss", ngo.AccessToken, nil, http.StatusOK, &list)
	require.Len(t, list.Donations, 1)
	assert.Equal(t, first.ID, list.Donations[0].ID)

	ts.DecodeJSON(t, http.MethodGet, "/api/v1/donations?sort=expiryDate_desc", ngo.AccessToken, nil, http.StatusOK, &list)
	require.Len(t, list.Donations, 2)
	assert.Equal(t, "Baguettes", list.Donations[0].FoodItem)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/donations?status=lost", ngo.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/donations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestNotifications_ReadAllPartialFailure(t *testing.T) {
	ts := testutil.NewTestServer(t)
	donor := ts.SignUp(t, "donor@example.com", models.UserRoleDonor)
	ngo := ts.SignUp(t, "ngo@example.com", models.UserRoleNGO)
	for _, item := range []string{"Pasta", "Beans", "Milk"} {
		d := ts.Donate(t, donor.AccessToken, item, expiry(3))
		ts.DecodeJSON(t, http.MethodPost, "/api/v1/donations/"+d.ID+"/claim", ngo.AccessToken, nil, http.StatusOK, nil)
	}

	var inbox dto.NotificationListResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/notifications", donor.AccessToken, nil, http.StatusOK, &inbox)
	require.Len(t, inbox.Notifications, 3)
	stuck := inbox.Notifications[1].ID
	ts.Store.FailNotification(stuck, errors.New("write timeout"))

	var result dto.MarkAllResult
	ts.DecodeJSON(t, http.MethodPost, "/api/v1/notifications/read-all", donor.AccessToken, nil, http.StatusMultiStatus, &result)
	assert.Equal(t, 2, result.Marked)
	assert.Equal(t, []string{stuck}, result.Failed)

	var unread dto.UnreadCountResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/notifications/unread-count", donor.AccessToken, nil, http.StatusOK, &unread)
	assert.EqualValues(t, 1, unread.Count)

	ts.Store.FailNotification(stuck, nil)
	ts.DecodeJSON(t, http.MethodPost, "/api/v1/notifications/read-all", donor.AccessToken, nil, http.StatusOK, &result)
	assert.Equal(t, 1, result.Marked)
	assert.Empty(t, result.Failed)

	// Another user's notification is not visible.
	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/notifications/"+stuck+"/read", ngo.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestProfile(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ngo := ts.SignUp(t, "ngo@example.com", models.UserRoleNGO)

	var profile dto.ProfileResponse
	ts.DecodeJSON(t, http.MethodPut, "/api/v1/profile", ngo.AccessToken,
		map[string]interface{}{"name": "Food Bank", "contact_info": "555-0199"}, http.StatusOK, &profile)
	assert.Equal(t, "Food Bank", profile.Name)
	assert.Equal(t, "ngo", profile.Role)

	ts.DecodeJSON(t, http.MethodGet, "/api/v1/profile", ngo.AccessToken, nil, http.StatusOK, &profile)
	assert.Equal(t, "555-0199", profile.ContactInfo)
}

func TestDashboards(t *testing.T) {
	ts := testutil.NewTestServer(t)
	donor := ts.SignUp(t, "donor@example.com", models.UserRoleDonor)
	ngo := ts.SignUp(t, "ngo@example.com", models.UserRoleNGO)
	admin := ts.AdminToken(t)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/dashboard/donor", donor.AccessToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/dashboard/donor", ngo.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/dashboard/ngo", ngo.AccessToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/dashboard/admin", admin, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/dashboard/admin", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestAdminConsole(t *testing.T) {
	ts := testutil.NewTestServer(t)
	donor := ts.SignUp(t, "donor@example.com", models.UserRoleDonor)
	ngo := ts.SignUp(t, "ngo@example.com", models.UserRoleNGO)
	admin := ts.AdminToken(t)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/admin/users", donor.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	var users dto.ProfileListResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/admin/users", admin, nil, http.StatusOK, &users)
	assert.EqualValues(t, 3, users.Total)

	ts.DecodeJSON(t, http.MethodGet, "/api/v1/admin/users?role=ngo", admin, nil, http.StatusOK, &users)
	require.Len(t, users.Users, 1)
	assert.Equal(t, "ngo@example.com", users.Users[0].Email)

	// Promotion takes effect on the next request with the same token.
	var promoted dto.ProfileResponse
	ts.DecodeJSON(t, http.MethodPut, "/api/v1/admin/users/"+donor.Session.IdentityKey+"/role", admin,
		map[string]interface{}{"role": "ngo"}, http.StatusOK, &promoted)
	assert.Equal(t, "ngo", promoted.Role)

	var sess dto.SessionResponse
	ts.DecodeJSON(t, http.MethodGet, "/api/v1/session", donor.AccessToken, nil, http.StatusOK, &sess)
	assert.Equal(t, "ngo", sess.Role)

	var note dto.NotificationResponse
	ts.DecodeJSON(t, http.MethodPost, "/api/v1/admin/users/"+ngo.Session.IdentityKey+"/notify", admin,
		map[string]interface{}{"title": "Welcome", "message": "Thanks for joining"}, http.StatusCreated, &note)
	assert.Equal(t, "Welcome", note.Title)

	res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/admin/users/"+ngo.Session.IdentityKey, admin, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestAdminAdvance(t *testing.T) {
	ts := testutil.NewTestServer(t)
	donor := ts.SignUp(t, "donor@example.com", models.UserRoleDonor)
	admin := ts.AdminToken(t)
	d := ts.Donate(t, donor.AccessToken, "Yogurt", expiry(2))

	var resp dto.DonationResponse
	ts.DecodeJSON(t, http.MethodPost, "/api/v1/admin/donations/"+d.ID+"/advance", admin, nil, http.StatusOK, &resp)
	assert.Equal(t, "claimed", resp.Status)
	ts.DecodeJSON(t, http.MethodPost, "/api/v1/admin/donations/"+d.ID+"/advance", admin, nil, http.StatusOK, &resp)
	assert.Equal(t, "collected", resp.Status)

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/donations/"+d.ID+"/advance", admin, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestRateLimitOnAuth(t *testing.T) {
	ts := testutil.NewTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit.PerSecond = 1
		cfg.RateLimit.Burst = 2
	})

	var last int
	for i := 0; i < 5; i++ {
		res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]interface{}{
			"email": "x@example.com", "password": "whatever",
		})
		last = res.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestSeedFirstAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := store.Repositories()
	cfg := testutil.TestConfig()

	require.NoError(t, app.SeedFirstAdmin(ctx, repos, cfg))
	require.NoError(t, app.SeedFirstAdmin(ctx, repos, cfg), "seeding twice is a no-op")

	identity, err := repos.Identities.FindByEmail(ctx, testutil.AdminEmail)
	require.NoError(t, err)
	profile, err := repos.Profiles.FindByID(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, profile.Role)

	// A demoted admin is promoted back.
	require.NoError(t, repos.Profiles.UpdateRole(ctx, identity.ID, models.UserRoleDonor))
	require.NoError(t, app.SeedFirstAdmin(ctx, repos, cfg))
	profile, err = repos.Profiles.FindByID(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, profile.Role)

	cfg.FirstAdmin.Password = ""
	assert.NoError(t, app.SeedFirstAdmin(ctx, memory.New().Repositories(), cfg))
}

func TestSwaggerServed(t *testing.T) {
	ts := testutil.NewTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/swagger/doc.json", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, strings.Contains(body, "FoodShare API"))
}
