// Package testutil runs the full HTTP stack over the in-memory store for
// handler and end-to-end tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodshare_backend/internal/app"
	"foodshare_backend/internal/config"
	"foodshare_backend/internal/email"
	"foodshare_backend/internal/events"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/repositories/memory"
	"foodshare_backend/internal/services/dto"

	"github.com/stretchr/testify/require"
)

const (
	AdminEmail    = "admin@foodshare.test"
	AdminPassword = "admin-password"
)

type TestServer struct {
	Server *httptest.Server
	App    *app.App
	Store  *memory.Store
	Bus    *events.LocalBus

	cancel context.CancelFunc
}

// TestConfig is a memory-backed configuration with a seeded admin.
func TestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Database.Driver = "memory"
	cfg.JWT.Secret = "test-secret-key"
	cfg.JWT.TTL = 60
	cfg.JWT.RefreshTTL = 24
	cfg.FirstAdmin.Email = AdminEmail
	cfg.FirstAdmin.Password = AdminPassword
	cfg.FirstAdmin.Name = "Admin"
	cfg.RateLimit.PerSecond = 1000
	cfg.RateLimit.Burst = 1000
	return cfg
}

// NewTestServer starts the router and the live manager. The server is closed
// with the test.
func NewTestServer(t *testing.T, mutate ...func(*config.Config)) *TestServer {
	t.Helper()

	cfg := TestConfig()
	for _, m := range mutate {
		m(cfg)
	}

	store := memory.New()
	repos := store.Repositories()
	bus := events.NewLocalBus()
	a := app.NewWithRepositories(cfg, repos, bus, email.NewLogProvider(email.NewTemplateManager()))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, app.SeedFirstAdmin(ctx, repos, cfg))
	go a.WSManager.Run(ctx)

	ts := &TestServer{
		Server: httptest.NewServer(a.Router),
		App:    a,
		Store:  store,
		Bus:    bus,
		cancel: cancel,
	}
	t.Cleanup(ts.Close)
	return ts
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.cancel()
	ts.App.Close()
}

// SendRequest sends body as JSON and returns the response with its body read.
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(raw)
}

// DecodeJSON sends a request, asserts the status and decodes the reply into out.
func (ts *TestServer) DecodeJSON(t *testing.T, method, path, token string, body interface{}, wantStatus int, out interface{}) {
	t.Helper()
	res, raw := ts.SendRequest(t, method, path, token, body)
	require.Equal(t, wantStatus, res.StatusCode, raw)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(raw), out), raw)
	}
}

// SignUp registers an account through the API and returns its auth reply.
func (ts *TestServer) SignUp(t *testing.T, email string, role models.UserRole) dto.AuthResponse {
	t.Helper()
	var resp dto.AuthResponse
	ts.DecodeJSON(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"email":             email,
		"password":          "password123",
		"name":              models.EmailLocalPart(email),
		"role":              string(role),
		"organization_name": "Test Org",
	}, http.StatusCreated, &resp)
	require.NotEmpty(t, resp.AccessToken)
	return resp
}

// SignIn returns an access token for an existing account.
func (ts *TestServer) SignIn(t *testing.T, email, password string) dto.AuthResponse {
	t.Helper()
	var resp dto.AuthResponse
	ts.DecodeJSON(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]interface{}{
		"email":    email,
		"password": password,
	}, http.StatusOK, &resp)
	return resp
}

// AdminToken signs in as the seeded admin.
func (ts *TestServer) AdminToken(t *testing.T) string {
	t.Helper()
	return ts.SignIn(t, AdminEmail, AdminPassword).AccessToken
}

// Donate posts a donation as token's owner.
func (ts *TestServer) Donate(t *testing.T, token, item, expiry string) dto.DonationResponse {
	t.Helper()
	var resp dto.DonationResponse
	ts.DecodeJSON(t, http.MethodPost, "/api/v1/donations", token, map[string]interface{}{
		"food_item":       item,
		"category":        "baked",
		"quantity":        "10",
		"expiry_date":     expiry,
		"pickup_location": "1 Main St",
		"contact_info":    "555-0100",
	}, http.StatusCreated, &resp)
	return resp
}
