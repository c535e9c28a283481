package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"foodshare_backend/internal/access"
	"foodshare_backend/internal/logger"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// withSession stands in for AuthMiddleware.
func withSession(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s != nil {
			c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), s))
		}
		c.Next()
	}
}

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.GetRequestID(c.Request.Context()))
	})

	t.Run("mints an id", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		id := w.Header().Get("X-Request-ID")
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		w := serve(r, req)
		assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	})

	t.Run("replaces an oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("x", 65))
		w := serve(r, req)
		assert.Len(t, w.Header().Get("X-Request-ID"), 36)
	})
}

func TestCORSMiddleware(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.org"}))
	r.GET("/", ok)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.org")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/", ok)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		codes = append(codes, serve(r, req).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireView(t *testing.T) {
	t.Parallel()

	donor := &session.Session{IdentityID: "d1", Email: "d@example.com", Role: models.UserRoleDonor}
	ngo := &session.Session{IdentityID: "n1", Email: "n@example.com", Role: models.UserRoleNGO}

	tests := []struct {
		name string
		sess *session.Session
		view string
		want int
	}{
		{name: "anonymous", sess: nil, view: access.ViewDonate, want: http.StatusUnauthorized},
		{name: "allowed", sess: donor, view: access.ViewDonate, want: http.StatusOK},
		{name: "wrong role", sess: ngo, view: access.ViewDonate, want: http.StatusForbidden},
		{name: "unknown view is admin only", sess: donor, view: "/reports", want: http.StatusForbidden},
		{name: "public view", sess: nil, view: access.ViewHome, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", withSession(tt.sess), RequireView(tt.view), ok)
			w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.GET("/anon", RequireSession(), ok)
	r.GET("/known", withSession(&session.Session{IdentityID: "x", Role: models.UserRoleNGO}), RequireSession(), ok)

	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/anon", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/known", nil)).Code)
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, bearerToken(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/?token=xyz", nil)
	assert.Equal(t, "xyz", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, serve(r, req).Body.String())
}
