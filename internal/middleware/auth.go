package middleware

import (
	"strings"

	"foodshare_backend/internal/access"
	"foodshare_backend/internal/logger"
	"foodshare_backend/internal/services"
	"foodshare_backend/internal/session"
	"foodshare_backend/pkg/apperrors"
	"foodshare_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the session of every request that carries an access
// token, either as a Bearer header or as ?token= (for websocket clients).
// Requests without a token continue anonymously; the role is always read
// fresh from the profile.
func AuthMiddleware(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		sess, err := authService.Authenticate(ctx, token)
		if err != nil {
			logger.CtxWarn(ctx, "Authentication failed", "path", c.Request.URL.Path, "error", err.Error())
			apperrors.HandleError(c, err)
			return
		}

		ctx = session.WithSession(ctx, sess)
		ctx = logger.WithUserID(ctx, sess.IdentityID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(contextkeys.SessionKey), sess)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}

// RequireSession rejects anonymous requests.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.FromContext(c.Request.Context()) == nil {
			apperrors.HandleError(c, apperrors.AuthRequired("Sign in to continue"))
			return
		}
		c.Next()
	}
}

// RequireView gates a route group with the same role table as the views:
// Login becomes 401 and AccessDenied 403.
func RequireView(view string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromContext(c.Request.Context())
		switch access.DecideView(sess, view) {
		case access.Render:
			c.Next()
		case access.Login:
			apperrors.HandleError(c, apperrors.AuthRequired("Sign in to continue"))
		case access.AccessDenied:
			logger.CtxWarn(c.Request.Context(), "View access denied", "view", view, "role", sess.Role)
			apperrors.HandleError(c, apperrors.Permission("access", "You do not have access to this page"))
		}
	}
}
