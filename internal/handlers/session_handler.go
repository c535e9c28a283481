package handlers

import (
	"net/http"

	"foodshare_backend/internal/access"
	"foodshare_backend/internal/middleware"
	"foodshare_backend/internal/services"
	"foodshare_backend/internal/services/dto"
	"foodshare_backend/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionHandler exposes the resolved session and the view gate.
type SessionHandler struct {
	*BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(base *BaseHandler, sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    base,
		sessionService: sessionService,
	}
}

func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/session", middleware.RequireSession(), h.CurrentSession)

	views := rg.Group("/views")
	{
		views.GET("", h.ListViews)
		views.GET("/check", h.CheckView)
	}
}

// CurrentSession returns the caller's session; ?from= decides the redirect.
func (h *SessionHandler) CurrentSession(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.sessionService.Describe(sess, c.Query("from")))
}

// ListViews works anonymously too: it then lists nothing and lands on "/".
func (h *SessionHandler) ListViews(c *gin.Context) {
	sess := session.FromContext(c.Request.Context())
	landing := access.ViewHome
	if sess != nil {
		landing = access.Landing(sess.Role)
	}
	c.JSON(http.StatusOK, dto.ViewsResponse{
		Views:   access.VisibleViews(sess),
		Landing: landing,
	})
}

func (h *SessionHandler) CheckView(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		path = access.ViewHome
	}
	outcome := access.DecideView(session.FromContext(c.Request.Context()), path)
	c.JSON(http.StatusOK, dto.ViewCheckResponse{Path: path, Outcome: outcome.String()})
}
