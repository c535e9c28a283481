package handlers

import (
	"net/http"

	"foodshare_backend/internal/access"
	"foodshare_backend/internal/middleware"
	"foodshare_backend/internal/services"
	"foodshare_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the admin console: users and donation moderation.
type UserHandler struct {
	*BaseHandler
	userService         services.UserService
	notificationService services.NotificationService
	donationService     services.DonationService
}

func NewUserHandler(
	base *BaseHandler,
	userService services.UserService,
	notificationService services.NotificationService,
	donationService services.DonationService,
) *UserHandler {
	return &UserHandler{
		BaseHandler:         base,
		userService:         userService,
		notificationService: notificationService,
		donationService:     donationService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RequireView(access.ViewAdminUsers))
	{
		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:id/role", h.ChangeRole)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.POST("/users/:id/notify", h.Notify)

		admin.POST("/donations/:id/advance", h.AdvanceDonation)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}

	var query dto.ListProfilesQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	page, pageSize := ParsePagination(c)

	resp, err := h.userService.ListUsers(c.Request.Context(), sess, query, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}

	var req dto.ChangeRoleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.userService.ChangeRole(c.Request.Context(), sess, c.Param("id"), req.Role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), sess, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User profile deleted"})
}

func (h *UserHandler) Notify(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}

	var req dto.AnnouncementRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.notificationService.Announce(c.Request.Context(), sess, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) AdvanceDonation(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}

	resp, err := h.donationService.Advance(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
