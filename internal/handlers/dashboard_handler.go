package handlers

import (
	"net/http"

	"foodshare_backend/internal/access"
	"foodshare_backend/internal/middleware"
	"foodshare_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	*BaseHandler
	dashboardService services.DashboardService
}

func NewDashboardHandler(base *BaseHandler, dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      base,
		dashboardService: dashboardService,
	}
}

func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("/donor", middleware.RequireView(access.ViewDonorDashboard), h.Donor)
		dashboard.GET("/ngo", middleware.RequireView(access.ViewNGODashboard), h.NGO)
		dashboard.GET("/admin", middleware.RequireView(access.ViewAdminDashboard), h.Admin)
	}
}

func (h *DashboardHandler) Donor(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	resp, err := h.dashboardService.Donor(c.Request.Context(), sess)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DashboardHandler) NGO(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	resp, err := h.dashboardService.NGO(c.Request.Context(), sess)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DashboardHandler) Admin(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	resp, err := h.dashboardService.Admin(c.Request.Context(), sess)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
