package handlers

import (
	"net/http"

	"foodshare_backend/internal/access"
	"foodshare_backend/internal/middleware"
	"foodshare_backend/internal/services"
	"foodshare_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type DonationHandler struct {
	*BaseHandler
	donationService services.DonationService
}

func NewDonationHandler(base *BaseHandler, donationService services.DonationService) *DonationHandler {
	return &DonationHandler{
		BaseHandler:     base,
		donationService: donationService,
	}
}

func (h *DonationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	donations := rg.Group("/donations")
	donations.Use(middleware.RequireSession())
	{
		donations.POST("", middleware.RequireView(access.ViewDonate), h.CreateDonation)
		donations.GET("", middleware.RequireView(access.ViewDonations), h.ListDonations)
		donations.GET("/mine", middleware.RequireView(access.ViewMyDonations), h.ListMyDonations)
		donations.GET("/claims", middleware.RequireView(access.ViewNGODashboard), h.ListMyClaims)

		donations.GET("/:id", middleware.RequireView(access.ViewDonations), h.GetDonation)
		donations.PUT("/:id", h.UpdateDonation)
		donations.DELETE("/:id", h.DeleteDonation)

		donations.POST("/:id/claim", h.ClaimDonation)
		donations.POST("/:id/collect", h.CollectDonation)
	}
}

func (h *DonationHandler) CreateDonation(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}

	var req dto.CreateDonationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.donationService.Create(c.Request.Context(), sess, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DonationHandler) ListDonations(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}

	var query dto.ListDonationsQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	page, pageSize := ParsePagination(c)

	resp, err := h.donationService.List(c.Request.Context(), sess, query, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DonationHandler) ListMyDonations(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	page, pageSize := ParsePagination(c)

	resp, err := h.donationService.ListMine(c.Request.Context(), sess, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DonationHandler) ListMyClaims(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	page, pageSize := ParsePagination(c)

	resp, err := h.donationService.ListClaims(c.Request.Context(), sess, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DonationHandler) GetDonation(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}

	resp, err := h.donationService.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DonationHandler) UpdateDonation(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}

	var req dto.UpdateDonationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.donationService.Update(c.Request.Context(), sess, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DonationHandler) DeleteDonation(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}

	if err := h.donationService.Delete(c.Request.Context(), sess, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Donation deleted"})
}

func (h *DonationHandler) ClaimDonation(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}

	resp, err := h.donationService.Claim(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DonationHandler) CollectDonation(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}

	resp, err := h.donationService.Collect(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
