package dto

import (
	"math"
	"time"

	"foodshare_backend/internal/models"
)

type CreateDonationRequest struct {
	FoodItem       string `json:"food_item" validate:"required,notblank,max=255"`
	Category       string `json:"category" validate:"required,notblank,max=64"`
	Quantity       string `json:"quantity" validate:"required,notblank,max=255"`
	ExpiryDate     string `json:"expiry_date" validate:"required,is-iso-date"`
	PickupLocation string `json:"pickup_location" validate:"required,notblank,max=500"`
	ContactInfo    string `json:"contact_info" validate:"required,notblank,max=255"`
	Notes          string `json:"notes"`
}

// UpdateDonationRequest only changes the fields that are present.
type UpdateDonationRequest struct {
	FoodItem       *string `json:"food_item" validate:"omitempty,notblank,max=255"`
	Category       *string `json:"category" validate:"omitempty,notblank,max=64"`
	Quantity       *string `json:"quantity" validate:"omitempty,notblank,max=255"`
	ExpiryDate     *string `json:"expiry_date" validate:"omitempty,is-iso-date"`
	PickupLocation *string `json:"pickup_location" validate:"omitempty,notblank,max=500"`
	ContactInfo    *string `json:"contact_info" validate:"omitempty,notblank,max=255"`
	Notes          *string `json:"notes"`
}

type ListDonationsQuery struct {
	Status   string `form:"status" validate:"omitempty,is-donation-status"`
	Category string `form:"category"`
	Search   string `form:"search"`
	Sort     string `form:"sort" validate:"omitempty,oneof=createdAt_desc createdAt_asc expiryDate_asc expiryDate_desc"`
}

type DonationResponse struct {
	ID             string    `json:"id"`
	DonorID        string    `json:"donor_id"`
	DonorName      string    `json:"donor_name"`
	DonorEmail     string    `json:"donor_email"`
	FoodItem       string    `json:"food_item"`
	Category       string    `json:"category"`
	Quantity       string    `json:"quantity"`
	ExpiryDate     string    `json:"expiry_date"`
	PickupLocation string    `json:"pickup_location"`
	ContactInfo    string    `json:"contact_info"`
	Notes          string    `json:"notes,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	ClaimedBy      string     `json:"claimed_by,omitempty"`
	ClaimedByName  string     `json:"claimed_by_name,omitempty"`
	ClaimedByEmail string     `json:"claimed_by_email,omitempty"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty"`

	CollectedBy      string     `json:"collected_by,omitempty"`
	CollectedByName  string     `json:"collected_by_name,omitempty"`
	CollectedByEmail string     `json:"collected_by_email,omitempty"`
	CollectedAt      *time.Time `json:"collected_at,omitempty"`
}

func NewDonationResponse(d *models.Donation) DonationResponse {
	return DonationResponse{
		ID:               d.ID,
		DonorID:          d.DonorID,
		DonorName:        d.DonorName,
		DonorEmail:       d.DonorEmail,
		FoodItem:         d.FoodItem,
		Category:         d.Category,
		Quantity:         d.Quantity,
		ExpiryDate:       d.Expiry().Format(models.DateLayout),
		PickupLocation:   d.PickupLocation,
		ContactInfo:      d.ContactInfo,
		Notes:            d.Notes,
		Status:           string(d.Status),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		ClaimedBy:        d.ClaimedBy,
		ClaimedByName:    d.ClaimedByName,
		ClaimedByEmail:   d.ClaimedByEmail,
		ClaimedAt:        d.ClaimedAt,
		CollectedBy:      d.CollectedBy,
		CollectedByName:  d.CollectedByName,
		CollectedByEmail: d.CollectedByEmail,
		CollectedAt:      d.CollectedAt,
	}
}

func NewDonationResponses(list []*models.Donation) []DonationResponse {
	out := make([]DonationResponse, 0, len(list))
	for _, d := range list {
		out = append(out, NewDonationResponse(d))
	}
	return out
}

type DonationListResponse struct {
	Donations  []DonationResponse `json:"donations"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// TotalPages rounds up; zero items is zero pages.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}
