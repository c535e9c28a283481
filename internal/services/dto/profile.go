package dto

import (
	"time"

	"foodshare_backend/internal/models"
)

type ProfileResponse struct {
	IdentityKey      string    `json:"identity_key"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	ContactInfo      string    `json:"contact_info,omitempty"`
	OrganizationName string    `json:"organization_name,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewProfileResponse(p *models.Profile) ProfileResponse {
	return ProfileResponse{
		IdentityKey:      p.IdentityID,
		Name:             p.DisplayName(),
		Email:            p.Email,
		Role:             string(p.Role),
		ContactInfo:      p.ContactInfo,
		OrganizationName: p.OrganizationName,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// UpdateProfileRequest carries the self-editable fields. Email and role are
// not among them.
type UpdateProfileRequest struct {
	Name             *string `json:"name" validate:"omitempty,notblank,max=255"`
	ContactInfo      *string `json:"contact_info" validate:"omitempty,max=255"`
	OrganizationName *string `json:"organization_name" validate:"omitempty,max=255"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,is-user-role"`
}

type ListProfilesQuery struct {
	Role   string `form:"role" validate:"omitempty,is-user-role"`
	Search string `form:"search"`
}

type ProfileListResponse struct {
	Users      []ProfileResponse `json:"users"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}
