package services

import (
	"context"
	"strings"
	"time"

	"foodshare_backend/internal/events"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/repositories"
	"foodshare_backend/internal/services/dto"
	"foodshare_backend/internal/session"
)

// ProfileService is the self-service side of profiles.
type ProfileService interface {
	GetProfile(ctx context.Context, s *session.Session) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, s *session.Session, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
}

type profileService struct {
	profileRepo repositories.ProfileRepository
	publisher   events.Publisher
}

func NewProfileService(profileRepo repositories.ProfileRepository, publisher events.Publisher) ProfileService {
	return &profileService{profileRepo: profileRepo, publisher: publisher}
}

func (s *profileService) GetProfile(ctx context.Context, sess *session.Session) (*dto.ProfileResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	p, err := s.profileRepo.FindByID(ctx, sess.IdentityID)
	if err != nil {
		return nil, storeError(err, "profile")
	}
	resp := dto.NewProfileResponse(p)
	return &resp, nil
}

// UpdateProfile changes name and contact info. The organization name is only
// kept for NGOs; email and role never change here.
func (s *profileService) UpdateProfile(ctx context.Context, sess *session.Session, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	p, err := s.profileRepo.FindByID(ctx, sess.IdentityID)
	if err != nil {
		return nil, storeError(err, "profile")
	}

	cols := make(map[string]interface{})
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
		cols["name"] = p.Name
	}
	if req.ContactInfo != nil {
		p.ContactInfo = strings.TrimSpace(*req.ContactInfo)
		cols["contact_info"] = p.ContactInfo
	}
	if req.OrganizationName != nil && p.Role == models.UserRoleNGO {
		p.OrganizationName = strings.TrimSpace(*req.OrganizationName)
		cols["organization_name"] = p.OrganizationName
	}

	if len(cols) > 0 {
		if err := s.profileRepo.Update(ctx, sess.IdentityID, cols); err != nil {
			return nil, storeError(err, "profile")
		}
		p.UpdatedAt = time.Now().UTC()
	}

	resp := dto.NewProfileResponse(p)
	if len(cols) > 0 {
		publish(ctx, s.publisher, events.TopicProfile, events.ProfileUpdated, p.IdentityID, resp)
	}
	return &resp, nil
}
