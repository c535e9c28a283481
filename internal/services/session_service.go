package services

import (
	"context"
	"errors"
	"strings"

	"foodshare_backend/internal/access"
	"foodshare_backend/internal/logger"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/repositories"
	"foodshare_backend/internal/services/dto"
	"foodshare_backend/internal/session"
	"foodshare_backend/pkg/apperrors"
)

// SessionService turns an authenticated identity into a session.
type SessionService interface {
	// EnsureProfile returns the identity's profile, creating a default donor
	// profile when none exists. Calling it again is a no-op.
	EnsureProfile(ctx context.Context, identityID, email string) (*models.Profile, error)
	// Resolve reads the current role from the profile. It never returns a
	// partial session.
	Resolve(ctx context.Context, identityID, email string) (*session.Session, error)
	Describe(s *session.Session, from string) dto.SessionResponse
}

type sessionService struct {
	profileRepo repositories.ProfileRepository
}

func NewSessionService(profileRepo repositories.ProfileRepository) SessionService {
	return &sessionService{profileRepo: profileRepo}
}

func (s *sessionService) EnsureProfile(ctx context.Context, identityID, email string) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, identityID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repositories.ErrProfileNotFound) {
		return nil, apperrors.Provider(err, "session")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	profile = &models.Profile{
		IdentityID: identityID,
		Name:       models.EmailLocalPart(email),
		Email:      email,
		Role:       models.DefaultRole,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrProfileExists) {
			// Another request created it first.
			return s.profileRepo.FindByID(ctx, identityID)
		}
		logger.CtxWithError(ctx, "Failed to create default profile", err, "identity_id", identityID)
		return nil, apperrors.ProfileSetup(err)
	}

	logger.CtxInfo(ctx, "Default profile created", "identity_id", identityID)
	return profile, nil
}

func (s *sessionService) Resolve(ctx context.Context, identityID, email string) (*session.Session, error) {
	if identityID == "" {
		return nil, errNoSession
	}

	profile, err := s.EnsureProfile(ctx, identityID, email)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeProfileSetupFailed) {
			return nil, err
		}
		logger.CtxWithError(ctx, "Session resolution failed", err, "identity_id", identityID)
		return nil, errNoSession.WithError(err)
	}
	return session.FromProfile(profile), nil
}

func (s *sessionService) Describe(sess *session.Session, from string) dto.SessionResponse {
	resp := dto.NewSessionResponse(sess, access.Landing(sess.Role))
	resp.Redirect = access.RedirectAfterLogin(sess.Role, from)
	return resp
}
