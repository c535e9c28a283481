package services

import (
	"context"
	"fmt"

	"foodshare_backend/internal/auth"
	"foodshare_backend/internal/events"
	"foodshare_backend/internal/logger"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/repositories"
	"foodshare_backend/internal/services/dto"
	"foodshare_backend/internal/session"
	"foodshare_backend/pkg/apperrors"
)

// UserService is the admin side of profiles.
type UserService interface {
	ListUsers(ctx context.Context, s *session.Session, query dto.ListProfilesQuery, page, pageSize int) (*dto.ProfileListResponse, error)
	ChangeRole(ctx context.Context, s *session.Session, userID string, role string) (*dto.ProfileResponse, error)
	// DeleteUser removes the profile only. The identity stays and gets a
	// fresh donor profile on its next sign-in.
	DeleteUser(ctx context.Context, s *session.Session, userID string) error
}

type userService struct {
	profileRepo   repositories.ProfileRepository
	notifications NotificationService
	publisher     events.Publisher
}

func NewUserService(
	profileRepo repositories.ProfileRepository,
	notifications NotificationService,
	publisher events.Publisher,
) UserService {
	return &userService{
		profileRepo:   profileRepo,
		notifications: notifications,
		publisher:     publisher,
	}
}

func requireAdmin(s *session.Session) error {
	if err := requireSession(s); err != nil {
		return err
	}
	if !auth.HasPermission(s.Role, auth.PermUsersManage) {
		return apperrors.ErrInsufficientPermissions
	}
	return nil
}

func (s *userService) ListUsers(ctx context.Context, sess *session.Session, query dto.ListProfilesQuery, page, pageSize int) (*dto.ProfileListResponse, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	criteria := repositories.ProfileCriteria{Search: query.Search, Page: page, PageSize: pageSize}
	if query.Role != "" {
		role, ok := models.ParseUserRole(query.Role)
		if !ok {
			return nil, apperrors.ErrInvalidUserRole
		}
		criteria.Role = role
	}

	list, total, err := s.profileRepo.List(ctx, criteria)
	if err != nil {
		return nil, storeError(err, "user")
	}

	users := make([]dto.ProfileResponse, 0, len(list))
	for _, p := range list {
		users = append(users, dto.NewProfileResponse(p))
	}
	return &dto.ProfileListResponse{
		Users:      users,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: dto.TotalPages(total, pageSize),
	}, nil
}

func (s *userService) ChangeRole(ctx context.Context, sess *session.Session, userID string, role string) (*dto.ProfileResponse, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if sess.Is(userID) {
		return nil, apperrors.ErrCannotModifySelf
	}
	newRole, ok := models.ParseUserRole(role)
	if !ok {
		return nil, apperrors.ErrInvalidUserRole
	}

	p, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	if p.Role == newRole {
		resp := dto.NewProfileResponse(p)
		return &resp, nil
	}

	if err := s.profileRepo.UpdateRole(ctx, userID, newRole); err != nil {
		return nil, storeError(err, "user")
	}
	oldRole := p.Role
	p.Role = newRole
	logger.CtxInfo(ctx, "User role changed", "user_id", userID, "from", oldRole, "to", newRole, "admin_id", sess.IdentityID)

	if _, err := s.notifications.Notify(ctx, userID, models.NotificationRoleChanged,
		"Your role has changed",
		fmt.Sprintf("An administrator changed your role from %s to %s.", oldRole, newRole),
		map[string]interface{}{"old_role": oldRole, "new_role": newRole}); err != nil {
		logger.CtxWithError(ctx, "Failed to notify role change", err, "user_id", userID)
	}

	resp := dto.NewProfileResponse(p)
	publish(ctx, s.publisher, events.TopicProfile, events.ProfileUpdated, userID, resp)
	return &resp, nil
}

func (s *userService) DeleteUser(ctx context.Context, sess *session.Session, userID string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if sess.Is(userID) {
		return apperrors.ErrCannotModifySelf
	}
	if err := s.profileRepo.Delete(ctx, userID); err != nil {
		return storeError(err, "user")
	}

	logger.CtxInfo(ctx, "User profile deleted", "user_id", userID, "admin_id", sess.IdentityID)
	publish(ctx, s.publisher, events.TopicProfile, events.ProfileDeleted, userID, map[string]string{"identity_key": userID})
	return nil
}
