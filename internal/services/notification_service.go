package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"foodshare_backend/internal/auth"
	"foodshare_backend/internal/events"
	"foodshare_backend/internal/logger"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/repositories"
	"foodshare_backend/internal/services/dto"
	"foodshare_backend/internal/session"
	"foodshare_backend/pkg/apperrors"

	"gorm.io/datatypes"
)

type NotificationService interface {
	List(ctx context.Context, s *session.Session, unreadOnly bool, page, pageSize int) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, s *session.Session) (int64, error)
	MarkAsRead(ctx context.Context, s *session.Session, notificationID string) error
	// MarkAllAsRead is best effort: each unread item is marked on its own and
	// failures are reported, not rolled back.
	MarkAllAsRead(ctx context.Context, s *session.Session) (*dto.MarkAllResult, error)
	Announce(ctx context.Context, s *session.Session, userID string, req *dto.AnnouncementRequest) (*dto.NotificationResponse, error)

	// Notify stores a notification for userID and pushes it live.
	Notify(ctx context.Context, userID string, typ models.NotificationType, title, message string, data map[string]interface{}) (*models.Notification, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	profileRepo      repositories.ProfileRepository
	publisher        events.Publisher
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	profileRepo repositories.ProfileRepository,
	publisher events.Publisher,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		profileRepo:      profileRepo,
		publisher:        publisher,
	}
}

func (s *notificationService) List(ctx context.Context, sess *session.Session, unreadOnly bool, page, pageSize int) (*dto.NotificationListResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	list, total, err := s.notificationRepo.ListByUser(ctx, sess.IdentityID, repositories.NotificationCriteria{
		UnreadOnly: unreadOnly,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, storeError(err, "notification")
	}

	items := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		items = append(items, dto.NewNotificationResponse(n))
	}
	return &dto.NotificationListResponse{
		Notifications: items,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    dto.TotalPages(total, pageSize),
	}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, sess *session.Session) (int64, error) {
	if err := requireSession(sess); err != nil {
		return 0, err
	}
	count, err := s.notificationRepo.CountUnread(ctx, sess.IdentityID)
	if err != nil {
		return 0, storeError(err, "notification")
	}
	return count, nil
}

// MarkAsRead reports not found for notifications owned by someone else.
func (s *notificationService) MarkAsRead(ctx context.Context, sess *session.Session, notificationID string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := s.notificationRepo.MarkAsRead(ctx, sess.IdentityID, notificationID, time.Now().UTC()); err != nil {
		return storeError(err, "notification")
	}
	publish(ctx, s.publisher, events.TopicNotifications, events.NotificationRead, sess.IdentityID,
		map[string]interface{}{"ids": []string{notificationID}})
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, sess *session.Session) (*dto.MarkAllResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	unread, err := s.notificationRepo.ListUnreadIDs(ctx, sess.IdentityID)
	if err != nil {
		return nil, storeError(err, "notification")
	}

	result := &dto.MarkAllResult{Failed: []string{}}
	marked := make([]string, 0, len(unread))
	now := time.Now().UTC()
	for _, id := range unread {
		if err := s.notificationRepo.MarkAsRead(ctx, sess.IdentityID, id, now); err != nil {
			logger.CtxWithError(ctx, "Failed to mark notification as read", err, "notification_id", id)
			result.Failed = append(result.Failed, id)
			continue
		}
		marked = append(marked, id)
	}
	result.Marked = len(marked)

	if len(marked) > 0 {
		publish(ctx, s.publisher, events.TopicNotifications, events.NotificationRead, sess.IdentityID,
			map[string]interface{}{"ids": marked})
	}
	return result, nil
}

// Announce lets an admin post a message to one user.
func (s *notificationService) Announce(ctx context.Context, sess *session.Session, userID string, req *dto.AnnouncementRequest) (*dto.NotificationResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !auth.HasPermission(sess.Role, auth.PermNotifySend) {
		return nil, apperrors.Permission("notification", "Only admins can send announcements")
	}
	if _, err := s.profileRepo.FindByID(ctx, userID); err != nil {
		return nil, storeError(err, "notification")
	}

	n, err := s.Notify(ctx, userID, models.NotificationAnnouncement,
		strings.TrimSpace(req.Title), strings.TrimSpace(req.Message),
		map[string]interface{}{"from": sess.IdentityID})
	if err != nil {
		return nil, err
	}
	resp := dto.NewNotificationResponse(n)
	return &resp, nil
}

func (s *notificationService) Notify(ctx context.Context, userID string, typ models.NotificationType, title, message string, data map[string]interface{}) (*models.Notification, error) {
	n := &models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		n.Data = datatypes.JSON(raw)
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, storeError(err, "notification")
	}

	publish(ctx, s.publisher, events.TopicNotifications, events.NotificationCreated, userID, dto.NewNotificationResponse(n))
	return n, nil
}
