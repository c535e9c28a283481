package services

import (
	"context"
	"errors"

	"foodshare_backend/internal/events"
	"foodshare_backend/internal/logger"
	"foodshare_backend/internal/repositories"
	"foodshare_backend/internal/session"
	"foodshare_backend/pkg/apperrors"
)

var errNoSession = apperrors.AuthRequired("Sign in to continue")

func requireSession(s *session.Session) error {
	if s == nil || s.IdentityID == "" {
		return errNoSession
	}
	return nil
}

// storeError translates repository sentinels into AppErrors; anything else
// is a provider failure.
func storeError(err error, domain string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrDonationNotFound):
		return apperrors.ErrNotFound(err, domain, "Donation not found")
	case errors.Is(err, repositories.ErrNotificationNotFound):
		return apperrors.ErrNotFound(err, domain, "Notification not found")
	case errors.Is(err, repositories.ErrProfileNotFound):
		return apperrors.ErrNotFound(err, domain, "User not found")
	case errors.Is(err, repositories.ErrIdentityNotFound):
		return apperrors.ErrNotFound(err, domain, "Account not found")
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperrors.Provider(err, domain)
	}
}

// publish sends a live event. Delivery is best effort: a failure is logged
// and never fails the write that produced it.
func publish(ctx context.Context, pub events.Publisher, topic events.Topic, typ, userID string, payload interface{}) {
	if pub == nil {
		return
	}
	e, err := events.New(topic, typ, userID, payload)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to encode event", err, "type", typ)
		return
	}
	if err := pub.Publish(ctx, e); err != nil {
		logger.CtxWithError(ctx, "Failed to publish event", err, "type", typ, "topic", string(topic))
	}
}
