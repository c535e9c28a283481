package handlers

import (
	"foodshare_backend/internal/services"
	"foodshare_backend/internal/validator"
)

// AppHandlers holds every HTTP handler.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	SessionHandler      *SessionHandler
	ProfileHandler      *ProfileHandler
	DonationHandler     *DonationHandler
	NotificationHandler *NotificationHandler
	DashboardHandler    *DashboardHandler
	UserHandler         *UserHandler
}

func NewAppHandlers(svc *services.ServiceContainer, v *validator.Validator) *AppHandlers {
	base := NewBaseHandler(v)
	return &AppHandlers{
		AuthHandler:         NewAuthHandler(base, svc.AuthService),
		SessionHandler:      NewSessionHandler(base, svc.SessionService),
		ProfileHandler:      NewProfileHandler(base, svc.ProfileService),
		DonationHandler:     NewDonationHandler(base, svc.DonationService),
		NotificationHandler: NewNotificationHandler(base, svc.NotificationService),
		DashboardHandler:    NewDashboardHandler(base, svc.DashboardService),
		UserHandler:         NewUserHandler(base, svc.UserService, svc.NotificationService, svc.DonationService),
	}
}
