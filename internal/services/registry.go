package services

import (
	"time"

	"foodshare_backend/internal/auth"
	"foodshare_backend/internal/email"
	"foodshare_backend/internal/events"
	"foodshare_backend/internal/repositories"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	SessionService      SessionService
	AuthService         AuthService
	DonationService     DonationService
	NotificationService NotificationService
	ProfileService      ProfileService
	UserService         UserService
	DashboardService    DashboardService
	EmailService        email.Provider
}

// Dependencies are the collaborators shared by the services.
type Dependencies struct {
	Repositories *repositories.Repositories
	Tokens       *auth.TokenManager
	RefreshTTL   time.Duration
	Email        email.Provider
	Publisher    events.Publisher
}

func NewServiceContainer(deps Dependencies) *ServiceContainer {
	repos := deps.Repositories
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}

	sessions := NewSessionService(repos.Profiles)
	notifications := NewNotificationService(repos.Notifications, repos.Profiles, publisher)

	return &ServiceContainer{
		SessionService:      sessions,
		AuthService:         NewAuthService(repos.Identities, repos.RefreshTokens, sessions, deps.Tokens, deps.RefreshTTL),
		DonationService:     NewDonationService(repos.Donations, notifications, deps.Email, publisher),
		NotificationService: notifications,
		ProfileService:      NewProfileService(repos.Profiles, publisher),
		UserService:         NewUserService(repos.Profiles, notifications, publisher),
		DashboardService:    NewDashboardService(repos.Donations, repos.Profiles),
		EmailService:        deps.Email,
	}
}
