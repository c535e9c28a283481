package repositories

import (
	"context"
	"time"

	"foodshare_backend/internal/models"

	"gorm.io/gorm"
)

type IdentityRepository interface {
	// CreateWithProfile stores the identity and its profile atomically.
	CreateWithProfile(ctx context.Context, identity *models.Identity, profile *models.Profile) error
	FindByID(ctx context.Context, id string) (*models.Identity, error)
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByIdentity(ctx context.Context, identityID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ProfileRepository interface {
	FindByID(ctx context.Context, identityID string) (*models.Profile, error)
	// Create fails with ErrProfileExists when a profile for the key exists.
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, identityID string, cols map[string]interface{}) error
	UpdateRole(ctx context.Context, identityID string, role models.UserRole) error
	Delete(ctx context.Context, identityID string) error
	List(ctx context.Context, criteria ProfileCriteria) ([]*models.Profile, int64, error)
	CountByRole(ctx context.Context) (RoleCounts, error)
}

type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	FindByID(ctx context.Context, id string) (*models.Donation, error)
	List(ctx context.Context, criteria DonationCriteria) ([]*models.Donation, int64, error)

	// UpdateIfAvailable and DeleteIfAvailable only touch a donation that is
	// still available and owned by donorID; otherwise ErrTransitionConflict
	// (or ErrDonationNotFound when it is gone).
	UpdateIfAvailable(ctx context.Context, id, donorID string, cols map[string]interface{}) error
	DeleteIfAvailable(ctx context.Context, id, donorID string) error

	// Transition applies t only when the stored status still equals t.From.
	Transition(ctx context.Context, id string, t models.DonationTransition) error

	CountByStatus(ctx context.Context, criteria DonationCriteria) (StatusCounts, error)
	FindExpiring(ctx context.Context, criteria ExpiringCriteria) ([]*models.Donation, error)
	// MarkExpiryNotified returns false when another run already marked it.
	MarkExpiryNotified(ctx context.Context, id string, at time.Time) (bool, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, criteria NotificationCriteria) ([]*models.Notification, int64, error)
	ListUnreadIDs(ctx context.Context, userID string) ([]string, error)
	// MarkAsRead only touches a notification owned by userID.
	MarkAsRead(ctx context.Context, userID, id string, at time.Time) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// Repositories bundles every store the services need.
type Repositories struct {
	Identities    IdentityRepository
	RefreshTokens RefreshTokenRepository
	Profiles      ProfileRepository
	Donations     DonationRepository
	Notifications NotificationRepository
}

// NewRepositories wires every gorm-backed repository over db.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Identities:    NewIdentityRepository(db),
		RefreshTokens: NewRefreshTokenRepository(db),
		Profiles:      NewProfileRepository(db),
		Donations:     NewDonationRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}
