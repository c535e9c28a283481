package services

import (
	"context"

	"foodshare_backend/internal/auth"
	"foodshare_backend/internal/models"
	"foodshare_backend/internal/repositories"
	"foodshare_backend/internal/services/dto"
	"foodshare_backend/internal/session"
	"foodshare_backend/pkg/apperrors"
)

const recentDonations = 5

type DashboardService interface {
	Donor(ctx context.Context, s *session.Session) (*dto.DonorDashboard, error)
	NGO(ctx context.Context, s *session.Session) (*dto.NGODashboard, error)
	Admin(ctx context.Context, s *session.Session) (*dto.AdminDashboard, error)
}

type dashboardService struct {
	donationRepo repositories.DonationRepository
	profileRepo  repositories.ProfileRepository
}

func NewDashboardService(donationRepo repositories.DonationRepository, profileRepo repositories.ProfileRepository) DashboardService {
	return &dashboardService{donationRepo: donationRepo, profileRepo: profileRepo}
}

func (s *dashboardService) Donor(ctx context.Context, sess *session.Session) (*dto.DonorDashboard, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !auth.HasPermission(sess.Role, auth.PermDonationsCreate) {
		return nil, apperrors.Permission("dashboard", "Donor dashboard is for donors")
	}

	counts, err := s.donationRepo.CountByStatus(ctx, repositories.DonationCriteria{DonorID: sess.IdentityID})
	if err != nil {
		return nil, storeError(err, "dashboard")
	}
	recent, _, err := s.donationRepo.List(ctx, repositories.DonationCriteria{
		DonorID:  sess.IdentityID,
		Sort:     repositories.SortCreatedDesc,
		Page:     1,
		PageSize: recentDonations,
	})
	if err != nil {
		return nil, storeError(err, "dashboard")
	}

	byStatus, total := statusMap(counts)
	return &dto.DonorDashboard{Total: total, Counts: byStatus, Recent: dto.NewDonationResponses(recent)}, nil
}

func (s *dashboardService) NGO(ctx context.Context, sess *session.Session) (*dto.NGODashboard, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !auth.HasPermission(sess.Role, auth.PermDonationsClaim) {
		return nil, apperrors.Permission("dashboard", "NGO dashboard is for NGOs")
	}

	available, err := s.donationRepo.CountByStatus(ctx, repositories.DonationCriteria{Status: models.DonationStatusAvailable})
	if err != nil {
		return nil, storeError(err, "dashboard")
	}
	claims, err := s.donationRepo.CountByStatus(ctx, repositories.DonationCriteria{ClaimedBy: sess.IdentityID})
	if err != nil {
		return nil, storeError(err, "dashboard")
	}
	recent, _, err := s.donationRepo.List(ctx, repositories.DonationCriteria{
		ClaimedBy: sess.IdentityID,
		Sort:      repositories.SortCreatedDesc,
		Page:      1,
		PageSize:  recentDonations,
	})
	if err != nil {
		return nil, storeError(err, "dashboard")
	}

	claimCounts, _ := statusMap(claims)
	return &dto.NGODashboard{
		Available:   available[models.DonationStatusAvailable],
		ClaimCounts: claimCounts,
		Recent:      dto.NewDonationResponses(recent),
	}, nil
}

func (s *dashboardService) Admin(ctx context.Context, sess *session.Session) (*dto.AdminDashboard, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !auth.HasPermission(sess.Role, auth.PermStatsPlatform) {
		return nil, apperrors.ErrInsufficientPermissions
	}

	roles, err := s.profileRepo.CountByRole(ctx)
	if err != nil {
		return nil, storeError(err, "dashboard")
	}
	statuses, err := s.donationRepo.CountByStatus(ctx, repositories.DonationCriteria{})
	if err != nil {
		return nil, storeError(err, "dashboard")
	}

	users := make(map[string]int64, len(models.Roles()))
	var totalUsers int64
	for _, r := range models.Roles() {
		users[string(r)] = roles[r]
		totalUsers += roles[r]
	}
	donations, totalDonations := statusMap(statuses)

	return &dto.AdminDashboard{
		TotalUsers:     totalUsers,
		UsersByRole:    users,
		TotalDonations: totalDonations,
		Donations:      donations,
	}, nil
}

// statusMap lists every status, zero included.
func statusMap(counts repositories.StatusCounts) (map[string]int64, int64) {
	out := map[string]int64{
		string(models.DonationStatusAvailable): counts[models.DonationStatusAvailable],
		string(models.DonationStatusClaimed):   counts[models.DonationStatusClaimed],
		string(models.DonationStatusCollected): counts[models.DonationStatusCollected],
	}
	var total int64
	for _, n := range out {
		total += n
	}
	return out, total
}
