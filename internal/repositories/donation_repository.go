package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"foodshare_backend/internal/models"

	"gorm.io/gorm"
)

type DonationRepositoryImpl struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &DonationRepositoryImpl{db: db}
}

func (r *DonationRepositoryImpl) Create(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *DonationRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return &donation, nil
}

func (r *DonationRepositoryImpl) filtered(ctx context.Context, criteria DonationCriteria) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Donation{})

	if criteria.Status != "" {
		query = query.Where("status = ?", criteria.Status)
	}
	if criteria.Category != "" {
		query = query.Where("category = ?", criteria.Category)
	}
	if criteria.DonorID != "" {
		query = query.Where("donor_id = ?", criteria.DonorID)
	}
	if criteria.ClaimedBy != "" {
		query = query.Where("claimed_by = ?", criteria.ClaimedBy)
	}
	if s := strings.TrimSpace(criteria.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("(LOWER(food_item) LIKE ? OR LOWER(notes) LIKE ?)", like, like)
	}
	return query
}

func (r *DonationRepositoryImpl) List(ctx context.Context, criteria DonationCriteria) ([]*models.Donation, int64, error) {
	var total int64
	if err := r.filtered(ctx, criteria).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePage(criteria.Page, criteria.PageSize)
	var donations []*models.Donation
	err := r.filtered(ctx, criteria).
		Order(criteria.Sort.orderClause()).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&donations).Error
	return donations, total, err
}

func (r *DonationRepositoryImpl) UpdateIfAvailable(ctx context.Context, id, donorID string, cols map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ? AND donor_id = ? AND status = ?", id, donorID, models.DonationStatusAvailable).
		Updates(cols)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.conflictOrMissing(ctx, id)
	}
	return nil
}

func (r *DonationRepositoryImpl) DeleteIfAvailable(ctx context.Context, id, donorID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND donor_id = ? AND status = ?", id, donorID, models.DonationStatusAvailable).
		Delete(&models.Donation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.conflictOrMissing(ctx, id)
	}
	return nil
}

// Transition is the compare-and-swap: the UPDATE only matches while the row
// still has the expected prior status, so at most one concurrent caller wins.
func (r *DonationRepositoryImpl) Transition(ctx context.Context, id string, t models.DonationTransition) error {
	if !t.From.CanBecome(t.To) {
		return ErrTransitionConflict
	}
	result := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ? AND status = ?", id, t.From).
		Updates(t.Columns())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.conflictOrMissing(ctx, id)
	}
	return nil
}

func (r *DonationRepositoryImpl) conflictOrMissing(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Donation{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrDonationNotFound
	}
	return ErrTransitionConflict
}

func (r *DonationRepositoryImpl) CountByStatus(ctx context.Context, criteria DonationCriteria) (StatusCounts, error) {
	criteria.Status = ""
	var rows []struct {
		Status models.DonationStatus
		Count  int64
	}
	err := r.filtered(ctx, criteria).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := StatusCounts{
		models.DonationStatusAvailable: 0,
		models.DonationStatusClaimed:   0,
		models.DonationStatusCollected: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *DonationRepositoryImpl) FindExpiring(ctx context.Context, criteria ExpiringCriteria) ([]*models.Donation, error) {
	limit := criteria.Limit
	if limit <= 0 {
		limit = MaxPageSize
	}
	var donations []*models.Donation
	err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_notified_at IS NULL AND expiry_date <= ?",
			models.DonationStatusAvailable, criteria.Before).
		Order("expiry_date ASC").
		Limit(limit).
		Find(&donations).Error
	return donations, err
}

func (r *DonationRepositoryImpl) MarkExpiryNotified(ctx context.Context, id string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ? AND expiry_notified_at IS NULL", id).
		Update("expiry_notified_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
