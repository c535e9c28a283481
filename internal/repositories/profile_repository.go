package repositories

import (
	"context"
	"errors"
	"strings"

	"foodshare_backend/internal/models"

	"gorm.io/gorm"
)

type ProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &ProfileRepositoryImpl{db: db}
}

func (r *ProfileRepositoryImpl) FindByID(ctx context.Context, identityID string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("identity_id = ?", identityID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepositoryImpl) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isDuplicate(err) {
			return ErrProfileExists
		}
		return err
	}
	return nil
}

func (r *ProfileRepositoryImpl) Update(ctx context.Context, identityID string, cols map[string]interface{}) error {
	if len(cols) == 0 {
		_, err := r.FindByID(ctx, identityID)
		return err
	}
	result := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("identity_id = ?", identityID).
		Updates(cols)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepositoryImpl) UpdateRole(ctx context.Context, identityID string, role models.UserRole) error {
	return r.Update(ctx, identityID, map[string]interface{}{"role": role})
}

func (r *ProfileRepositoryImpl) Delete(ctx context.Context, identityID string) error {
	result := r.db.WithContext(ctx).Where("identity_id = ?", identityID).Delete(&models.Profile{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepositoryImpl) List(ctx context.Context, criteria ProfileCriteria) ([]*models.Profile, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Profile{})

	if criteria.Role != "" {
		query = query.Where("role = ?", criteria.Role)
	}
	if s := strings.TrimSpace(criteria.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePage(criteria.Page, criteria.PageSize)
	var profiles []*models.Profile
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&profiles).Error
	return profiles, total, err
}

func (r *ProfileRepositoryImpl) CountByRole(ctx context.Context) (RoleCounts, error) {
	var rows []struct {
		Role  models.UserRole
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(RoleCounts, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}
