package repositories

import (
	"context"
	"errors"
	"strings"

	"foodshare_backend/internal/models"

	"gorm.io/gorm"
)

type IdentityRepositoryImpl struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &IdentityRepositoryImpl{db: db}
}

func (r *IdentityRepositoryImpl) CreateWithProfile(ctx context.Context, identity *models.Identity, profile *models.Profile) error {
	identity.Email = strings.ToLower(strings.TrimSpace(identity.Email))
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(identity).Error; err != nil {
			if isDuplicate(err) {
				return ErrEmailTaken
			}
			return err
		}
		profile.IdentityID = identity.ID
		if err := tx.Create(profile).Error; err != nil {
			if isDuplicate(err) {
				return ErrProfileExists
			}
			return err
		}
		return nil
	})
}

func (r *IdentityRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	var identity models.Identity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&identity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return &identity, nil
}

func (r *IdentityRepositoryImpl) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var identity models.Identity
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return &identity, nil
}
