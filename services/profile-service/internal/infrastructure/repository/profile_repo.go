package repository

import (
	"context"
	"errors"

	"learningcenter/services/profile-service/internal/domain"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	err := r.db.WithContext(ctx).Create(profile).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).
		Where("email_address = ?", domain.NormalizeEmail(email)).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Profile{}).
		Where("email_address = ?", domain.NormalizeEmail(email)).
		Count(&count).Error
	return count > 0, err
}
