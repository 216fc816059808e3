package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"plantid/internal/model"
)

type SavedPlantRepository struct {
	db *gorm.DB
}

func NewSavedPlantRepository(db *gorm.DB) *SavedPlantRepository {
	return &SavedPlantRepository{db: db}
}

func (r *SavedPlantRepository) Create(ctx context.Context, saved *model.UserSavedPlant) error {
	if err := r.db.WithContext(ctx).Create(saved).Error; err != nil {
		return translate("create saved plant", err)
	}
	return reload(ctx, r.db, "create saved plant", saved, saved.ID)
}

func (r *SavedPlantRepository) GetByUserIDAndImageURL(ctx context.Context, userID uint, imageURL string) (*model.UserSavedPlant, error) {
	return r.first(ctx, "user_id = ? AND image_url = ?", userID, imageURL)
}

func (r *SavedPlantRepository) GetByUserIDAndIdentificationID(ctx context.Context, userID, identificationID uint) (*model.UserSavedPlant, error) {
	return r.first(ctx, "user_id = ? AND plant_identification_id = ?", userID, identificationID)
}

func (r *SavedPlantRepository) ListByUserID(ctx context.Context, userID uint) ([]model.UserSavedPlant, error) {
	var list []model.UserSavedPlant
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("saved_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list saved plants failed: %w", err)
	}
	return list, nil
}

func (r *SavedPlantRepository) DeleteByUserIDAndIdentificationID(ctx context.Context, userID, identificationID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND plant_identification_id = ?", userID, identificationID).
		Delete(&model.UserSavedPlant{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete saved plant failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *SavedPlantRepository) first(ctx context.Context, query string, args ...any) (*model.UserSavedPlant, error) {
	var saved model.UserSavedPlant
	if err := r.db.WithContext(ctx).Where(query, args...).First(&saved).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get saved plant failed: %w", err)
	}
	return &saved, nil
}
