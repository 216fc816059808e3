package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"plantid/internal/model"
)

type IdentificationRepository struct {
	db *gorm.DB
}

func NewIdentificationRepository(db *gorm.DB) *IdentificationRepository {
	return &IdentificationRepository{db: db}
}

func (r *IdentificationRepository) Create(ctx context.Context, ident *model.PlantIdentification) error {
	if err := r.db.WithContext(ctx).Create(ident).Error; err != nil {
		return translate("create plant identification", err)
	}
	return reload(ctx, r.db, "create plant identification", ident, ident.ID)
}

func (r *IdentificationRepository) GetByID(ctx context.Context, id uint) (*model.PlantIdentification, error) {
	var ident model.PlantIdentification
	if err := r.db.WithContext(ctx).First(&ident, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plant identification failed: %w", err)
	}
	return &ident, nil
}

func (r *IdentificationRepository) ListByUserID(ctx context.Context, userID uint) ([]model.PlantIdentification, error) {
	var list []model.PlantIdentification
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list plant identifications failed: %w", err)
	}
	return list, nil
}
