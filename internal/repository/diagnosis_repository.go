package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"plantid/internal/model"
)

type DiagnosisRepository struct {
	db *gorm.DB
}

func NewDiagnosisRepository(db *gorm.DB) *DiagnosisRepository {
	return &DiagnosisRepository{db: db}
}

func (r *DiagnosisRepository) Create(ctx context.Context, diagnosis *model.PlantDisease) error {
	if err := r.db.WithContext(ctx).Create(diagnosis).Error; err != nil {
		return translate("create plant diagnosis", err)
	}
	return reload(ctx, r.db, "create plant diagnosis", diagnosis, diagnosis.ID)
}

func (r *DiagnosisRepository) GetByID(ctx context.Context, id uint) (*model.PlantDisease, error) {
	var diagnosis model.PlantDisease
	if err := r.db.WithContext(ctx).First(&diagnosis, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plant diagnosis failed: %w", err)
	}
	return &diagnosis, nil
}

func (r *DiagnosisRepository) ListByUserID(ctx context.Context, userID uint) ([]model.PlantDisease, error) {
	var list []model.PlantDisease
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list plant diagnoses failed: %w", err)
	}
	return list, nil
}
