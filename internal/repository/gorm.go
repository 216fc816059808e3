package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// NowFunc is the clock handed to gorm.Config. Millisecond precision matches
// MySQL datetime(3), the coarsest column the store runs on.
func NowFunc() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewGormStore returns a Store backed by db. The dialector must be opened
// with TranslateError so duplicate keys surface as gorm.ErrDuplicatedKey.
func NewGormStore(db *gorm.DB) Store {
	return Store{
		Users:           NewUserRepository(db),
		Identifications: NewIdentificationRepository(db),
		Diagnoses:       NewDiagnosisRepository(db),
		SavedPlants:     NewSavedPlantRepository(db),
		ContactMessages: NewContactMessageRepository(db),
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}

// reload overwrites dest with the stored row so callers return exactly what
// a later query would.
func reload(ctx context.Context, db *gorm.DB, op string, dest any, id uint) error {
	if err := db.WithContext(ctx).First(dest, id).Error; err != nil {
		return fmt.Errorf("%s reload failed: %w", op, err)
	}
	return nil
}

func translate(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s failed: %w", op, ErrDuplicateKey)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

var (
	_ Users           = (*UserRepository)(nil)
	_ Identifications = (*IdentificationRepository)(nil)
	_ Diagnoses       = (*DiagnosisRepository)(nil)
	_ SavedPlants     = (*SavedPlantRepository)(nil)
	_ ContactMessages = (*ContactMessageRepository)(nil)
)
