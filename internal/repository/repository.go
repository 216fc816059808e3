package repository

import (
	"context"
	"errors"

	"plantid/internal/model"
)

// ErrDuplicateKey is returned when a write violates a uniqueness constraint.
var ErrDuplicateKey = errors.New("duplicate key")

// Lookups return (nil, nil) when no row matches.

type Users interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, id uint, update UserUpdate) (*model.User, error)
}

// UserUpdate holds the columns to change; nil fields are left untouched.
type UserUpdate struct {
	Username     *string
	Email        *string
	FirstName    *string
	LastName     *string
	PasswordHash *string
}

func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.FirstName == nil && u.LastName == nil && u.PasswordHash == nil
}

type Identifications interface {
	Create(ctx context.Context, ident *model.PlantIdentification) error
	GetByID(ctx context.Context, id uint) (*model.PlantIdentification, error)
	ListByUserID(ctx context.Context, userID uint) ([]model.PlantIdentification, error)
}

type Diagnoses interface {
	Create(ctx context.Context, diagnosis *model.PlantDisease) error
	GetByID(ctx context.Context, id uint) (*model.PlantDisease, error)
	ListByUserID(ctx context.Context, userID uint) ([]model.PlantDisease, error)
}

type SavedPlants interface {
	Create(ctx context.Context, saved *model.UserSavedPlant) error
	GetByUserIDAndImageURL(ctx context.Context, userID uint, imageURL string) (*model.UserSavedPlant, error)
	GetByUserIDAndIdentificationID(ctx context.Context, userID, identificationID uint) (*model.UserSavedPlant, error)
	ListByUserID(ctx context.Context, userID uint) ([]model.UserSavedPlant, error)
	DeleteByUserIDAndIdentificationID(ctx context.Context, userID, identificationID uint) (int64, error)
}

type ContactMessages interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
}

// Store groups the persistence backends used by the services.
type Store struct {
	Users           Users
	Identifications Identifications
	Diagnoses       Diagnoses
	SavedPlants     SavedPlants
	ContactMessages ContactMessages
}

// Models lists every table owned by the application, in migration order.
func Models() []any {
	return []any{
		&model.User{},
		&model.PlantIdentification{},
		&model.PlantDisease{},
		&model.UserSavedPlant{},
		&model.ContactMessage{},
	}
}
