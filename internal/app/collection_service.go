package app

import (
	"context"
	"errors"

	"plantid/internal/model"
	"plantid/internal/repository"
)

type CollectionService struct {
	identifications repository.Identifications
	savedPlants     repository.SavedPlants
}

// SaveResult reports the outcome of a save. Duplicate is true when the image
// was already in the user's collection; SavedPlant is nil in that case.
type SaveResult struct {
	SavedPlant *model.UserSavedPlant
	Duplicate  bool
}

func NewCollectionService(store repository.Store) *CollectionService {
	return &CollectionService{
		identifications: store.Identifications,
		savedPlants:     store.SavedPlants,
	}
}

func (s *CollectionService) Save(ctx context.Context, userID, identificationID uint) (*SaveResult, error) {
	if userID == 0 || identificationID == 0 {
		return nil, ErrInvalidInput
	}

	ident, err := s.identifications.GetByID(ctx, identificationID)
	if err != nil {
		return nil, err
	}
	if ident == nil {
		return nil, ErrIdentificationNotFound
	}

	// One entry per (user, image). Without an image, fall back to the
	// identification itself.
	var existing *model.UserSavedPlant
	if ident.ImageURL != nil && *ident.ImageURL != "" {
		existing, err = s.savedPlants.GetByUserIDAndImageURL(ctx, userID, *ident.ImageURL)
	} else {
		existing, err = s.savedPlants.GetByUserIDAndIdentificationID(ctx, userID, ident.ID)
	}
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &SaveResult{Duplicate: true}, nil
	}

	saved := model.NewSavedPlantFrom(userID, ident)
	if err := s.savedPlants.Create(ctx, saved); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return &SaveResult{Duplicate: true}, nil
		}
		return nil, err
	}
	return &SaveResult{SavedPlant: saved}, nil
}

func (s *CollectionService) List(ctx context.Context, userID uint) ([]model.UserSavedPlant, error) {
	return s.savedPlants.ListByUserID(ctx, userID)
}

// Remove deletes the user's entries for an identification. Removing an entry
// that does not exist succeeds.
func (s *CollectionService) Remove(ctx context.Context, userID, identificationID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	_, err := s.savedPlants.DeleteByUserIDAndIdentificationID(ctx, userID, identificationID)
	return err
}
