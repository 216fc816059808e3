package model

import (
	"time"

	"gorm.io/datatypes"
)

// UserSavedPlant is a denormalized copy of a PlantIdentification in a user's
// collection. At most one row exists per (user, image).
type UserSavedPlant struct {
	ID                    uint                        `gorm:"primaryKey" json:"id"`
	UserID                uint                        `gorm:"not null;uniqueIndex:uk_saved_user_image,priority:1;index" json:"userId"`
	PlantIdentificationID uint                        `gorm:"not null;index" json:"plantIdentificationId"`
	CommonName            string                      `gorm:"size:255;not null" json:"commonName"`
	ScientificName        string                      `gorm:"size:255;not null" json:"scientificName"`
	Family                *string                     `gorm:"size:255" json:"family"`
	Origin                *string                     `gorm:"type:text" json:"origin"`
	Confidence            float64                     `gorm:"not null" json:"confidence"`
	WateringInstructions  *string                     `gorm:"type:text" json:"wateringInstructions"`
	LightRequirements     *string                     `gorm:"type:text" json:"lightRequirements"`
	TemperatureRange      *string                     `gorm:"size:255" json:"temperatureRange"`
	HumidityRequirements  *string                     `gorm:"type:text" json:"humidityRequirements"`
	SoilRequirements      *string                     `gorm:"type:text" json:"soilRequirements"`
	CareTips              datatypes.JSONSlice[string] `json:"careTips"`
	ImageURL              *string                     `gorm:"size:512;uniqueIndex:uk_saved_user_image,priority:2" json:"imageUrl"`
	SavedAt               time.Time                   `gorm:"autoCreateTime;index" json:"savedAt"`
}

// NewSavedPlantFrom copies the identification fields into a collection entry
// owned by userID.
func NewSavedPlantFrom(userID uint, src *PlantIdentification) *UserSavedPlant {
	tips := append(datatypes.JSONSlice[string]{}, src.CareTips...)
	return &UserSavedPlant{
		UserID:                userID,
		PlantIdentificationID: src.ID,
		CommonName:            src.CommonName,
		ScientificName:        src.ScientificName,
		Family:                src.Family,
		Origin:                src.Origin,
		Confidence:            src.Confidence,
		WateringInstructions:  src.WateringInstructions,
		LightRequirements:     src.LightRequirements,
		TemperatureRange:      src.TemperatureRange,
		HumidityRequirements:  src.HumidityRequirements,
		SoilRequirements:      src.SoilRequirements,
		CareTips:              tips,
		ImageURL:              src.ImageURL,
	}
}
