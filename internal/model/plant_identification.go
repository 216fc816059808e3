package model

import (
	"time"

	"gorm.io/datatypes"
)

// PlantIdentification is immutable once created. UserID is nil for anonymous
// identifications.
type PlantIdentification struct {
	ID                   uint                        `gorm:"primaryKey" json:"id"`
	UserID               *uint                       `gorm:"index" json:"userId"`
	CommonName           string                      `gorm:"size:255;not null" json:"commonName"`
	ScientificName       string                      `gorm:"size:255;not null" json:"scientificName"`
	Family               *string                     `gorm:"size:255" json:"family"`
	Origin               *string                     `gorm:"type:text" json:"origin"`
	Confidence           float64                     `gorm:"not null" json:"confidence"`
	WateringInstructions *string                     `gorm:"type:text" json:"wateringInstructions"`
	LightRequirements    *string                     `gorm:"type:text" json:"lightRequirements"`
	TemperatureRange     *string                     `gorm:"size:255" json:"temperatureRange"`
	HumidityRequirements *string                     `gorm:"type:text" json:"humidityRequirements"`
	SoilRequirements     *string                     `gorm:"type:text" json:"soilRequirements"`
	CareTips             datatypes.JSONSlice[string] `json:"careTips"`
	ImageURL             *string                     `gorm:"size:512" json:"imageUrl"`
	CreatedAt            time.Time                   `gorm:"index" json:"createdAt"`
}
