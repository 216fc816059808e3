package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DiseaseTypeDisease       = "disease"
	DiseaseTypePest          = "pest"
	DiseaseTypeDeficiency    = "deficiency"
	DiseaseTypeEnvironmental = "environmental"
	DiseaseTypeHealthy       = "healthy"

	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

type PlantDisease struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	UserID           *uint                       `gorm:"index" json:"userId"`
	PlantName        string                      `gorm:"size:255;not null" json:"plantName"`
	DiseaseName      string                      `gorm:"size:255;not null" json:"diseaseName"`
	DiseaseType      string                      `gorm:"size:32;not null" json:"diseaseType"`
	Severity         string                      `gorm:"size:16;not null;default:moderate" json:"severity"`
	Confidence       float64                     `gorm:"not null" json:"confidence"`
	Symptoms         datatypes.JSONSlice[string] `json:"symptoms"`
	Causes           datatypes.JSONSlice[string] `json:"causes"`
	TreatmentOptions datatypes.JSONSlice[string] `json:"treatmentOptions"`
	PreventionTips   datatypes.JSONSlice[string] `json:"preventionTips"`
	ImmediateActions datatypes.JSONSlice[string] `json:"immediateActions"`
	AffectedParts    datatypes.JSONSlice[string] `json:"affectedParts"`
	ImageURL         *string                     `gorm:"size:512" json:"imageUrl"`
	CreatedAt        time.Time                   `gorm:"index" json:"createdAt"`
}
