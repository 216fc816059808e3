package app

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"plantid/internal/ai"
	"plantid/internal/imaging"
	"plantid/internal/model"
	"plantid/internal/repository"
	"plantid/internal/storage"
)

var (
	ErrIdentificationNotFound = errors.New("plant identification not found")
	ErrDiagnosisNotFound      = errors.New("plant diagnosis not found")
)

// PlantService runs the identify and diagnose workflows: normalize the
// upload, ask the model, validate its answer, then store image and row.
type PlantService struct {
	identifications repository.Identifications
	diagnoses       repository.Diagnoses
	inference       ai.Client
	images          storage.ImageStore
}

type AnalyzeInput struct {
	UserID   *uint
	Image    []byte
	MIMEType string
}

func NewPlantService(store repository.Store, inference ai.Client, images storage.ImageStore) *PlantService {
	return &PlantService{
		identifications: store.Identifications,
		diagnoses:       store.Diagnoses,
		inference:       inference,
		images:          images,
	}
}

func (s *PlantService) Identify(ctx context.Context, input AnalyzeInput) (*model.PlantIdentification, error) {
	normalized, text, err := s.analyze(ctx, ai.TaskIdentify, input)
	if err != nil {
		return nil, err
	}

	result, err := ai.ParseIdentification(text)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("raw", truncate(text, 512)).Msg("identification response rejected")
		return nil, err
	}

	ident := &model.PlantIdentification{
		UserID:               input.UserID,
		CommonName:           result.CommonName,
		ScientificName:       result.ScientificName,
		Family:               result.Family,
		Origin:               result.Origin,
		Confidence:           result.Confidence,
		WateringInstructions: result.WateringInstructions,
		LightRequirements:    result.LightRequirements,
		TemperatureRange:     result.TemperatureRange,
		HumidityRequirements: result.HumidityRequirements,
		SoilRequirements:     result.SoilRequirements,
		CareTips:             datatypes.JSONSlice[string](result.CareTips),
	}

	err = s.persist(ctx, normalized, func(ref *string) error {
		ident.ImageURL = ref
		return s.identifications.Create(ctx, ident)
	})
	if err != nil {
		return nil, err
	}
	return ident, nil
}

func (s *PlantService) Diagnose(ctx context.Context, input AnalyzeInput) (*model.PlantDisease, error) {
	normalized, text, err := s.analyze(ctx, ai.TaskDiagnose, input)
	if err != nil {
		return nil, err
	}

	result, err := ai.ParseDiagnosis(text)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("raw", truncate(text, 512)).Msg("diagnosis response rejected")
		return nil, err
	}

	diagnosis := &model.PlantDisease{
		UserID:           input.UserID,
		PlantName:        result.PlantName,
		DiseaseName:      result.DiseaseName,
		DiseaseType:      result.DiseaseType,
		Severity:         result.Severity,
		Confidence:       result.Confidence,
		Symptoms:         result.Symptoms,
		Causes:           result.Causes,
		TreatmentOptions: result.TreatmentOptions,
		PreventionTips:   result.PreventionTips,
		ImmediateActions: result.ImmediateActions,
		AffectedParts:    result.AffectedParts,
	}

	err = s.persist(ctx, normalized, func(ref *string) error {
		diagnosis.ImageURL = ref
		return s.diagnoses.Create(ctx, diagnosis)
	})
	if err != nil {
		return nil, err
	}
	return diagnosis, nil
}

func (s *PlantService) GetIdentification(ctx context.Context, id uint) (*model.PlantIdentification, error) {
	ident, err := s.identifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ident == nil {
		return nil, ErrIdentificationNotFound
	}
	return ident, nil
}

func (s *PlantService) ListIdentifications(ctx context.Context, userID uint) ([]model.PlantIdentification, error) {
	return s.identifications.ListByUserID(ctx, userID)
}

func (s *PlantService) GetDiagnosis(ctx context.Context, id uint) (*model.PlantDisease, error) {
	diagnosis, err := s.diagnoses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if diagnosis == nil {
		return nil, ErrDiagnosisNotFound
	}
	return diagnosis, nil
}

func (s *PlantService) ListDiagnoses(ctx context.Context, userID uint) ([]model.PlantDisease, error) {
	return s.diagnoses.ListByUserID(ctx, userID)
}

func (s *PlantService) analyze(ctx context.Context, task ai.Task, input AnalyzeInput) ([]byte, string, error) {
	normalized, err := imaging.Normalize(input.Image, input.MIMEType)
	if err != nil {
		return nil, "", err
	}

	text, err := s.inference.Analyze(ctx, task, normalized, imaging.OutputMIMEType)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("task", string(task)).Msg("inference call failed")
		return nil, "", err
	}
	return normalized, text, nil
}

// persist stores the image, then runs create with its reference. If create
// fails, an image written by this call is removed again so no half-finished
// result remains.
func (s *PlantService) persist(ctx context.Context, image []byte, create func(ref *string) error) error {
	if s.images == nil {
		return create(nil)
	}

	ref, created, err := s.images.Save(ctx, image)
	if err != nil {
		return fmt.Errorf("store image failed: %w", err)
	}

	if err := create(&ref); err != nil {
		if created {
			if delErr := s.images.Delete(context.WithoutCancel(ctx), ref); delErr != nil {
				log.Ctx(ctx).Warn().Err(delErr).Str("ref", ref).Msg("remove orphaned image failed")
			}
		}
		return err
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
