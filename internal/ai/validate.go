package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"plantid/internal/model"
)

var (
	ErrMalformedResponse  = errors.New("malformed upstream response")
	ErrInvalidResultShape = errors.New("invalid upstream result shape")
)

const unknownPlant = "Unknown Plant"

type IdentificationResult struct {
	CommonName           string
	ScientificName       string
	Family               *string
	Origin               *string
	Confidence           float64
	WateringInstructions *string
	LightRequirements    *string
	TemperatureRange     *string
	HumidityRequirements *string
	SoilRequirements     *string
	CareTips             []string
}

type DiagnosisResult struct {
	PlantName        string
	DiseaseName      string
	DiseaseType      string
	Severity         string
	Confidence       float64
	Symptoms         []string
	Causes           []string
	TreatmentOptions []string
	PreventionTips   []string
	ImmediateActions []string
	AffectedParts    []string
}

// ExtractJSONObject returns the first balanced {...} in text. Braces inside
// JSON strings are ignored.
func ExtractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end := matchBrace(text, start); end > 0 {
			return text[start : end+1], nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
}

func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func decodeObject(text string) (map[string]any, error) {
	raw, err := ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return obj, nil
}

func ParseIdentification(text string) (*IdentificationResult, error) {
	obj, err := decodeObject(text)
	if err != nil {
		return nil, err
	}

	commonName, ok := requiredString(obj, "commonName")
	if !ok {
		return nil, shapeError("commonName")
	}
	scientificName, ok := requiredString(obj, "scientificName")
	if !ok {
		return nil, shapeError("scientificName")
	}
	confidence, ok := requiredNumber(obj, "confidence")
	if !ok {
		return nil, shapeError("confidence")
	}

	return &IdentificationResult{
		CommonName:           commonName,
		ScientificName:       scientificName,
		Family:               optionalString(obj, "family"),
		Origin:               optionalString(obj, "origin"),
		Confidence:           confidence,
		WateringInstructions: optionalString(obj, "wateringInstructions"),
		LightRequirements:    optionalString(obj, "lightRequirements"),
		TemperatureRange:     optionalString(obj, "temperatureRange"),
		HumidityRequirements: optionalString(obj, "humidityRequirements"),
		SoilRequirements:     optionalString(obj, "soilRequirements"),
		CareTips:             stringList(obj, "careTips"),
	}, nil
}

func ParseDiagnosis(text string) (*DiagnosisResult, error) {
	obj, err := decodeObject(text)
	if err != nil {
		return nil, err
	}

	diseaseName, ok := requiredString(obj, "diseaseName")
	if !ok {
		return nil, shapeError("diseaseName")
	}
	diseaseType, ok := requiredString(obj, "diseaseType")
	if !ok {
		return nil, shapeError("diseaseType")
	}
	diseaseType = strings.ToLower(diseaseType)
	if !validDiseaseType(diseaseType) {
		return nil, fmt.Errorf("%w: diseaseType %q is not recognised", ErrInvalidResultShape, diseaseType)
	}
	confidence, ok := requiredNumber(obj, "confidence")
	if !ok {
		return nil, shapeError("confidence")
	}

	plantName, ok := requiredString(obj, "plantName")
	if !ok {
		plantName = unknownPlant
	}

	return &DiagnosisResult{
		PlantName:        plantName,
		DiseaseName:      diseaseName,
		DiseaseType:      diseaseType,
		Severity:         normalizeSeverity(obj["severity"]),
		Confidence:       confidence,
		Symptoms:         stringList(obj, "symptoms"),
		Causes:           stringList(obj, "causes"),
		TreatmentOptions: stringList(obj, "treatmentOptions"),
		PreventionTips:   stringList(obj, "preventionTips"),
		ImmediateActions: stringList(obj, "immediateActions"),
		AffectedParts:    stringList(obj, "affectedParts"),
	}, nil
}

func shapeError(field string) error {
	return fmt.Errorf("%w: %s is missing or mistyped", ErrInvalidResultShape, field)
}

func validDiseaseType(v string) bool {
	switch v {
	case model.DiseaseTypeDisease, model.DiseaseTypePest, model.DiseaseTypeDeficiency,
		model.DiseaseTypeEnvironmental, model.DiseaseTypeHealthy:
		return true
	}
	return false
}

func normalizeSeverity(v any) string {
	s, _ := v.(string)
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case model.SeverityMild, model.SeverityModerate, model.SeveritySevere:
		return s
	}
	return model.SeverityModerate
}

func requiredString(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func requiredNumber(obj map[string]any, key string) (float64, bool) {
	n, ok := obj[key].(float64)
	if !ok || math.IsNaN(n) {
		return 0, false
	}
	return math.Min(math.Max(n, 0), 100), true
}

func optionalString(obj map[string]any, key string) *string {
	s, ok := requiredString(obj, key)
	if !ok {
		return nil
	}
	return &s
}

// stringList accepts an array of strings or a lone string. Anything else
// becomes an empty list.
func stringList(obj map[string]any, key string) []string {
	out := []string{}
	switch v := obj[key].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
