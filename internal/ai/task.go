package ai

import "fmt"

type Task string

const (
	TaskIdentify Task = "identify"
	TaskDiagnose Task = "diagnose"
)

func (t Task) Valid() bool {
	return t == TaskIdentify || t == TaskDiagnose
}

// Prompt returns the instruction sent alongside the image. Field names here
// must match the parsers in validate.go.
func (t Task) Prompt() string {
	switch t {
	case TaskIdentify:
		return identifyPrompt
	case TaskDiagnose:
		return diagnosePrompt
	}
	panic(fmt.Sprintf("ai: unknown task %q", string(t)))
}

const identifyPrompt = `Analyze this plant image and provide detailed identification and care information in JSON format.
Respond with a single JSON object containing exactly these fields:
{
  "commonName": "string - most common name for this plant",
  "scientificName": "string - scientific/botanical name",
  "family": "string - plant family",
  "origin": "string - native region/origin",
  "confidence": number - confidence percentage (0-100),
  "wateringInstructions": "string - detailed watering guidance",
  "lightRequirements": "string - light requirements and preferences",
  "temperatureRange": "string - ideal temperature range",
  "humidityRequirements": "string - humidity needs",
  "soilRequirements": "string - soil type and drainage needs",
  "careTips": ["array of strings - 3-5 specific care tips"]
}

If you cannot identify the plant with reasonable confidence, set confidence to 0 and provide general plant care advice.
Be specific and practical in your care instructions.`

const diagnosePrompt = `Analyze this plant image for diseases, pests, nutrient deficiencies, and health issues.
Provide detailed diagnosis information in JSON format.
Respond with a single JSON object containing exactly these fields:
{
  "plantName": "string - if you can identify the plant, otherwise 'Unknown Plant'",
  "diseaseName": "string - name of the disease, pest, or issue identified",
  "diseaseType": "string - one of: 'disease', 'pest', 'deficiency', 'environmental', 'healthy'",
  "severity": "string - one of: 'mild', 'moderate', 'severe'",
  "confidence": number - confidence percentage (0-100),
  "symptoms": ["array of strings - visible symptoms observed"],
  "causes": ["array of strings - potential causes of this issue"],
  "treatmentOptions": ["array of strings - specific treatment recommendations"],
  "preventionTips": ["array of strings - how to prevent this issue in future"],
  "immediateActions": ["array of strings - urgent actions to take now"],
  "affectedParts": ["array of strings - which parts of plant are affected"]
}

If the plant appears healthy, set diseaseName to "Healthy Plant", diseaseType to "healthy",
and provide general care advice. Be specific and practical in your recommendations.
Focus on actionable advice that plant owners can implement.`
