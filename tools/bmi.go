package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

type BMICalculator struct{}

func NewBMICalculator() *BMICalculator { return &BMICalculator{} }

func (t *BMICalculator) Name() string  { return "calculate_bmi" }
func (t *BMICalculator) Title() string { return "Calculate BMI" }
func (t *BMICalculator) Description() string {
	return "Calculates body mass index from weight (kg) and height (m). Both values must be positive."
}

func (t *BMICalculator) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"weight": {Type: "number"},
			"height": {Type: "number"},
		},
		Required: []string{"weight", "height"},
	}
}

func (t *BMICalculator) OutputSchema() *jsonschema.Schema {
	minBMI := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"bmi":      {Type: "number", Minimum: &minBMI},
			"category": {Type: "string"},
		},
		Required: []string{"bmi", "category"},
	}
}

func (t *BMICalculator) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	weight, _ := asNumber(input["weight"])
	height, _ := asNumber(input["height"])

	if weight <= 0 {
		return nil, &InvalidArgumentError{Tool: t.Name(), Field: "weight", Reason: "must be greater than zero"}
	}
	if height <= 0 {
		return nil, &InvalidArgumentError{Tool: t.Name(), Field: "height", Reason: "must be greater than zero"}
	}

	bmi := weight / (height * height)

	return map[string]any{
		"bmi":      bmi,
		"category": bmiCategory(bmi),
	}, nil
}

// WHO adult classification bands.
func bmiCategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal"
	case bmi < 30:
		return "overweight"
	default:
		return "obese"
	}
}
