package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBMICalculator_Run(t *testing.T) {
	tests := []struct {
		name             string
		input            map[string]any
		expectedCategory string
		expectedBMI      float64
		expectError      bool
	}{
		{
			name:             "normal range",
			input:            map[string]any{"weight": 60.0, "height": 1.70},
			expectedCategory: "normal",
			expectedBMI:      60.0 / (1.70 * 1.70),
		},
		{
			name:             "underweight",
			input:            map[string]any{"weight": 45.0, "height": 1.75},
			expectedCategory: "underweight",
			expectedBMI:      45.0 / (1.75 * 1.75),
		},
		{
			name:             "overweight",
			input:            map[string]any{"weight": 85.0, "height": 1.75},
			expectedCategory: "overweight",
			expectedBMI:      85.0 / (1.75 * 1.75),
		},
		{
			name:             "obese",
			input:            map[string]any{"weight": 110.0, "height": 1.75},
			expectedCategory: "obese",
			expectedBMI:      110.0 / (1.75 * 1.75),
		},
		{
			name:             "integer inputs accepted",
			input:            map[string]any{"weight": 80, "height": 2},
			expectedCategory: "normal",
			expectedBMI:      20.0,
		},
		{
			name:        "zero weight rejected",
			input:       map[string]any{"weight": 0.0, "height": 1.70},
			expectError: true,
		},
		{
			name:        "negative height rejected",
			input:       map[string]any{"weight": 60.0, "height": -1.70},
			expectError: true,
		},
	}

	calc := NewBMICalculator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.Run(context.Background(), tt.input)

			if tt.expectError {
				require.Error(t, err)
				var argErr *InvalidArgumentError
				require.ErrorAs(t, err, &argErr)
				assert.Equal(t, "calculate_bmi", argErr.Tool)
				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.expectedBMI, result["bmi"], 0.001)
			assert.Equal(t, tt.expectedCategory, result["category"])
		})
	}
}

func TestBMICategoryBoundaries(t *testing.T) {
	assert.Equal(t, "underweight", bmiCategory(18.49))
	assert.Equal(t, "normal", bmiCategory(18.5))
	assert.Equal(t, "normal", bmiCategory(24.99))
	assert.Equal(t, "overweight", bmiCategory(25.0))
	assert.Equal(t, "overweight", bmiCategory(29.99))
	assert.Equal(t, "obese", bmiCategory(30.0))
}
