package analysis

import (
	"testing"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFraudLevelForScore_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  models.FraudLevel
	}{
		{0, models.FraudLow},
		{0.2499, models.FraudLow},
		{0.25, models.FraudMedium},
		{0.4999, models.FraudMedium},
		{0.5, models.FraudHigh},
		{0.6, models.FraudHigh},
		{0.7499, models.FraudHigh},
		{0.75, models.FraudCritical},
		{0.8, models.FraudCritical},
		{1, models.FraudCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FraudLevelForScore(tt.score), "score %v", tt.score)
	}
}

func TestResolveFraudLevel(t *testing.T) {
	assert.Equal(t, models.FraudLow, ResolveFraudLevel(models.FraudLow, 0.95))
	assert.Equal(t, models.FraudHigh, ResolveFraudLevel("", 0.6))
	assert.Equal(t, models.FraudCritical, ResolveFraudLevel("desconocido", 0.8))
}
