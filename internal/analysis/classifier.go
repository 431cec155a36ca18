package analysis

import "github.com/FelipeCgrillo/liquidapp/internal/models"

// FraudLevelForScore buckets a fraud score: [0,0.25) bajo, [0.25,0.5) medio,
// [0.5,0.75) alto, otherwise critico.
func FraudLevelForScore(score float64) models.FraudLevel {
	switch {
	case score < 0.25:
		return models.FraudLow
	case score < 0.5:
		return models.FraudMedium
	case score < 0.75:
		return models.FraudHigh
	default:
		return models.FraudCritical
	}
}

// ResolveFraudLevel prefers the model-provided level and falls back to the
// score buckets when it is absent or not one of the four known levels.
func ResolveFraudLevel(provided models.FraudLevel, score float64) models.FraudLevel {
	if provided.Valid() {
		return provided
	}
	return FraudLevelForScore(score)
}
