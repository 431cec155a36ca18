package analysis

import (
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/google/uuid"
)

// ResultMeta carries audit data about the model call.
type ResultMeta struct {
	ModelName     string
	PromptVersion string
	RawText       string
	TokensUsed    int
}

// NewAnalysisResult builds the row to persist from a parsed answer.
func NewAnalysisResult(evidenceID, claimID uuid.UUID, parsed *models.ParsedAnalysis, meta ResultMeta) *models.AnalysisResult {
	now := time.Now()
	return &models.AnalysisResult{
		ID:                 uuid.New(),
		EvidenceID:         evidenceID,
		ClaimID:            claimID,
		FraudScore:         parsed.Fraud.Score,
		FraudLevel:         parsed.Fraud.Level,
		FraudIndicators:    parsed.Fraud.Indicators,
		FraudJustification: parsed.Fraud.Justification,
		Severity:           parsed.Triage.Severity,
		DamagedParts:       parsed.Triage.DamagedParts,
		DamageDescription:  parsed.Triage.Description,
		CostMin:            parsed.Costs.Min,
		CostMax:            parsed.Costs.Max,
		CostBreakdown:      parsed.Costs.Breakdown,
		PromptVersion:      meta.PromptVersion,
		ModelName:          meta.ModelName,
		RawResponse:        models.RawResponse{RawText: meta.RawText, Parsed: parsed},
		TokensUsed:         meta.TokensUsed,
		CreatedAt:          now,
		ProcessedAt:        now,
	}
}
