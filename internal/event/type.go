package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/google/uuid"
)

type AnalysisEventType string

const (
	AnalysisInserted AnalysisEventType = "analysis.inserted"
	AnalysisFailed   AnalysisEventType = "analysis.failed"
)

// AnalysisEvent is pushed on the claim channel once an analysis attempt settles.
type AnalysisEvent struct {
	Type       AnalysisEventType      `json:"type"`
	EvidenceID uuid.UUID              `json:"evidencia_id"`
	ClaimID    uuid.UUID              `json:"siniestro_id"`
	Analysis   *models.AnalysisResult `json:"analisis,omitempty"`
	Error      string                 `json:"error,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// ClaimChannel is the pub/sub channel scoped to one claim.
func ClaimChannel(claimID uuid.UUID) string {
	return fmt.Sprintf("siniestro:%s:analisis", claimID)
}

func DecodeAnalysisEvent(payload string) (AnalysisEvent, error) {
	var evt AnalysisEvent
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return AnalysisEvent{}, fmt.Errorf("failed to decode analysis event: %w", err)
	}
	if evt.Type != AnalysisInserted && evt.Type != AnalysisFailed {
		return AnalysisEvent{}, fmt.Errorf("unknown analysis event type %q", evt.Type)
	}
	return evt, nil
}

// FraudAlertEvent is queued for the back office when an analysis flags high fraud risk.
type FraudAlertEvent struct {
	AnalysisID    uuid.UUID         `json:"analisis_id"`
	EvidenceID    uuid.UUID         `json:"evidencia_id"`
	ClaimID       uuid.UUID         `json:"siniestro_id"`
	Score         float64           `json:"score_fraude"`
	Level         models.FraudLevel `json:"nivel_fraude"`
	Indicators    []string          `json:"indicadores_fraude"`
	Justification string            `json:"justificacion_fraude"`
	DetectedAt    time.Time         `json:"detected_at"`
}

func NewFraudAlert(result *models.AnalysisResult) FraudAlertEvent {
	return FraudAlertEvent{
		AnalysisID:    result.ID,
		EvidenceID:    result.EvidenceID,
		ClaimID:       result.ClaimID,
		Score:         result.FraudScore,
		Level:         result.FraudLevel,
		Indicators:    result.FraudIndicators,
		Justification: result.FraudJustification,
		DetectedAt:    result.CreatedAt,
	}
}

const FraudAlertQueue string = "fraud_alert_events"
