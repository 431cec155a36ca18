package models

import (
	"database/sql/driver"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ParsedAnalysis is the typed shape of the model's JSON answer.
type ParsedAnalysis struct {
	Fraud  FraudAssessment `json:"antifraude"`
	Triage DamageTriage    `json:"triage"`
	Costs  CostEstimate    `json:"costos"`
}

type FraudAssessment struct {
	Score         float64    `json:"score"`
	Level         FraudLevel `json:"nivel"`
	Indicators    []string   `json:"indicadores"`
	Justification string     `json:"justificacion"`
}

type DamageTriage struct {
	Severity     Severity `json:"severidad"`
	DamagedParts []string `json:"partes_danadas"`
	Description  string   `json:"descripcion"`
}

type CostEstimate struct {
	Min       int64         `json:"min"`
	Max       int64         `json:"max"`
	Breakdown CostBreakdown `json:"desglose"`
}

type CostItem struct {
	Part    string `json:"parte"`
	CostMin int64  `json:"costo_min"`
	CostMax int64  `json:"costo_max"`
}

// CostBreakdown is stored as JSONB.
type CostBreakdown []CostItem

func (c CostBreakdown) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return utils.JSONBValue(c)
}

func (c *CostBreakdown) Scan(value any) error {
	*c = CostBreakdown{}
	return utils.ScanJSONB(value, c, "CostBreakdown")
}

// RawResponse keeps the model output for audit: the text exactly as received
// and the parsed form, nil when the text never parsed.
type RawResponse struct {
	RawText string          `json:"contenido"`
	Parsed  *ParsedAnalysis `json:"parsed"`
}

func (r RawResponse) Value() (driver.Value, error) {
	return utils.JSONBValue(r)
}

func (r *RawResponse) Scan(value any) error {
	*r = RawResponse{}
	return utils.ScanJSONB(value, r, "RawResponse")
}

// AnalysisResult is one persisted AI evaluation of one evidence item. Rows
// are append-only.
type AnalysisResult struct {
	ID                 uuid.UUID      `json:"id" db:"id"`
	EvidenceID         uuid.UUID      `json:"evidencia_id" db:"evidencia_id"`
	ClaimID            uuid.UUID      `json:"siniestro_id" db:"siniestro_id"`
	FraudScore         float64        `json:"score_fraude" db:"score_fraude"`
	FraudLevel         FraudLevel     `json:"nivel_fraude" db:"nivel_fraude"`
	FraudIndicators    pq.StringArray `json:"indicadores_fraude" db:"indicadores_fraude"`
	FraudJustification string         `json:"justificacion_fraude" db:"justificacion_fraude"`
	Severity           Severity       `json:"severidad" db:"severidad"`
	DamagedParts       pq.StringArray `json:"partes_danadas" db:"partes_danadas"`
	DamageDescription  string         `json:"descripcion_danos" db:"descripcion_danos"`
	CostMin            int64          `json:"costo_estimado_min" db:"costo_estimado_min"`
	CostMax            int64          `json:"costo_estimado_max" db:"costo_estimado_max"`
	CostBreakdown      CostBreakdown  `json:"desglose_costos" db:"desglose_costos"`
	PromptVersion      string         `json:"prompt_version" db:"prompt_version"`
	ModelName          string         `json:"modelo_ia" db:"modelo_ia"`
	RawResponse        RawResponse    `json:"respuesta_raw" db:"respuesta_raw"`
	TokensUsed         int            `json:"tokens_usados" db:"tokens_usados"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	ProcessedAt        time.Time      `json:"procesado_at" db:"procesado_at"`
}

// ClaimSummary holds the claim rollup fields.
type ClaimSummary struct {
	SeverityOverall   Severity `json:"severidad_general" db:"severidad_general"`
	FraudScoreOverall float64  `json:"score_fraude_general" db:"score_fraude_general"`
	CostEstimateMin   int64    `json:"costo_estimado_min" db:"costo_estimado_min"`
	CostEstimateMax   int64    `json:"costo_estimado_max" db:"costo_estimado_max"`
}
