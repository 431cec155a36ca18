package repository

import (
	"context"
	"fmt"

	"github.com/FelipeCgrillo/liquidapp/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const analysisColumns = `
	id, evidencia_id, siniestro_id, score_fraude, nivel_fraude, indicadores_fraude,
	justificacion_fraude, severidad, partes_danadas, descripcion_danos,
	costo_estimado_min, costo_estimado_max, desglose_costos, prompt_version,
	modelo_ia, respuesta_raw, tokens_usados, created_at, procesado_at`

type AnalysisRepository struct {
	db *sqlx.DB
}

func NewAnalysisRepository(db *sqlx.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// ListByClaim returns every analysis of the claim, newest first.
func (r *AnalysisRepository) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]models.AnalysisResult, error) {
	results := []models.AnalysisResult{}
	query := `SELECT ` + analysisColumns + ` FROM analisis_ia WHERE siniestro_id = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &results, query, claimID); err != nil {
		return nil, fmt.Errorf("failed to list analyses by claim: %w", err)
	}
	return results, nil
}

func (r *AnalysisRepository) ListByEvidence(ctx context.Context, evidenceID uuid.UUID) ([]models.AnalysisResult, error) {
	results := []models.AnalysisResult{}
	query := `SELECT ` + analysisColumns + ` FROM analisis_ia WHERE evidencia_id = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &results, query, evidenceID); err != nil {
		return nil, fmt.Errorf("failed to list analyses by evidence: %w", err)
	}
	return results, nil
}
