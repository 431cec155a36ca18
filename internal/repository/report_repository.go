package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/FelipeCgrillo/liquidapp/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const reportColumns = `
	id, siniestro_id, contenido_markdown, estado, generado_por_ia, generado_por,
	modelo_ia, version, created_at, updated_at`

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Upsert stores a freshly generated draft. Regenerating bumps the version
// and resets the status to borrador.
func (r *ReportRepository) Upsert(ctx context.Context, claimID uuid.UUID, markdown, modelName string, generatedBy *string) (*models.PreReport, error) {
	var report models.PreReport
	query := `
		INSERT INTO pre_informes (
			siniestro_id, contenido_markdown, estado, generado_por_ia, generado_por, modelo_ia, version
		) VALUES ($1, $2, 'borrador', TRUE, $3, $4, 1)
		ON CONFLICT (siniestro_id) DO UPDATE SET
			contenido_markdown = EXCLUDED.contenido_markdown,
			estado = 'borrador',
			generado_por = EXCLUDED.generado_por,
			modelo_ia = EXCLUDED.modelo_ia,
			version = pre_informes.version + 1,
			updated_at = NOW()
		RETURNING ` + reportColumns

	if err := r.db.GetContext(ctx, &report, query, claimID, markdown, generatedBy, modelName); err != nil {
		return nil, fmt.Errorf("failed to upsert pre-report: %w", err)
	}
	return &report, nil
}

func (r *ReportRepository) GetByClaim(ctx context.Context, claimID uuid.UUID) (*models.PreReport, error) {
	var report models.PreReport
	query := `SELECT ` + reportColumns + ` FROM pre_informes WHERE siniestro_id = $1`

	if err := r.db.GetContext(ctx, &report, query, claimID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pre-report: %w", err)
	}
	return &report, nil
}
