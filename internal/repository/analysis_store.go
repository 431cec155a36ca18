package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/FelipeCgrillo/liquidapp/internal/analysis"
	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AnalysisUnitOfWork is the set of writes that attach one analysis to a
// claim. All of them commit together or not at all.
type AnalysisUnitOfWork interface {
	analysis.SummaryStore
	LockClaim(ctx context.Context, claimID uuid.UUID) error
	InsertAnalysis(ctx context.Context, result *models.AnalysisResult) error
	MarkEvidenceAnalyzed(ctx context.Context, evidenceID, claimID uuid.UUID) error
}

type AnalysisStore interface {
	WithTransaction(ctx context.Context, fn func(context.Context, AnalysisUnitOfWork) error) error
}

type PostgresAnalysisStore struct {
	db *sqlx.DB
}

func NewPostgresAnalysisStore(db *sqlx.DB) *PostgresAnalysisStore {
	return &PostgresAnalysisStore{db: db}
}

// WithTransaction executes fn within a database transaction
func (s *PostgresAnalysisStore) WithTransaction(ctx context.Context, fn func(context.Context, AnalysisUnitOfWork) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(ctx, &postgresAnalysisTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction (original error: %w): %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type postgresAnalysisTx struct {
	tx *sqlx.Tx
}

// LockClaim takes a row lock so concurrent analyses of the same claim
// recompute the rollup one after another.
func (p *postgresAnalysisTx) LockClaim(ctx context.Context, claimID uuid.UUID) error {
	var id uuid.UUID
	err := p.tx.GetContext(ctx, &id, `SELECT id FROM siniestros WHERE id = $1 FOR UPDATE`, claimID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("claim %s: %w", claimID, ErrNotFound)
		}
		return fmt.Errorf("failed to lock claim: %w", err)
	}
	return nil
}

func (p *postgresAnalysisTx) InsertAnalysis(ctx context.Context, result *models.AnalysisResult) error {
	query := `
		INSERT INTO analisis_ia (
			id, evidencia_id, siniestro_id, score_fraude, nivel_fraude, indicadores_fraude,
			justificacion_fraude, severidad, partes_danadas, descripcion_danos,
			costo_estimado_min, costo_estimado_max, desglose_costos, prompt_version,
			modelo_ia, respuesta_raw, tokens_usados, created_at, procesado_at
		) VALUES (
			:id, :evidencia_id, :siniestro_id, :score_fraude, :nivel_fraude, :indicadores_fraude,
			:justificacion_fraude, :severidad, :partes_danadas, :descripcion_danos,
			:costo_estimado_min, :costo_estimado_max, :desglose_costos, :prompt_version,
			:modelo_ia, :respuesta_raw, :tokens_usados, :created_at, :procesado_at
		)
	`

	if _, err := p.tx.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

func (p *postgresAnalysisTx) MarkEvidenceAnalyzed(ctx context.Context, evidenceID, claimID uuid.UUID) error {
	query := `UPDATE evidencias SET analizado = TRUE WHERE id = $1 AND siniestro_id = $2`

	err := utils.ExecWithCheck(ctx, p.tx, query, utils.ExecUpdate, evidenceID, claimID)
	if errors.Is(err, utils.ErrNoRowsAffected) {
		return fmt.Errorf("evidence %s in claim %s: %w", evidenceID, claimID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to mark evidence analyzed: %w", err)
	}
	return nil
}

func (p *postgresAnalysisTx) ListClaimSummaryRows(ctx context.Context, claimID uuid.UUID) ([]analysis.SummaryRow, error) {
	var rows []analysis.SummaryRow
	query := `
		SELECT severidad, score_fraude, costo_estimado_min, costo_estimado_max
		FROM analisis_ia
		WHERE siniestro_id = $1
	`

	if err := p.tx.SelectContext(ctx, &rows, query, claimID); err != nil {
		return nil, fmt.Errorf("failed to list summary rows: %w", err)
	}
	return rows, nil
}

func (p *postgresAnalysisTx) UpdateClaimSummary(ctx context.Context, claimID uuid.UUID, summary models.ClaimSummary) error {
	query := `
		UPDATE siniestros
		SET severidad_general = $2,
		    score_fraude_general = $3,
		    costo_estimado_min = $4,
		    costo_estimado_max = $5,
		    updated_at = NOW()
		WHERE id = $1
	`

	return utils.ExecWithCheck(ctx, p.tx, query, utils.ExecUpdate,
		claimID, summary.SeverityOverall, summary.FraudScoreOverall,
		summary.CostEstimateMin, summary.CostEstimateMax)
}
