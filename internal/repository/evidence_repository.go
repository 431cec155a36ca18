package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/FelipeCgrillo/liquidapp/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const evidenceColumns = `
	id, siniestro_id, storage_path, nombre_archivo, tipo_mime, tamano_bytes,
	descripcion, latitud, longitud, precision_metros, ubicacion, orden,
	analizado, capturado_at, created_at`

type EvidenceRepository struct {
	db *sqlx.DB
}

func NewEvidenceRepository(db *sqlx.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

func (r *EvidenceRepository) Create(ctx context.Context, evidence *models.Evidence) error {
	query := `
		INSERT INTO evidencias (
			id, siniestro_id, storage_path, nombre_archivo, tipo_mime, tamano_bytes,
			descripcion, latitud, longitud, precision_metros, ubicacion, orden,
			analizado, capturado_at
		) VALUES (
			:id, :siniestro_id, :storage_path, :nombre_archivo, :tipo_mime, :tamano_bytes,
			:descripcion, :latitud, :longitud, :precision_metros, :ubicacion, :orden,
			:analizado, :capturado_at
		)
		RETURNING created_at
	`

	rows, err := r.db.NamedQueryContext(ctx, query, evidence)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("claim %s: %w", evidence.ClaimID, ErrNotFound)
		}
		return fmt.Errorf("failed to create evidence: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&evidence.CreatedAt); err != nil {
			return fmt.Errorf("failed to read evidence timestamps: %w", err)
		}
	}
	return rows.Err()
}

func (r *EvidenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Evidence, error) {
	var evidence models.Evidence
	query := `SELECT ` + evidenceColumns + ` FROM evidencias WHERE id = $1`

	if err := r.db.GetContext(ctx, &evidence, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get evidence by id: %w", err)
	}
	return &evidence, nil
}

func (r *EvidenceRepository) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]models.Evidence, error) {
	evidences := []models.Evidence{}
	query := `SELECT ` + evidenceColumns + ` FROM evidencias WHERE siniestro_id = $1 ORDER BY orden, created_at`

	if err := r.db.SelectContext(ctx, &evidences, query, claimID); err != nil {
		return nil, fmt.Errorf("failed to list evidences by claim: %w", err)
	}
	return evidences, nil
}

// ExistingPaths returns which of the given storage paths are referenced by an evidence row.
func (r *EvidenceRepository) ExistingPaths(ctx context.Context, paths []string) (map[string]bool, error) {
	found := make(map[string]bool, len(paths))
	if len(paths) == 0 {
		return found, nil
	}

	var existing []string
	query := `SELECT storage_path FROM evidencias WHERE storage_path = ANY($1)`
	if err := r.db.SelectContext(ctx, &existing, query, pq.Array(paths)); err != nil {
		return nil, fmt.Errorf("failed to look up storage paths: %w", err)
	}

	for _, p := range existing {
		found[p] = true
	}
	return found, nil
}
