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

type ClaimRepository struct {
	db *sqlx.DB
}

func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// GetByID retrieves a claim by its ID
func (r *ClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	query := `
		SELECT id, numero_siniestro, patente, marca, modelo, anio, color,
		       nombre_asegurado, rut_asegurado, poliza_numero, fecha_siniestro,
		       tipo_siniestro, descripcion, direccion, latitud, longitud, estado,
		       severidad_general, score_fraude_general, costo_estimado_min,
		       costo_estimado_max, created_at, updated_at
		FROM siniestros
		WHERE id = $1
	`

	if err := r.db.GetContext(ctx, &claim, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get claim by id: %w", err)
	}
	return &claim, nil
}
