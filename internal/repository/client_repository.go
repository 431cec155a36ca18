package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/FelipeCgrillo/liquidapp/internal/models"

	"github.com/jmoiron/sqlx"
)

type ClientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// GetByRut expects the normalized "BODY-DV" form.
func (r *ClientRepository) GetByRut(ctx context.Context, rut string) (*models.Client, error) {
	var client models.Client
	query := `
		SELECT id, nombre_completo, rut, telefono, email, poliza_numero
		FROM clientes
		WHERE rut = $1
	`
	if err := r.db.GetContext(ctx, &client, query, rut); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client by rut: %w", err)
	}

	client.Vehicles = []models.Vehicle{}
	vehiclesQuery := `
		SELECT id, cliente_id, patente, marca, modelo, anio, color
		FROM vehiculos_asegurados
		WHERE cliente_id = $1
		ORDER BY patente
	`
	if err := r.db.SelectContext(ctx, &client.Vehicles, vehiclesQuery, client.ID); err != nil {
		return nil, fmt.Errorf("failed to get client vehicles: %w", err)
	}

	return &client, nil
}
