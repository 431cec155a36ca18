package models

import (
	"time"

	"github.com/google/uuid"
)

type Claim struct {
	ID                uuid.UUID   `json:"id" db:"id"`
	ClaimNumber       string      `json:"numero_siniestro" db:"numero_siniestro"`
	Plate             string      `json:"patente" db:"patente"`
	Make              *string     `json:"marca,omitempty" db:"marca"`
	Model             *string     `json:"modelo,omitempty" db:"modelo"`
	Year              *int        `json:"anio,omitempty" db:"anio"`
	Color             *string     `json:"color,omitempty" db:"color"`
	InsuredName       string      `json:"nombre_asegurado" db:"nombre_asegurado"`
	InsuredRut        *string     `json:"rut_asegurado,omitempty" db:"rut_asegurado"`
	PolicyNumber      *string     `json:"poliza_numero,omitempty" db:"poliza_numero"`
	IncidentDate      time.Time   `json:"fecha_siniestro" db:"fecha_siniestro"`
	IncidentType      string      `json:"tipo_siniestro" db:"tipo_siniestro"`
	Description       *string     `json:"descripcion,omitempty" db:"descripcion"`
	Address           *string     `json:"direccion,omitempty" db:"direccion"`
	Latitude          *float64    `json:"latitud,omitempty" db:"latitud"`
	Longitude         *float64    `json:"longitud,omitempty" db:"longitud"`
	Status            ClaimStatus `json:"estado" db:"estado"`
	SeverityOverall   *Severity   `json:"severidad_general,omitempty" db:"severidad_general"`
	FraudScoreOverall *float64    `json:"score_fraude_general,omitempty" db:"score_fraude_general"`
	CostEstimateMin   int64       `json:"costo_estimado_min" db:"costo_estimado_min"`
	CostEstimateMax   int64       `json:"costo_estimado_max" db:"costo_estimado_max"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

// ClaimDetail is the claim plus its evidence tree and current pre-report.
type ClaimDetail struct {
	Claim
	Evidences []EvidenceWithAnalyses `json:"evidencias"`
	PreReport *PreReport             `json:"pre_informe"`
}

type PreReport struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	ClaimID       uuid.UUID    `json:"siniestro_id" db:"siniestro_id"`
	Markdown      string       `json:"contenido_markdown" db:"contenido_markdown"`
	Status        ReportStatus `json:"estado" db:"estado"`
	GeneratedByAI bool         `json:"generado_por_ia" db:"generado_por_ia"`
	GeneratedBy   *string      `json:"generado_por,omitempty" db:"generado_por"`
	ModelName     string       `json:"modelo_ia" db:"modelo_ia"`
	Version       int          `json:"version" db:"version"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

type Client struct {
	ID           uuid.UUID `json:"id" db:"id"`
	FullName     string    `json:"nombre_completo" db:"nombre_completo"`
	Rut          string    `json:"rut" db:"rut"`
	Phone        *string   `json:"telefono" db:"telefono"`
	Email        *string   `json:"email" db:"email"`
	PolicyNumber *string   `json:"poliza_numero" db:"poliza_numero"`
	Vehicles     []Vehicle `json:"vehiculos" db:"-"`
}

type Vehicle struct {
	ID       uuid.UUID `json:"id" db:"id"`
	ClientID uuid.UUID `json:"-" db:"cliente_id"`
	Plate    string    `json:"patente" db:"patente"`
	Make     string    `json:"marca" db:"marca"`
	Model    string    `json:"modelo" db:"modelo"`
	Year     *int      `json:"anio" db:"anio"`
	Color    *string   `json:"color" db:"color"`
}
