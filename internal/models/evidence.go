package models

import (
	"time"

	"github.com/google/uuid"
)

type Evidence struct {
	ID             uuid.UUID `json:"id" db:"id"`
	ClaimID        uuid.UUID `json:"siniestro_id" db:"siniestro_id"`
	StoragePath    string    `json:"storage_path" db:"storage_path"`
	FileName       *string   `json:"nombre_archivo,omitempty" db:"nombre_archivo"`
	MimeType       *string   `json:"tipo_mime,omitempty" db:"tipo_mime"`
	SizeBytes      *int64    `json:"tamano_bytes,omitempty" db:"tamano_bytes"`
	Description    *string   `json:"descripcion,omitempty" db:"descripcion"`
	Latitude       *float64  `json:"latitud,omitempty" db:"latitud"`
	Longitude      *float64  `json:"longitud,omitempty" db:"longitud"`
	AccuracyMeters *float64  `json:"precision_metros,omitempty" db:"precision_metros"`
	Location       *GeoPoint `json:"-" db:"ubicacion"`
	Order          int       `json:"orden" db:"orden"`
	Analyzed       bool      `json:"analizado" db:"analizado"`
	CapturedAt     time.Time `json:"capturado_at" db:"capturado_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Geolocation is the optional capture position reported by the device.
type Geolocation struct {
	Latitude       float64  `json:"latitud"`
	Longitude      float64  `json:"longitud"`
	AccuracyMeters *float64 `json:"precision_metros,omitempty"`
}

// EvidenceWithAnalyses is an evidence row joined with every analysis
// attached to it, newest first.
type EvidenceWithAnalyses struct {
	Evidence
	Analyses []AnalysisResult `json:"analisis_ia"`
}

// Latest returns the newest analysis, nil when none exists.
func (e EvidenceWithAnalyses) Latest() *AnalysisResult {
	if len(e.Analyses) == 0 {
		return nil
	}
	return &e.Analyses[0]
}

// StoredObject describes one object in the evidence bucket.
type StoredObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// CreateEvidenceRequest is the metadata row written after a successful upload.
type CreateEvidenceRequest struct {
	ClaimID        string     `json:"siniestro_id"`
	StoragePath    string     `json:"storage_path"`
	FileName       *string    `json:"nombre_archivo,omitempty"`
	MimeType       *string    `json:"tipo_mime,omitempty"`
	SizeBytes      *int64     `json:"tamano_bytes,omitempty"`
	Description    *string    `json:"descripcion,omitempty"`
	Latitude       *float64   `json:"latitud,omitempty"`
	Longitude      *float64   `json:"longitud,omitempty"`
	AccuracyMeters *float64   `json:"precision_metros,omitempty"`
	Order          int        `json:"orden"`
	CapturedAt     *time.Time `json:"capturado_at,omitempty"`
}
