package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/repository"

	"github.com/google/uuid"
)

type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type EvidenceWriter interface {
	Create(ctx context.Context, evidence *models.Evidence) error
}

// EvidenceService exposes the storage and metadata steps of an upload as
// separate operations so the client can tell which one failed.
type EvidenceService struct {
	objects   ObjectStore
	evidences EvidenceWriter
	urlTTL    time.Duration
}

func NewEvidenceService(objects ObjectStore, evidences EvidenceWriter, urlTTL time.Duration) *EvidenceService {
	if urlTTL <= 0 {
		urlTTL = time.Hour
	}
	return &EvidenceService{objects: objects, evidences: evidences, urlTTL: urlTTL}
}

func (s *EvidenceService) URLTTL() time.Duration {
	return s.urlTTL
}

// StoreObject writes data under "<claimID>/<name>" and returns the key.
func (s *EvidenceService) StoreObject(ctx context.Context, claimID, name string, data []byte, contentType string) (string, error) {
	id, err := uuid.Parse(claimID)
	if err != nil {
		return "", fmt.Errorf("%w: siniestro_id inválido", ErrValidation)
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: nombre de archivo inválido", ErrValidation)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: archivo vacío", ErrValidation)
	}

	key := ClaimObjectPrefix(id) + name
	if err := s.objects.Put(ctx, key, data, contentType); err != nil {
		return "", fmt.Errorf("%w: storage write: %w", ErrPersistence, err)
	}

	slog.Info("Evidence object stored", "key", key, "size", len(data))
	return key, nil
}

// CreateEvidence inserts the metadata row for an object already in storage.
func (s *EvidenceService) CreateEvidence(ctx context.Context, req models.CreateEvidenceRequest) (*models.Evidence, error) {
	claimID, err := uuid.Parse(req.ClaimID)
	if err != nil {
		return nil, fmt.Errorf("%w: siniestro_id inválido", ErrValidation)
	}
	prefix := ClaimObjectPrefix(claimID)
	if !strings.HasPrefix(req.StoragePath, prefix) || len(req.StoragePath) == len(prefix) {
		return nil, fmt.Errorf("%w: storage_path debe estar bajo %s", ErrValidation, prefix)
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, fmt.Errorf("%w: latitud y longitud van juntas", ErrValidation)
	}

	evidence := &models.Evidence{
		ID:             uuid.New(),
		ClaimID:        claimID,
		StoragePath:    req.StoragePath,
		FileName:       req.FileName,
		MimeType:       req.MimeType,
		SizeBytes:      req.SizeBytes,
		Description:    req.Description,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		AccuracyMeters: req.AccuracyMeters,
		Order:          req.Order,
		CapturedAt:     time.Now(),
	}
	if req.CapturedAt != nil {
		evidence.CapturedAt = *req.CapturedAt
	}
	if req.Latitude != nil {
		evidence.Location = models.NewGeoPoint(&models.Geolocation{
			Latitude:       *req.Latitude,
			Longitude:      *req.Longitude,
			AccuracyMeters: req.AccuracyMeters,
		})
	}

	if err := s.evidences.Create(ctx, evidence); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: siniestro %s", ErrNotFound, claimID)
		}
		// the object stays in storage until the reconciliation sweep removes it
		slog.Warn("Evidence metadata insert failed, object orphaned", "key", req.StoragePath, "error", err)
		return nil, fmt.Errorf("%w: metadata persist: %w", ErrPersistence, err)
	}

	slog.Info("Evidence created", "evidence_id", evidence.ID, "claim_id", claimID, "key", evidence.StoragePath)
	return evidence, nil
}

// SignedURL issues a new time-limited URL on every call.
func (s *EvidenceService) SignedURL(ctx context.Context, key string) (string, error) {
	parts := strings.SplitN(key, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", fmt.Errorf("%w: key inválida", ErrValidation)
	}
	if _, err := uuid.Parse(parts[0]); err != nil {
		return "", fmt.Errorf("%w: key inválida", ErrValidation)
	}

	url, err := s.objects.SignedURL(ctx, key, s.urlTTL)
	if err != nil {
		return "", fmt.Errorf("%w: signed url: %w", ErrPersistence, err)
	}
	return url, nil
}

func ClaimObjectPrefix(claimID uuid.UUID) string {
	return claimID.String() + "/"
}
