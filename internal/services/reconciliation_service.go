package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/models"

	"github.com/google/uuid"
)

type ObjectLister interface {
	List(ctx context.Context, prefix string) ([]models.StoredObject, error)
	Delete(ctx context.Context, key string) error
}

type PathChecker interface {
	ExistingPaths(ctx context.Context, paths []string) (map[string]bool, error)
}

// ReconciliationService deletes stored objects no evidence row refers to,
// once they are older than the grace period.
type ReconciliationService struct {
	objects ObjectLister
	paths   PathChecker
	grace   time.Duration
	now     func() time.Time
}

func NewReconciliationService(objects ObjectLister, paths PathChecker, grace time.Duration) *ReconciliationService {
	return &ReconciliationService{objects: objects, paths: paths, grace: grace, now: time.Now}
}

// Reconcile sweeps one claim's prefix, or the whole bucket when claimID is
// empty, and returns the deleted keys.
func (s *ReconciliationService) Reconcile(ctx context.Context, claimID string) ([]string, error) {
	prefix := ""
	if claimID != "" {
		id, err := uuid.Parse(claimID)
		if err != nil {
			return nil, fmt.Errorf("%w: siniestro_id inválido", ErrValidation)
		}
		prefix = ClaimObjectPrefix(id)
	}

	objects, err := s.objects.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored objects: %w", err)
	}

	cutoff := s.now().Add(-s.grace)
	var candidates []string
	for _, obj := range objects {
		if obj.LastModified.Before(cutoff) {
			candidates = append(candidates, obj.Key)
		}
	}

	deleted := []string{}
	if len(candidates) == 0 {
		return deleted, nil
	}

	referenced, err := s.paths.ExistingPaths(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to check evidence references: %w", err)
	}

	for _, key := range candidates {
		if referenced[key] {
			continue
		}
		if err := s.objects.Delete(ctx, key); err != nil {
			slog.Error("Failed to delete orphaned object", "key", key, "error", err)
			continue
		}
		deleted = append(deleted, key)
	}

	slog.Info("Storage reconciliation finished",
		"prefix", prefix,
		"scanned", len(objects),
		"deleted", len(deleted))
	return deleted, nil
}

// SweepJob is the scheduled whole-bucket sweep.
func (s *ReconciliationService) SweepJob(ctx context.Context) error {
	_, err := s.Reconcile(ctx, "")
	return err
}
