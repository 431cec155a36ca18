package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/repository"

	"github.com/google/uuid"
)

type ClaimReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)
}

type EvidenceLister interface {
	ListByClaim(ctx context.Context, claimID uuid.UUID) ([]models.Evidence, error)
}

type AnalysisLister interface {
	ListByClaim(ctx context.Context, claimID uuid.UUID) ([]models.AnalysisResult, error)
}

type ReportReader interface {
	GetByClaim(ctx context.Context, claimID uuid.UUID) (*models.PreReport, error)
}

type ClaimService struct {
	claims    ClaimReader
	evidences EvidenceLister
	analyses  AnalysisLister
	reports   ReportReader
}

func NewClaimService(claims ClaimReader, evidences EvidenceLister, analyses AnalysisLister, reports ReportReader) *ClaimService {
	return &ClaimService{
		claims:    claims,
		evidences: evidences,
		analyses:  analyses,
		reports:   reports,
	}
}

// GetClaimDetail loads the claim with every evidence, each evidence's
// analyses newest first, and the current pre-report if any.
func (s *ClaimService) GetClaimDetail(ctx context.Context, claimID string) (*models.ClaimDetail, error) {
	id, err := uuid.Parse(claimID)
	if err != nil {
		return nil, fmt.Errorf("%w: siniestro_id inválido", ErrValidation)
	}

	claim, err := s.claims.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: siniestro %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	evidences, err := s.evidences.ListByClaim(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list evidences: %w", err)
	}

	analyses, err := s.analyses.ListByClaim(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	byEvidence := make(map[uuid.UUID][]models.AnalysisResult, len(evidences))
	for _, a := range analyses {
		byEvidence[a.EvidenceID] = append(byEvidence[a.EvidenceID], a)
	}

	detail := &models.ClaimDetail{
		Claim:     *claim,
		Evidences: make([]models.EvidenceWithAnalyses, 0, len(evidences)),
	}
	for _, ev := range evidences {
		list := byEvidence[ev.ID]
		if list == nil {
			list = []models.AnalysisResult{}
		}
		detail.Evidences = append(detail.Evidences, models.EvidenceWithAnalyses{Evidence: ev, Analyses: list})
	}

	report, err := s.reports.GetByClaim(ctx, id)
	switch {
	case err == nil:
		detail.PreReport = report
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to get pre-report: %w", err)
	}

	return detail, nil
}
