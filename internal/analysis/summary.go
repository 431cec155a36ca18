package analysis

import (
	"context"
	"fmt"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/google/uuid"
)

// SummaryRow is the projection of an analysis row the rollup needs.
type SummaryRow struct {
	Severity   models.Severity `db:"severidad"`
	FraudScore float64         `db:"score_fraude"`
	CostMin    int64           `db:"costo_estimado_min"`
	CostMax    int64           `db:"costo_estimado_max"`
}

// AggregateClaimSummary folds every analysis of a claim into the rollup
// fields. The result depends only on the set of rows, not their order.
// ok is false when rows is empty.
func AggregateClaimSummary(rows []SummaryRow) (summary models.ClaimSummary, ok bool) {
	if len(rows) == 0 {
		return models.ClaimSummary{}, false
	}

	summary.SeverityOverall = models.SeverityMinor
	for i, row := range rows {
		if row.Severity.Rank() > summary.SeverityOverall.Rank() {
			summary.SeverityOverall = row.Severity
		}
		if i == 0 || row.FraudScore > summary.FraudScoreOverall {
			summary.FraudScoreOverall = row.FraudScore
		}
		summary.CostEstimateMin += row.CostMin
		summary.CostEstimateMax += row.CostMax
	}

	return summary, true
}

// SummaryStore is the persistence needed to recompute a claim rollup.
type SummaryStore interface {
	ListClaimSummaryRows(ctx context.Context, claimID uuid.UUID) ([]SummaryRow, error)
	UpdateClaimSummary(ctx context.Context, claimID uuid.UUID, summary models.ClaimSummary) error
}

// RecomputeClaimSummary reads the full analysis set for the claim and
// overwrites the four rollup fields. With no analyses it leaves the claim
// untouched and returns nil.
func RecomputeClaimSummary(ctx context.Context, store SummaryStore, claimID uuid.UUID) (*models.ClaimSummary, error) {
	rows, err := store.ListClaimSummaryRows(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses for claim summary: %w", err)
	}

	summary, ok := AggregateClaimSummary(rows)
	if !ok {
		return nil, nil
	}

	if err := store.UpdateClaimSummary(ctx, claimID, summary); err != nil {
		return nil, fmt.Errorf("failed to update claim summary: %w", err)
	}
	return &summary, nil
}
