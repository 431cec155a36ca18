package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSummaryStore struct {
	rows    []SummaryRow
	updates []models.ClaimSummary
	listErr error
}

func (f *fakeSummaryStore) ListClaimSummaryRows(ctx context.Context, claimID uuid.UUID) ([]SummaryRow, error) {
	return f.rows, f.listErr
}

func (f *fakeSummaryStore) UpdateClaimSummary(ctx context.Context, claimID uuid.UUID, summary models.ClaimSummary) error {
	f.updates = append(f.updates, summary)
	return nil
}

func TestAggregateClaimSummary_OrderIndependent(t *testing.T) {
	minor := SummaryRow{Severity: models.SeverityMinor, FraudScore: 0.1}
	severe := SummaryRow{Severity: models.SeveritySevere, FraudScore: 0.4}
	moderate := SummaryRow{Severity: models.SeverityModerate, FraudScore: 0.7}

	permutations := [][]SummaryRow{
		{minor, severe, moderate},
		{minor, moderate, severe},
		{severe, minor, moderate},
		{severe, moderate, minor},
		{moderate, minor, severe},
		{moderate, severe, minor},
	}

	for _, rows := range permutations {
		summary, ok := AggregateClaimSummary(rows)
		require.True(t, ok)
		assert.Equal(t, models.SeveritySevere, summary.SeverityOverall)
		assert.Equal(t, 0.7, summary.FraudScoreOverall)
	}
}

func TestAggregateClaimSummary_SumsCosts(t *testing.T) {
	rows := []SummaryRow{
		{Severity: models.SeverityMinor, CostMin: 100, CostMax: 200},
		{Severity: models.SeverityMinor, CostMin: 50, CostMax: 80},
		{Severity: models.SeverityMinor, CostMin: 0, CostMax: 0},
	}

	summary, ok := AggregateClaimSummary(rows)
	require.True(t, ok)
	assert.Equal(t, int64(150), summary.CostEstimateMin)
	assert.Equal(t, int64(280), summary.CostEstimateMax)
}

func TestAggregateClaimSummary_TotalLossWins(t *testing.T) {
	rows := []SummaryRow{
		{Severity: models.SeverityTotalLoss},
		{Severity: models.SeveritySevere},
		{Severity: models.Severity("desconocido")},
	}
	summary, _ := AggregateClaimSummary(rows)
	assert.Equal(t, models.SeverityTotalLoss, summary.SeverityOverall)
}

func TestAggregateClaimSummary_Empty(t *testing.T) {
	_, ok := AggregateClaimSummary(nil)
	assert.False(t, ok)
}

func TestRecomputeClaimSummary_Idempotent(t *testing.T) {
	store := &fakeSummaryStore{rows: []SummaryRow{
		{Severity: models.SeverityModerate, FraudScore: 0.3, CostMin: 100, CostMax: 200},
		{Severity: models.SeveritySevere, FraudScore: 0.2, CostMin: 50, CostMax: 80},
	}}

	first, err := RecomputeClaimSummary(context.Background(), store, uuid.New())
	require.NoError(t, err)
	second, err := RecomputeClaimSummary(context.Background(), store, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, *first, *second)
	require.Len(t, store.updates, 2)
	assert.Equal(t, store.updates[0], store.updates[1])
}

func TestRecomputeClaimSummary_NoRowsLeavesClaimUntouched(t *testing.T) {
	store := &fakeSummaryStore{}

	summary, err := RecomputeClaimSummary(context.Background(), store, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Empty(t, store.updates)
}

func TestRecomputeClaimSummary_ListError(t *testing.T) {
	store := &fakeSummaryStore{listErr: errors.New("connection reset")}

	_, err := RecomputeClaimSummary(context.Background(), store, uuid.New())
	assert.Error(t, err)
	assert.Empty(t, store.updates)
}
