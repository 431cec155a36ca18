package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/ai"
	"github.com/FelipeCgrillo/liquidapp/internal/analysis"
	"github.com/FelipeCgrillo/liquidapp/internal/event"
	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/repository"
	"github.com/FelipeCgrillo/liquidapp/internal/worker"

	"github.com/google/uuid"
)

// ============================================================================
// ANALYSIS STORE
// ============================================================================

// memoryStore commits a transaction's writes only when fn succeeds.
type memoryStore struct {
	mu        sync.Mutex
	analyses  []models.AnalysisResult
	analyzed  map[uuid.UUID]bool
	summaries map[uuid.UUID]models.ClaimSummary
	claims    map[uuid.UUID]bool

	failMark bool
}

func newMemoryStore(claims ...uuid.UUID) *memoryStore {
	s := &memoryStore{
		analyzed:  map[uuid.UUID]bool{},
		summaries: map[uuid.UUID]models.ClaimSummary{},
		claims:    map[uuid.UUID]bool{},
	}
	for _, c := range claims {
		s.claims[c] = true
	}
	return s
}

func (s *memoryStore) WithTransaction(ctx context.Context, fn func(context.Context, repository.AnalysisUnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, analyzed: map[uuid.UUID]bool{}, summaries: map[uuid.UUID]models.ClaimSummary{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.analyses = append(s.analyses, tx.analyses...)
	for id := range tx.analyzed {
		s.analyzed[id] = true
	}
	for id, sum := range tx.summaries {
		s.summaries[id] = sum
	}
	return nil
}

func (s *memoryStore) committed() []models.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AnalysisResult(nil), s.analyses...)
}

func (s *memoryStore) isAnalyzed(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzed[id]
}

func (s *memoryStore) summary(claimID uuid.UUID) (models.ClaimSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.summaries[claimID]
	return sum, ok
}

type memoryTx struct {
	store     *memoryStore
	analyses  []models.AnalysisResult
	analyzed  map[uuid.UUID]bool
	summaries map[uuid.UUID]models.ClaimSummary
}

func (t *memoryTx) LockClaim(ctx context.Context, claimID uuid.UUID) error {
	if !t.store.claims[claimID] {
		return repository.ErrNotFound
	}
	return nil
}

func (t *memoryTx) InsertAnalysis(ctx context.Context, result *models.AnalysisResult) error {
	t.analyses = append(t.analyses, *result)
	return nil
}

func (t *memoryTx) MarkEvidenceAnalyzed(ctx context.Context, evidenceID, claimID uuid.UUID) error {
	if t.store.failMark {
		return errors.New("connection reset")
	}
	t.analyzed[evidenceID] = true
	return nil
}

func (t *memoryTx) ListClaimSummaryRows(ctx context.Context, claimID uuid.UUID) ([]analysis.SummaryRow, error) {
	var rows []analysis.SummaryRow
	all := append(append([]models.AnalysisResult(nil), t.store.analyses...), t.analyses...)
	for _, a := range all {
		if a.ClaimID == claimID {
			rows = append(rows, analysis.SummaryRow{
				Severity:   a.Severity,
				FraudScore: a.FraudScore,
				CostMin:    a.CostMin,
				CostMax:    a.CostMax,
			})
		}
	}
	return rows, nil
}

func (t *memoryTx) UpdateClaimSummary(ctx context.Context, claimID uuid.UUID, summary models.ClaimSummary) error {
	t.summaries[claimID] = summary
	return nil
}

// ============================================================================
// COLLABORATORS
// ============================================================================

type fakeEvidences map[uuid.UUID]*models.Evidence

func (f fakeEvidences) GetByID(ctx context.Context, id uuid.UUID) (*models.Evidence, error) {
	if ev, ok := f[id]; ok {
		return ev, nil
	}
	return nil, repository.ErrNotFound
}

type fakeVision struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	lastURL string
}

func (f *fakeVision) AnalyzeImage(ctx context.Context, systemPrompt, userPrompt, imageURL string) (*ai.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastURL = imageURL
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Completion{Text: f.text, Model: "vision-test", TokensUsed: 321}, nil
}

func (f *fakeVision) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.AnalysisEvent
	alerts []event.FraudAlertEvent
}

func (r *recordingPublisher) PublishAnalysisEvent(ctx context.Context, evt event.AnalysisEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recordingPublisher) PublishFraudAlert(ctx context.Context, alert event.FraudAlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *recordingPublisher) snapshot() ([]event.AnalysisEvent, []event.FraudAlertEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.AnalysisEvent(nil), r.events...), append([]event.FraudAlertEvent(nil), r.alerts...)
}

// inlineQueue runs jobs on submit so queued tests stay deterministic.
type inlineQueue struct {
	full bool
	errs []error
}

func (q *inlineQueue) TrySubmit(job worker.Job) error {
	if q.full {
		return worker.ErrQueueFull
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.errs = append(q.errs, job(ctx))
	return nil
}
