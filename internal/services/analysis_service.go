package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/ai"
	"github.com/FelipeCgrillo/liquidapp/internal/analysis"
	"github.com/FelipeCgrillo/liquidapp/internal/event"
	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/repository"
	"github.com/FelipeCgrillo/liquidapp/internal/worker"

	"github.com/google/uuid"
)

type EvidenceLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Evidence, error)
}

type AnalysisEventPublisher interface {
	PublishAnalysisEvent(ctx context.Context, evt event.AnalysisEvent) error
}

type FraudAlertSink interface {
	PublishFraudAlert(ctx context.Context, alert event.FraudAlertEvent) error
}

type JobQueue interface {
	TrySubmit(job worker.Job) error
}

// AnalysisService runs one evidence item through the model, the parser and
// the analysis unit of work. Sync and queued callers share the same steps
// and differ only in parse mode and in how they wait.
type AnalysisService struct {
	store     repository.AnalysisStore
	evidences EvidenceLookup
	vision    ai.VisionModel
	realtime  AnalysisEventPublisher
	alerts    FraudAlertSink
	queue     JobQueue
}

// NewAnalysisService accepts nil for vision when no provider is configured,
// and nil for realtime or alerts when those backends are unavailable.
func NewAnalysisService(
	store repository.AnalysisStore,
	evidences EvidenceLookup,
	vision ai.VisionModel,
	realtime AnalysisEventPublisher,
	alerts FraudAlertSink,
	queue JobQueue,
) *AnalysisService {
	return &AnalysisService{
		store:     store,
		evidences: evidences,
		vision:    vision,
		realtime:  realtime,
		alerts:    alerts,
		queue:     queue,
	}
}

type analysisInput struct {
	evidenceID uuid.UUID
	claimID    uuid.UUID
	imageURL   string
}

// AnalyzeEvidence is the synchronous path. The answer is parsed strictly.
func (s *AnalysisService) AnalyzeEvidence(ctx context.Context, req models.AnalyzeEvidenceRequest) (*models.AnalysisResult, *models.ParsedAnalysis, error) {
	in, err := s.prepare(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	return s.run(ctx, in, analysis.ModeFor(models.DeliverySync))
}

// QueueAnalysis validates synchronously, then hands the work to the pool.
// The outcome reaches the caller through the realtime channel only.
func (s *AnalysisService) QueueAnalysis(ctx context.Context, req models.AnalyzeEvidenceRequest) error {
	in, err := s.prepare(ctx, req)
	if err != nil {
		return err
	}
	if s.queue == nil {
		return fmt.Errorf("%w: no working pool", ErrQueueFull)
	}

	job := func(jobCtx context.Context) error {
		_, _, err := s.run(jobCtx, in, analysis.ModeFor(models.DeliveryQueued))
		if err != nil {
			// the job context may already be past its deadline
			notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(jobCtx), 5*time.Second)
			defer cancel()
			s.publishFailure(notifyCtx, in, err)
			return err
		}
		return nil
	}

	if err := s.queue.TrySubmit(job); err != nil {
		if errors.Is(err, worker.ErrQueueFull) || errors.Is(err, worker.ErrPoolStopped) {
			return fmt.Errorf("%w: %w", ErrQueueFull, err)
		}
		return fmt.Errorf("failed to queue analysis: %w", err)
	}

	slog.Info("Analysis queued", "evidence_id", in.evidenceID, "claim_id", in.claimID)
	return nil
}

func (s *AnalysisService) prepare(ctx context.Context, req models.AnalyzeEvidenceRequest) (analysisInput, error) {
	in, err := validateAnalyzeRequest(req)
	if err != nil {
		return analysisInput{}, err
	}
	if s.vision == nil {
		return analysisInput{}, ErrNotConfigured
	}

	evidence, err := s.evidences.GetByID(ctx, in.evidenceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return analysisInput{}, fmt.Errorf("%w: evidencia %s no existe", ErrValidation, in.evidenceID)
		}
		return analysisInput{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if evidence.ClaimID != in.claimID {
		return analysisInput{}, fmt.Errorf("%w: evidencia %s no pertenece al siniestro %s", ErrValidation, in.evidenceID, in.claimID)
	}
	return in, nil
}

func validateAnalyzeRequest(req models.AnalyzeEvidenceRequest) (analysisInput, error) {
	var missing []string
	if strings.TrimSpace(req.EvidenceID) == "" {
		missing = append(missing, "evidencia_id")
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		missing = append(missing, "imagen_url")
	}
	if strings.TrimSpace(req.ClaimID) == "" {
		missing = append(missing, "siniestro_id")
	}
	if len(missing) > 0 {
		return analysisInput{}, fmt.Errorf("%w: faltan campos requeridos: %s", ErrValidation, strings.Join(missing, ", "))
	}

	evidenceID, err := uuid.Parse(req.EvidenceID)
	if err != nil {
		return analysisInput{}, fmt.Errorf("%w: evidencia_id inválido", ErrValidation)
	}
	claimID, err := uuid.Parse(req.ClaimID)
	if err != nil {
		return analysisInput{}, fmt.Errorf("%w: siniestro_id inválido", ErrValidation)
	}

	return analysisInput{evidenceID: evidenceID, claimID: claimID, imageURL: req.ImageURL}, nil
}

func (s *AnalysisService) run(ctx context.Context, in analysisInput, mode analysis.Mode) (*models.AnalysisResult, *models.ParsedAnalysis, error) {
	started := time.Now()

	completion, err := s.vision.AnalyzeImage(ctx, ai.EvidenceSystemPrompt, ai.EvidenceUserPrompt, in.imageURL)
	if err != nil {
		slog.Error("Vision model call failed", "evidence_id", in.evidenceID, "error", err)
		return nil, nil, fmt.Errorf("%w: %w", ErrExternalCall, err)
	}

	parsed, err := analysis.Parse(completion.Text, mode)
	if err != nil {
		slog.Error("AI response rejected",
			"evidence_id", in.evidenceID,
			"mode", mode.String(),
			"model", completion.Model,
			"error", err)
		return nil, nil, err
	}

	result := analysis.NewAnalysisResult(in.evidenceID, in.claimID, parsed, analysis.ResultMeta{
		ModelName:     completion.Model,
		PromptVersion: ai.PromptVersion,
		RawText:       completion.Text,
		TokensUsed:    completion.TokensUsed,
	})

	err = s.store.WithTransaction(ctx, func(ctx context.Context, uow repository.AnalysisUnitOfWork) error {
		if err := uow.LockClaim(ctx, in.claimID); err != nil {
			return err
		}
		if err := uow.InsertAnalysis(ctx, result); err != nil {
			return err
		}
		if err := uow.MarkEvidenceAnalyzed(ctx, in.evidenceID, in.claimID); err != nil {
			return err
		}
		_, err := analysis.RecomputeClaimSummary(ctx, uow, in.claimID)
		return err
	})
	if err != nil {
		slog.Error("Failed to persist analysis", "evidence_id", in.evidenceID, "claim_id", in.claimID, "error", err)
		return nil, nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	slog.Info("Evidence analyzed",
		"evidence_id", in.evidenceID,
		"claim_id", in.claimID,
		"mode", mode.String(),
		"severity", result.Severity,
		"fraud_level", result.FraudLevel,
		"duration", time.Since(started))

	s.afterCommit(ctx, result)
	return result, parsed, nil
}

// afterCommit pushes notifications. Their failures never undo the analysis.
func (s *AnalysisService) afterCommit(ctx context.Context, result *models.AnalysisResult) {
	if s.realtime != nil {
		evt := event.AnalysisEvent{
			Type:       event.AnalysisInserted,
			EvidenceID: result.EvidenceID,
			ClaimID:    result.ClaimID,
			Analysis:   result,
			OccurredAt: time.Now(),
		}
		if err := s.realtime.PublishAnalysisEvent(ctx, evt); err != nil {
			slog.Warn("Failed to publish analysis event", "evidence_id", result.EvidenceID, "error", err)
		}
	}

	if s.alerts != nil && result.FraudLevel.Alerting() {
		if err := s.alerts.PublishFraudAlert(ctx, event.NewFraudAlert(result)); err != nil {
			slog.Warn("Failed to publish fraud alert", "evidence_id", result.EvidenceID, "error", err)
		}
	}
}

func (s *AnalysisService) publishFailure(ctx context.Context, in analysisInput, cause error) {
	if s.realtime == nil {
		return
	}
	evt := event.AnalysisEvent{
		Type:       event.AnalysisFailed,
		EvidenceID: in.evidenceID,
		ClaimID:    in.claimID,
		Error:      cause.Error(),
		OccurredAt: time.Now(),
	}
	if err := s.realtime.PublishAnalysisEvent(ctx, evt); err != nil {
		slog.Warn("Failed to publish analysis failure", "evidence_id", in.evidenceID, "error", err)
	}
}
