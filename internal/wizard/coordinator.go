package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/models"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type Storage interface {
	PutObject(ctx context.Context, claimID uuid.UUID, name string, data []byte, contentType string) (string, error)
}

type EvidenceRecorder interface {
	CreateEvidence(ctx context.Context, req models.CreateEvidenceRequest) (*models.Evidence, error)
}

type URLSigner interface {
	SignedURL(ctx context.Context, key string) (string, error)
}

type Analyzer interface {
	AnalyzeSync(ctx context.Context, req models.AnalyzeEvidenceRequest) (*models.AnalysisResult, error)
	AnalyzeQueued(ctx context.Context, req models.AnalyzeEvidenceRequest) error
}

type UploadStep string

const (
	StepStorageWrite    UploadStep = "storage_write"
	StepMetadataPersist UploadStep = "metadata_persist"
	StepAccessURL       UploadStep = "access_url"
	StepDispatch        UploadStep = "dispatch"
)

// UploadError names the step of the upload that failed.
type UploadError struct {
	Step UploadStep
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

type UploadOptions struct {
	ClaimID     uuid.UUID
	FileName    string
	ContentType string
	Description *string
	Geolocation *models.Geolocation
	Order       int
	CapturedAt  time.Time
	Mode        models.DeliveryMode
}

type UploadResult struct {
	Evidence  *models.Evidence
	SignedURL string
	Analyzing bool
	Analysis  AnalysisSlot
}

// Coordinator runs one capture through storage, metadata, URL issuance and
// analysis dispatch, strictly in that order.
type Coordinator struct {
	storage    Storage
	recorder   EvidenceRecorder
	signer     URLSigner
	analyzer   Analyzer
	dispatcher *Dispatcher
}

func NewCoordinator(storage Storage, recorder EvidenceRecorder, signer URLSigner, analyzer Analyzer, dispatcher *Dispatcher) *Coordinator {
	return &Coordinator{
		storage:    storage,
		recorder:   recorder,
		signer:     signer,
		analyzer:   analyzer,
		dispatcher: dispatcher,
	}
}

// Upload returns an error only when the evidence could not be created. A
// failed synchronous analysis still returns the evidence with NoResult.
func (c *Coordinator) Upload(ctx context.Context, data []byte, opts UploadOptions) (*UploadResult, error) {
	contentType := opts.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(opts.FileName)))
	}
	name := ulid.Make().String() + objectExtension(opts.FileName, contentType)

	key, err := c.storage.PutObject(ctx, opts.ClaimID, name, data, contentType)
	if err != nil {
		return nil, &UploadError{Step: StepStorageWrite, Err: err}
	}

	size := int64(len(data))
	req := models.CreateEvidenceRequest{
		ClaimID:     opts.ClaimID.String(),
		StoragePath: key,
		MimeType:    optional(contentType),
		FileName:    optional(opts.FileName),
		SizeBytes:   &size,
		Description: opts.Description,
		Order:       opts.Order,
	}
	if !opts.CapturedAt.IsZero() {
		capturedAt := opts.CapturedAt
		req.CapturedAt = &capturedAt
	}
	if g := opts.Geolocation; g != nil {
		req.Latitude = &g.Latitude
		req.Longitude = &g.Longitude
		req.AccuracyMeters = g.AccuracyMeters
	}

	evidence, err := c.recorder.CreateEvidence(ctx, req)
	if err != nil {
		slog.Warn("Evidence metadata failed, object left for reconciliation", "key", key, "error", err)
		return nil, &UploadError{Step: StepMetadataPersist, Err: err}
	}

	signedURL, err := c.signer.SignedURL(ctx, key)
	if err != nil {
		return nil, &UploadError{Step: StepAccessURL, Err: err}
	}

	analyzeReq := models.AnalyzeEvidenceRequest{
		EvidenceID: evidence.ID.String(),
		ImageURL:   signedURL,
		ClaimID:    opts.ClaimID.String(),
	}
	result := &UploadResult{Evidence: evidence, SignedURL: signedURL}

	if opts.Mode == models.DeliveryQueued {
		if err := c.dispatcher.Dispatch(analyzeReq); err != nil {
			return nil, &UploadError{Step: StepDispatch, Err: err}
		}
		result.Analyzing = true
		result.Analysis = Pending()
		return result, nil
	}

	analysis, err := c.analyzer.AnalyzeSync(ctx, analyzeReq)
	if err != nil {
		slog.Warn("Synchronous analysis failed", "evidence_id", evidence.ID, "error", err)
		analysis = nil
	}
	result.Analysis = Resolved(analysis)
	return result, nil
}

func objectExtension(fileName, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".jpg"
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
