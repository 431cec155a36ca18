package wizard

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/client"
	"github.com/google/uuid"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend returned %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// HTTPBackend implements Storage, EvidenceRecorder, URLSigner and Analyzer
// against the liquidapp API.
type HTTPBackend struct {
	client  *client.Client
	baseURL string
}

func NewHTTPBackend(baseURL string, timeout time.Duration) *HTTPBackend {
	c := client.New()
	c.SetTimeout(timeout)
	return &HTTPBackend{client: c, baseURL: strings.TrimRight(baseURL, "/")}
}

func (b *HTTPBackend) PutObject(ctx context.Context, claimID uuid.UUID, name string, data []byte, contentType string) (string, error) {
	req := b.client.R().
		SetContext(ctx).
		SetHeader(fiber.HeaderContentType, contentType).
		SetRawBody(data)

	resp, err := req.Put(b.baseURL + "/api/storage/evidencias/" + claimID.String() + "/" + url.PathEscape(name))
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	defer resp.Close()

	var out models.StoreObjectResponse
	if err := decode(resp, fiber.StatusOK, &out); err != nil {
		return "", err
	}
	return out.Key, nil
}

func (b *HTTPBackend) CreateEvidence(ctx context.Context, in models.CreateEvidenceRequest) (*models.Evidence, error) {
	resp, err := b.client.Post(b.baseURL+"/api/evidencias", client.Config{Ctx: ctx, Body: in})
	if err != nil {
		return nil, fmt.Errorf("failed to create evidence: %w", err)
	}
	defer resp.Close()

	var out models.CreateEvidenceResponse
	if err := decode(resp, fiber.StatusCreated, &out); err != nil {
		return nil, err
	}
	return out.Evidence, nil
}

func (b *HTTPBackend) SignedURL(ctx context.Context, key string) (string, error) {
	resp, err := b.client.Get(b.baseURL+"/api/storage/signed-url", client.Config{
		Ctx:   ctx,
		Param: map[string]string{"key": key},
	})
	if err != nil {
		return "", fmt.Errorf("failed to request signed url: %w", err)
	}
	defer resp.Close()

	var out models.SignedURLResponse
	if err := decode(resp, fiber.StatusOK, &out); err != nil {
		return "", err
	}
	return out.SignedURL, nil
}

func (b *HTTPBackend) AnalyzeSync(ctx context.Context, in models.AnalyzeEvidenceRequest) (*models.AnalysisResult, error) {
	resp, err := b.client.Post(b.baseURL+"/api/analizar-evidencia", client.Config{Ctx: ctx, Body: in})
	if err != nil {
		return nil, fmt.Errorf("failed to request analysis: %w", err)
	}
	defer resp.Close()

	var out models.AnalyzeEvidenceResponse
	if err := decode(resp, fiber.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Analysis, nil
}

func (b *HTTPBackend) AnalyzeQueued(ctx context.Context, in models.AnalyzeEvidenceRequest) error {
	resp, err := b.client.Post(b.baseURL+"/api/queue-analisis", client.Config{Ctx: ctx, Body: in})
	if err != nil {
		return fmt.Errorf("failed to queue analysis: %w", err)
	}
	defer resp.Close()

	var out models.QueuedAnalysisResponse
	return decode(resp, fiber.StatusAccepted, &out)
}

func (b *HTTPBackend) FindClient(ctx context.Context, rut string) (*models.Client, error) {
	resp, err := b.client.Get(b.baseURL+"/api/buscar-cliente", client.Config{
		Ctx:   ctx,
		Param: map[string]string{"rut": rut},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}
	defer resp.Close()

	var out models.ClientLookupResponse
	if err := decode(resp, fiber.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Client, nil
}

func decode(resp *client.Response, want int, out any) error {
	if resp.StatusCode() != want {
		apiErr := &APIError{Status: resp.StatusCode()}
		var body utils.ErrorResponse
		if err := resp.JSON(&body); err == nil {
			apiErr.Code = body.Code
			apiErr.Message = body.Error
		} else {
			apiErr.Message = string(resp.Body())
		}
		return apiErr
	}
	if err := resp.JSON(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
