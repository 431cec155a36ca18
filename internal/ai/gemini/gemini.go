// Package gemini is the alternate vision and text provider. Several API keys
// can be configured; calls rotate across them and fail over on error.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/ai"
	"github.com/FelipeCgrillo/liquidapp/internal/config"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	Client     *genai.Client
	FlashModel *genai.GenerativeModel
	ProModel   *genai.GenerativeModel
	flashName  string
	proName    string
}

func NewGenAIClient(ctx context.Context, apiKey, flashModelName, proModelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai client init failed: %w", err)
	}

	flash := client.GenerativeModel(flashModelName)
	flash.ResponseMIMEType = "application/json"

	return &GeminiClient{
		Client:     client,
		FlashModel: flash,
		ProModel:   client.GenerativeModel(proModelName),
		flashName:  flashModelName,
		proName:    proModelName,
	}, nil
}

func (g *GeminiClient) generate(ctx context.Context, model *genai.GenerativeModel, modelName string, parts ...genai.Part) (*ai.Completion, error) {
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ai.ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("response part is not text, received %T", resp.Candidates[0].Content.Parts[0])
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &ai.Completion{
		Text:       sb.String(),
		Model:      modelName,
		TokensUsed: tokens,
	}, nil
}

const keyCooldown = time.Minute

// Provider adapts the key ring to the ai.VisionModel and ai.TextModel contracts.
type Provider struct {
	keys    *keyRing
	fetcher ai.ImageFetcher
}

// NewProvider creates one client per API key.
func NewProvider(ctx context.Context, cfg config.GeminiAPIConfig, fetcher ai.ImageFetcher) (*Provider, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, errors.New("no Gemini API keys configured")
	}

	clients := make([]*GeminiClient, 0, len(cfg.APIKeys))
	for i, key := range cfg.APIKeys {
		client, err := NewGenAIClient(ctx, key, cfg.FlashName, cfg.ProName)
		if err != nil {
			slog.Warn("Skipping Gemini client", "client_index", i, "error", err)
			continue
		}
		clients = append(clients, client)
	}
	if len(clients) == 0 {
		return nil, errors.New("no Gemini client could be initialized")
	}

	return &Provider{keys: newKeyRing(clients, keyCooldown), fetcher: fetcher}, nil
}

// AnalyzeImage downloads the image once, then asks the flash model with failover.
func (p *Provider) AnalyzeImage(ctx context.Context, systemPrompt, userPrompt, imageURL string) (*ai.Completion, error) {
	data, mimeType, err := p.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = detectImageMIMEType(data)
	}

	var result *ai.Completion
	err = p.keys.do(ctx, func(client *GeminiClient) error {
		resp, err := client.generate(ctx, client.FlashModel, client.flashName,
			genai.Text(systemPrompt),
			genai.Blob{MIMEType: mimeType, Data: data},
			genai.Text(userPrompt),
		)
		if err != nil {
			return err
		}
		result = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Provider) Complete(ctx context.Context, systemPrompt, userPrompt string) (*ai.Completion, error) {
	var result *ai.Completion
	err := p.keys.do(ctx, func(client *GeminiClient) error {
		resp, err := client.generate(ctx, client.ProModel, client.proName,
			genai.Text(systemPrompt),
			genai.Text(userPrompt),
		)
		if err != nil {
			return err
		}
		result = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Provider) Close() {
	p.keys.each(func(c *GeminiClient) {
		if err := c.Client.Close(); err != nil {
			slog.Warn("failed to close Gemini client", "error", err)
		}
	})
}

// detectImageMIMEType detects the MIME type of an image based on magic bytes
func detectImageMIMEType(data []byte) string {
	if len(data) < 12 {
		return "image/jpeg"
	}

	switch {
	case data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
		return "image/png"
	case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "image/jpeg"
	case data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50:
		return "image/webp"
	case string(data[4:12]) == "ftypheic" || string(data[4:12]) == "ftypmif1":
		return "image/heic"
	}

	return "image/jpeg"
}
