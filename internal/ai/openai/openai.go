// Package openai talks to OpenAI-compatible chat completion endpoints. The
// default configuration points at Groq.
package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FelipeCgrillo/liquidapp/internal/ai"
	"github.com/FelipeCgrillo/liquidapp/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

type Client struct {
	client          *openai.Client
	visionModel     string
	reportModel     string
	visionMaxTokens int
	reportMaxTokens int
}

func NewClient(cfg config.GroqConfig) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:          openai.NewClientWithConfig(clientCfg),
		visionModel:     cfg.VisionModel,
		reportModel:     cfg.ReportModel,
		visionMaxTokens: cfg.VisionMaxTokens,
		reportMaxTokens: cfg.ReportMaxTokens,
	}
}

// AnalyzeImage sends the image by URL and asks for a JSON object answer.
func (c *Client) AnalyzeImage(ctx context.Context, systemPrompt, userPrompt, imageURL string) (*ai.Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:     c.visionModel,
		MaxTokens: c.visionMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: userPrompt,
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	return c.create(ctx, req)
}

// Complete runs a text-only prompt against the report model.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (*ai.Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:     c.reportModel,
		MaxTokens: c.reportMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	return c.create(ctx, req)
}

func (c *Client) create(ctx context.Context, req openai.ChatCompletionRequest) (*ai.Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ai.ErrEmptyCompletion
	}

	slog.Info("Chat completion finished",
		"model", req.Model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	model := resp.Model
	if model == "" {
		model = req.Model
	}

	return &ai.Completion{
		Text:       resp.Choices[0].Message.Content,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
