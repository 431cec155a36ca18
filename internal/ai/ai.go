// Package ai defines the model-provider contracts and the fixed prompts used
// to evaluate claim evidence.
package ai

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the provider answers without any content.
var ErrEmptyCompletion = errors.New("no content returned from AI")

// Completion is one model answer plus the metadata kept for audit.
type Completion struct {
	Text       string
	Model      string
	TokensUsed int
}

// VisionModel answers a prompt pair about one image reachable at imageURL.
type VisionModel interface {
	AnalyzeImage(ctx context.Context, systemPrompt, userPrompt, imageURL string) (*Completion, error)
}

// TextModel answers a plain prompt pair.
type TextModel interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error)
}
