package services

import "errors"

var (
	// ErrValidation marks a malformed request. Nothing was written.
	ErrValidation = errors.New("validation error")
	// ErrNotConfigured means the model provider has no credentials.
	ErrNotConfigured = errors.New("AI provider not configured")
	// ErrExternalCall wraps a failed call to the model provider.
	ErrExternalCall = errors.New("AI provider call failed")
	// ErrPersistence wraps a storage or database failure.
	ErrPersistence  = errors.New("persistence failed")
	ErrNotFound     = errors.New("not found")
	ErrQueueFull    = errors.New("analysis queue is full")
	ErrUnauthorized = errors.New("user not authenticated")
)
