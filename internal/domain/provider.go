package domain

import "context"

// CompletionProvider is the interface for any text-completion backend.
type CompletionProvider interface {
	// Complete sends one turn of conversation and returns the normalized outcome.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionOutcome, error)
	// Name returns the provider's identifier (e.g., "groq", "gemini").
	Name() string
}
