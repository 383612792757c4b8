package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrAgentNotFound = errors.New("agent not found")
	ErrConfigLoad    = errors.New("failed to load configuration")
	ErrNoCredentials = errors.New("no provider credential configured")

	// Provider failure classes. Every error returned by a CompletionProvider
	// wraps exactly one of these.
	ErrTransport = errors.New("provider transport failed")
	ErrRemote    = errors.New("provider returned error status")
	ErrDecode    = errors.New("provider response undecodable")
)

// ProviderError wraps a failure class sentinel with diagnostic context from
// a backend call. StatusCode and Body are populated for remote errors; Body
// also carries the raw payload for decode errors.
type ProviderError struct {
	Provider   string // provider name (e.g., "groq")
	Err        error  // one of ErrTransport, ErrRemote, ErrDecode
	Detail     string // human-readable detail
	StatusCode int    // HTTP status, remote errors only
	Body       string // raw response body, remote and decode errors
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (%d): %s", e.Provider, e.Err, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Err, e.Detail)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError creates a ProviderError for the given failure class.
func NewProviderError(provider string, class error, detail string) *ProviderError {
	return &ProviderError{Provider: provider, Err: class, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
