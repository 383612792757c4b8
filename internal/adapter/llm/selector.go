package llm

import (
	"fmt"
	"log/slog"

	"agent-gateway/internal/domain"
	"agent-gateway/internal/infra/config"
)

// Select resolves the active provider from credential presence, exactly once
// at startup: a primary credential wins, else the fallback credential, else
// the process cannot start. The resolved provider is injected into the
// dispatcher; there is no per-request override.
func Select(cfg config.LLMConfig, logger *slog.Logger) (domain.CompletionProvider, error) {
	var provider domain.CompletionProvider

	switch {
	case cfg.Primary.APIKey != "":
		provider = NewOpenAIProvider(cfg.Primary, logger)
	case cfg.Fallback.APIKey != "":
		provider = NewGeminiProvider(cfg.Fallback, logger)
	default:
		return nil, fmt.Errorf("%w: set GROQ_API_KEY or GEMINI_API_KEY", domain.ErrNoCredentials)
	}

	logger.Info("completion provider selected", "provider", provider.Name())

	if cfg.CircuitBreaker.Enabled {
		provider = NewCircuitBreakerProvider(provider, cfg.CircuitBreaker, logger)
	}

	return provider, nil
}
