package config

import (
	"fmt"

	"agent-gateway/internal/domain"
)

// Validate checks cfg for values that would break startup. Credential
// presence is deliberately not checked here; provider selection owns that
// decision and reports domain.ErrNoCredentials.
func Validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr must not be empty", domain.ErrConfigLoad)
	}
	for _, p := range []struct {
		label string
		cfg   ProviderConfig
	}{
		{"llm.primary", cfg.LLM.Primary},
		{"llm.fallback", cfg.LLM.Fallback},
	} {
		if p.cfg.Name == "" {
			return fmt.Errorf("%w: %s.name must not be empty", domain.ErrConfigLoad, p.label)
		}
		if p.cfg.Temperature < 0 || p.cfg.Temperature > 2 {
			return fmt.Errorf("%w: %s.temperature %v out of range [0, 2]", domain.ErrConfigLoad, p.label, p.cfg.Temperature)
		}
		if p.cfg.MaxTokens < 0 {
			return fmt.Errorf("%w: %s.max_tokens must not be negative", domain.ErrConfigLoad, p.label)
		}
	}
	if cfg.LLM.RequestTimeout < 0 {
		return fmt.Errorf("%w: llm.request_timeout must not be negative", domain.ErrConfigLoad)
	}
	return nil
}
