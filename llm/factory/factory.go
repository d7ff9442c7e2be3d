// Package factory maps provider names to llm.Provider constructors. It is
// the single place that knows about concrete provider packages, so call
// sites depend only on the llm.Provider interface.
package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/eristic-ai/eristic/config"
	"github.com/eristic-ai/eristic/llm"
	"github.com/eristic-ai/eristic/llm/providers/ollama"
)

// NewProviderFromConfig creates a Provider for the configured backend. An
// unsupported provider name is an error; callers treat it as fatal at
// startup. The returned provider is rate-limited when cfg.RateLimit is set.
func NewProviderFromConfig(cfg config.LLMConfig, logger *zap.Logger) (llm.Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var p llm.Provider
	switch cfg.Provider {
	case "ollama":
		p = ollama.New(ollama.Config{
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.Model,
			Timeout:      cfg.Timeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q (supported: %v)", cfg.Provider, SupportedProviders())
	}

	return llm.WithRateLimit(p, cfg.RateLimit), nil
}

// SupportedProviders returns the list of built-in provider names.
func SupportedProviders() []string {
	return []string{"ollama"}
}
