// Package llm defines the provider-agnostic gateway to model-serving
// backends. A Provider turns a list of role-tagged messages into generated
// text with token-usage metadata. Concrete implementations live under
// llm/providers; selection by name happens in llm/factory.
package llm

import (
	"context"
	"time"

	"github.com/eristic-ai/eristic/types"
)

// GenerateRequest carries one generation call to a provider.
type GenerateRequest struct {
	// Model overrides the provider's default model when non-empty.
	Model string `json:"model,omitempty"`

	// Messages is the ordered conversation context.
	Messages []types.Message `json:"messages"`

	// Temperature controls sampling randomness.
	Temperature float32 `json:"temperature,omitempty"`

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// GenerateResponse is the uniform result of a generation call.
type GenerateResponse struct {
	Content   string           `json:"content"`
	Model     string           `json:"model"`
	Tokens    types.TokenUsage `json:"tokens"`
	CreatedAt time.Time        `json:"created_at"`
}

// Provider is the capability interface every LLM backend implements.
// Adding a backend means adding an implementation and a factory case,
// never changing call sites.
type Provider interface {
	// Generate performs a synchronous completion. Failures carry a
	// *types.Error with a provider-error code.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// IsAvailable reports whether the backend is reachable.
	IsAvailable(ctx context.Context) bool

	// ListModels returns the model names the backend advertises.
	ListModels(ctx context.Context) ([]string, error)

	// Name returns the provider's unique identifier.
	Name() string
}
