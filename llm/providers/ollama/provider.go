// Package ollama implements the llm.Provider interface against a local
// Ollama server. Messages are flattened into a single prompt for the
// /api/generate endpoint; /api/tags backs availability and model listing.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eristic-ai/eristic/llm"
	"github.com/eristic-ai/eristic/types"
)

// Config holds the configuration for the Ollama provider.
type Config struct {
	// BaseURL is the Ollama server address. Defaults to http://localhost:11434.
	BaseURL string

	// DefaultModel is used when a request does not name a model.
	DefaultModel string

	// Timeout is the HTTP client timeout. Defaults to 2m; local models can
	// take well over a minute on long debate transcripts.
	Timeout time.Duration
}

// Provider talks to a single Ollama server.
type Provider struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates an Ollama provider with the given config.
func New(cfg Config, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "llama2"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("component", "ollama_provider")),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return "ollama" }

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response        string `json:"response"`
	Model           string `json:"model"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Generate performs a synchronous completion against /api/generate.
func (p *Provider) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.DefaultModel
	}

	numPredict := req.MaxTokens
	if numPredict == 0 {
		numPredict = -1 // Ollama: unlimited
	}

	body := generateRequest{
		Model:  model,
		Prompt: flattenMessages(req.Messages),
		Stream: false,
		Options: generateOptions{
			Temperature: req.Temperature,
			NumPredict:  numPredict,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint("/api/generate"), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, llm.MapTransportError(err, p.Name())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := llm.ReadErrorMessage(resp.Body)
		return nil, llm.MapHTTPError(resp.StatusCode, msg, p.Name())
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "invalid response body").
			WithHTTPStatus(http.StatusBadGateway).
			WithRetryable(true).
			WithProvider(p.Name()).
			WithCause(err)
	}

	p.logger.Debug("generation complete",
		zap.String("model", genResp.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("prompt_tokens", genResp.PromptEvalCount),
		zap.Int("completion_tokens", genResp.EvalCount),
	)

	return &llm.GenerateResponse{
		Content: genResp.Response,
		Model:   genResp.Model,
		Tokens: types.TokenUsage{
			Prompt:     genResp.PromptEvalCount,
			Completion: genResp.EvalCount,
			Total:      genResp.PromptEvalCount + genResp.EvalCount,
		},
		CreatedAt: time.Now(),
	}, nil
}

// IsAvailable reports whether the Ollama server answers /api/tags.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint("/api/tags"), nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// ListModels returns the model names the server advertises via /api/tags.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint("/api/tags"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, llm.MapTransportError(err, p.Name())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := llm.ReadErrorMessage(resp.Body)
		return nil, llm.MapHTTPError(resp.StatusCode, msg, p.Name())
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "invalid response body").
			WithHTTPStatus(http.StatusBadGateway).
			WithProvider(p.Name()).
			WithCause(err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (p *Provider) endpoint(path string) string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + path
}

// flattenMessages renders role-tagged messages into the single prompt string
// the /api/generate endpoint expects.
func flattenMessages(messages []types.Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleSystem:
			parts = append(parts, "System: "+msg.Content)
		case types.RoleUser:
			parts = append(parts, "Human: "+msg.Content)
		case types.RoleAssistant:
			parts = append(parts, "Assistant: "+msg.Content)
		default:
			parts = append(parts, msg.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}
