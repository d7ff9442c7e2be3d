package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/eristic-ai/eristic/llm"
	"github.com/eristic-ai/eristic/types"
)

// LLMHandler reports provider status and available models.
type LLMHandler struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewLLMHandler creates an LLM status handler.
func NewLLMHandler(provider llm.Provider, logger *zap.Logger) *LLMHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMHandler{
		provider: provider,
		logger:   logger.With(zap.String("component", "llm_handler")),
	}
}

type providerStatus struct {
	Provider  string   `json:"provider"`
	Available bool     `json:"available"`
	Models    []string `json:"models,omitempty"`
}

// HandleStatus handles GET /api/llm/status.
func (h *LLMHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := providerStatus{
		Provider:  h.provider.Name(),
		Available: h.provider.IsAvailable(r.Context()),
	}
	if status.Available {
		models, err := h.provider.ListModels(r.Context())
		if err != nil {
			h.logger.Warn("listing models failed", zap.Error(err))
		} else {
			status.Models = models
		}
	}
	WriteSuccess(w, status)
}

// HandleModels handles GET /api/llm/models.
func (h *LLMHandler) HandleModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.provider.ListModels(r.Context())
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, map[string][]string{"models": models})
}

// HandleAvailability handles GET /api/llm/availability. Unlike HandleStatus
// it fails the request when the backend is down, for use as a probe.
func (h *LLMHandler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	if !h.provider.IsAvailable(r.Context()) {
		WriteError(w, types.NewError(types.ErrProviderUnavailable,
			"llm backend is not reachable").WithProvider(h.provider.Name()), h.logger)
		return
	}
	WriteSuccess(w, map[string]bool{"available": true})
}
