// Package api assembles the HTTP surface of the eristic service: route
// registration and the middleware chain around the handlers.
package api

import (
	"net/http"

	"github.com/eristic-ai/eristic/api/handlers"
)

// Handlers carries the endpoint handlers the router mounts. Nil entries
// are skipped, so a deployment without Redis simply has no topic routes
// backed by a cache, and a missing settings service drops those routes.
type Handlers struct {
	Debates  *handlers.DebateHandler
	Debaters *handlers.DebaterHandler
	Topics   *handlers.TopicHandler
	Settings *handlers.SettingsHandler
	LLM      *handlers.LLMHandler
	Health   *handlers.HealthHandler
	Version  http.HandlerFunc
}

// NewRouter builds the route table.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	if h.Health != nil {
		mux.HandleFunc("GET /health", h.Health.HandleHealth)
		mux.HandleFunc("GET /healthz", h.Health.HandleHealthz)
		mux.HandleFunc("GET /ready", h.Health.HandleReady)
		mux.HandleFunc("GET /readyz", h.Health.HandleReady)
	}
	if h.Version != nil {
		mux.HandleFunc("GET /version", h.Version)
	}

	if h.Debates != nil {
		mux.HandleFunc("POST /api/debates", h.Debates.HandleCreate)
		mux.HandleFunc("GET /api/debates", h.Debates.HandleList)
		mux.HandleFunc("GET /api/debates/{id}", h.Debates.HandleGet)
		mux.HandleFunc("DELETE /api/debates/{id}", h.Debates.HandleDelete)
		mux.HandleFunc("POST /api/debates/{id}/start", h.Debates.HandleStart)
		mux.HandleFunc("POST /api/debates/{id}/advance", h.Debates.HandleAdvance)
		mux.HandleFunc("POST /api/debates/{id}/responses", h.Debates.HandleGenerateResponse)
		mux.HandleFunc("POST /api/debates/{id}/skip", h.Debates.HandleSkip)
		mux.HandleFunc("POST /api/debates/{id}/pause", h.Debates.HandlePause)
		mux.HandleFunc("POST /api/debates/{id}/resume", h.Debates.HandleResume)
		mux.HandleFunc("GET /api/debates/{id}/rounds", h.Debates.HandleListRounds)
		mux.HandleFunc("GET /api/debates/{id}/responses", h.Debates.HandleListResponses)
		mux.HandleFunc("POST /api/debates/{id}/rounds/{number}/summary", h.Debates.HandleRoundSummary)
		mux.HandleFunc("POST /api/debates/{id}/rounds/{number}/guidance", h.Debates.HandleNextRoundPrompt)
		mux.HandleFunc("POST /api/debates/{id}/summary", h.Debates.HandleFinalSummary)
	}

	if h.Debaters != nil {
		mux.HandleFunc("POST /api/debaters", h.Debaters.HandleCreate)
		mux.HandleFunc("GET /api/debaters", h.Debaters.HandleList)
		mux.HandleFunc("GET /api/debaters/{id}", h.Debaters.HandleGet)
		mux.HandleFunc("PUT /api/debaters/{id}", h.Debaters.HandleUpdate)
		mux.HandleFunc("DELETE /api/debaters/{id}", h.Debaters.HandleDelete)
	}

	if h.Topics != nil {
		mux.HandleFunc("POST /api/topics/generate", h.Topics.HandleGenerate)
		mux.HandleFunc("GET /api/topics", h.Topics.HandleList)
		mux.HandleFunc("GET /api/topics/{id}", h.Topics.HandleGet)
		mux.HandleFunc("DELETE /api/topics/{id}", h.Topics.HandleDelete)
	}

	if h.Settings != nil {
		mux.HandleFunc("GET /api/settings/debate", h.Settings.HandleGet)
		mux.HandleFunc("PUT /api/settings/debate", h.Settings.HandleSet)
		mux.HandleFunc("POST /api/settings/debate/reset", h.Settings.HandleReset)
	}

	if h.LLM != nil {
		mux.HandleFunc("GET /api/llm/status", h.LLM.HandleStatus)
		mux.HandleFunc("GET /api/llm/models", h.LLM.HandleModels)
		mux.HandleFunc("GET /api/llm/availability", h.LLM.HandleAvailability)
	}

	return mux
}
