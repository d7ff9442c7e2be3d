package handlers

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/eristic-ai/eristic/debate"
	"github.com/eristic-ai/eristic/types"
)

// DebateHandler serves the debate lifecycle endpoints.
type DebateHandler struct {
	orchestrator *debate.Orchestrator
	moderator    *debate.Moderator
	logger       *zap.Logger
}

// NewDebateHandler creates a debate handler.
func NewDebateHandler(orchestrator *debate.Orchestrator, moderator *debate.Moderator, logger *zap.Logger) *DebateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DebateHandler{
		orchestrator: orchestrator,
		moderator:    moderator,
		logger:       logger.With(zap.String("component", "debate_handler")),
	}
}

// HandleCreate handles POST /api/debates.
func (h *DebateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req debate.CreateDebateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	d, err := h.orchestrator.CreateDebate(r.Context(), req)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteCreated(w, d)
}

// HandleList handles GET /api/debates.
func (h *DebateHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	debates, err := h.orchestrator.ListDebates(r.Context())
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, debates)
}

// HandleGet handles GET /api/debates/{id}.
func (h *DebateHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.orchestrator.GetDebate(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, d)
}

// HandleDelete handles DELETE /api/debates/{id}.
func (h *DebateHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.DeleteDebate(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, map[string]string{"id": r.PathValue("id")})
}

// HandleStart handles POST /api/debates/{id}/start.
func (h *DebateHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.orchestrator.StartDebate(r.Context(), id); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	d, err := h.orchestrator.GetDebate(r.Context(), id)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, d)
}

// HandleAdvance handles POST /api/debates/{id}/advance. It generates the
// next debater's response in turn order.
func (h *DebateHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	resp, err := h.orchestrator.AdvanceTurn(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, resp)
}

type generateRequest struct {
	DebaterID string `json:"debaterId"`
}

// HandleGenerateResponse handles POST /api/debates/{id}/responses. It
// generates a response for a named participant regardless of turn order.
func (h *DebateHandler) HandleGenerateResponse(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if req.DebaterID == "" {
		WriteError(w, types.NewValidationError("debaterId is required"), h.logger)
		return
	}

	resp, err := h.orchestrator.GenerateForParticipant(r.Context(), r.PathValue("id"), req.DebaterID)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, resp)
}

// HandleSkip handles POST /api/debates/{id}/skip.
func (h *DebateHandler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.orchestrator.SkipCurrentParticipant(r.Context(), id); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	d, err := h.orchestrator.GetDebate(r.Context(), id)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, d)
}

// HandlePause handles POST /api/debates/{id}/pause.
func (h *DebateHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orchestrator.PauseDebate)
}

// HandleResume handles POST /api/debates/{id}/resume.
func (h *DebateHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orchestrator.ResumeDebate)
}

func (h *DebateHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string) error) {
	id := r.PathValue("id")
	if err := op(r.Context(), id); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	d, err := h.orchestrator.GetDebate(r.Context(), id)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, d)
}

// HandleListRounds handles GET /api/debates/{id}/rounds.
func (h *DebateHandler) HandleListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.orchestrator.ListRounds(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, rounds)
}

// HandleListResponses handles GET /api/debates/{id}/responses.
func (h *DebateHandler) HandleListResponses(w http.ResponseWriter, r *http.Request) {
	responses, err := h.orchestrator.ListResponses(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, responses)
}

// HandleRoundSummary handles POST /api/debates/{id}/rounds/{number}/summary.
// The generated summary is persisted onto the round.
func (h *DebateHandler) HandleRoundSummary(w http.ResponseWriter, r *http.Request) {
	number, err := roundNumber(r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	summary, err := h.moderator.AttachRoundSummary(r.Context(), r.PathValue("id"), number)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, map[string]interface{}{"roundNumber": number, "summary": summary})
}

// HandleNextRoundPrompt handles POST /api/debates/{id}/rounds/{number}/guidance.
func (h *DebateHandler) HandleNextRoundPrompt(w http.ResponseWriter, r *http.Request) {
	number, err := roundNumber(r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	guidance, err := h.moderator.GenerateNextRoundPrompt(r.Context(), r.PathValue("id"), number)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, map[string]interface{}{"roundNumber": number, "guidance": guidance})
}

// HandleFinalSummary handles POST /api/debates/{id}/summary.
func (h *DebateHandler) HandleFinalSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.moderator.GenerateFinalSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, map[string]string{"summary": summary})
}

func roundNumber(r *http.Request) (int, error) {
	n, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || n < 1 {
		return 0, types.NewValidationError("round number must be a positive integer")
	}
	return n, nil
}
