package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/eristic-ai/eristic/settings"
)

// userIDHeader identifies the requesting user. Requests without it share
// the default settings record.
const userIDHeader = "X-User-ID"

// SettingsHandler serves the debate settings endpoints.
type SettingsHandler struct {
	service *settings.Service
	logger  *zap.Logger
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(service *settings.Service, logger *zap.Logger) *SettingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsHandler{
		service: service,
		logger:  logger.With(zap.String("component", "settings_handler")),
	}
}

// HandleGet handles GET /api/settings/debate.
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context(), r.Header.Get(userIDHeader))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, s)
}

// HandleSet handles PUT /api/settings/debate.
func (h *SettingsHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	var upd settings.Update
	if err := DecodeJSONBody(w, r, &upd, h.logger); err != nil {
		return
	}

	s, err := h.service.Set(r.Context(), r.Header.Get(userIDHeader), upd)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, s)
}

// HandleReset handles POST /api/settings/debate/reset.
func (h *SettingsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Reset(r.Context(), r.Header.Get(userIDHeader))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, s)
}
