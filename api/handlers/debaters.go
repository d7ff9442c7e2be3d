package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/eristic-ai/eristic/debater"
)

// DebaterHandler serves the persona catalog endpoints.
type DebaterHandler struct {
	service *debater.Service
	logger  *zap.Logger
}

// NewDebaterHandler creates a debater handler.
func NewDebaterHandler(service *debater.Service, logger *zap.Logger) *DebaterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DebaterHandler{
		service: service,
		logger:  logger.With(zap.String("component", "debater_handler")),
	}
}

// HandleCreate handles POST /api/debaters.
func (h *DebaterHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req debater.CreateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	d, err := h.service.Create(r.Context(), req)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteCreated(w, d)
}

// HandleList handles GET /api/debaters. With ?active=true only personas
// available for new debates are returned.
func (h *DebaterHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var (
		debaters []debater.Debater
		err      error
	)
	if r.URL.Query().Get("active") == "true" {
		debaters, err = h.service.ListActive(r.Context())
	} else {
		debaters, err = h.service.List(r.Context())
	}
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, debaters)
}

// HandleGet handles GET /api/debaters/{id}.
func (h *DebaterHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, d)
}

// HandleUpdate handles PUT /api/debaters/{id}.
func (h *DebaterHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var upd debater.Update
	if err := DecodeJSONBody(w, r, &upd, h.logger); err != nil {
		return
	}

	d, err := h.service.UpdateDebater(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, d)
}

// HandleDelete handles DELETE /api/debaters/{id}.
func (h *DebaterHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, map[string]string{"id": r.PathValue("id")})
}
