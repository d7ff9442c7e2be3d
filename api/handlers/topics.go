package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/eristic-ai/eristic/topic"
)

// TopicHandler serves the topic content endpoints.
type TopicHandler struct {
	service *topic.Service
	logger  *zap.Logger
}

// NewTopicHandler creates a topic handler.
func NewTopicHandler(service *topic.Service, logger *zap.Logger) *TopicHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TopicHandler{
		service: service,
		logger:  logger.With(zap.String("component", "topic_handler")),
	}
}

type generateTopicRequest struct {
	Topic     string `json:"topic"`
	DebaterID string `json:"debaterId,omitempty"`
}

// HandleGenerate handles POST /api/topics/generate. An optional debaterId
// generates the content in that persona's voice.
func (h *TopicHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateTopicRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	item, err := h.service.GenerateWithDebater(r.Context(), req.Topic, req.DebaterID)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, item)
}

// HandleList handles GET /api/topics.
func (h *TopicHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, items)
}

// HandleGet handles GET /api/topics/{id}.
func (h *TopicHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, item)
}

// HandleDelete handles DELETE /api/topics/{id}.
func (h *TopicHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, map[string]string{"id": r.PathValue("id")})
}
