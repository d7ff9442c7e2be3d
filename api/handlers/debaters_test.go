package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eristic-ai/eristic/debater"
)

func TestDebaterCRUD(t *testing.T) {
	e := newEnv(t)

	status, envelope := e.do(t, http.MethodPost, "/api/debaters", map[string]any{
		"name":         "Socrates",
		"description":  "A relentless asker of questions.",
		"model":        "mock-model",
		"systemPrompt": "You are Socrates. Question every premise before conceding it.",
		"isActive":     true,
	})
	require.Equal(t, http.StatusCreated, status)
	var created debater.Debater
	decodeData(t, envelope, &created)
	assert.NotEmpty(t, created.ID)

	status, envelope = e.do(t, http.MethodGet, "/api/debaters/"+created.ID, nil)
	require.Equal(t, http.StatusOK, status)

	status, envelope = e.do(t, http.MethodPut, "/api/debaters/"+created.ID, map[string]any{
		"isActive": false,
	})
	require.Equal(t, http.StatusOK, status)
	var updated debater.Debater
	decodeData(t, envelope, &updated)
	assert.False(t, updated.IsActive)

	// Inactive personas drop out of the active listing.
	status, envelope = e.do(t, http.MethodGet, "/api/debaters?active=true", nil)
	require.Equal(t, http.StatusOK, status)
	var active []debater.Debater
	decodeData(t, envelope, &active)
	assert.Empty(t, active)

	status, envelope = e.do(t, http.MethodGet, "/api/debaters", nil)
	require.Equal(t, http.StatusOK, status)
	var all []debater.Debater
	decodeData(t, envelope, &all)
	assert.Len(t, all, 1)

	status, _ = e.do(t, http.MethodDelete, "/api/debaters/"+created.ID, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = e.do(t, http.MethodGet, "/api/debaters/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDebaterCreate_Invalid(t *testing.T) {
	e := newEnv(t)

	status, envelope := e.do(t, http.MethodPost, "/api/debaters", map[string]any{
		"name":         "X",
		"description":  "A persona with a too-short name.",
		"model":        "mock-model",
		"systemPrompt": "You are X, a curiously brief persona.",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", envelope.Error.Code)
}

func TestDebaterDelete_Default(t *testing.T) {
	e := newEnv(t)

	status, envelope := e.do(t, http.MethodDelete, "/api/debaters/default", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, envelope.Error.Message, "cannot delete the default debater")
}
