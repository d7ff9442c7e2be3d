package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eristic-ai/eristic/debate"
)

func TestDebateLifecycle(t *testing.T) {
	e := newEnv(t)
	ids := e.seedDebaters(t, 2)

	d := e.createDebate(t, ids, 1)
	assert.Equal(t, debate.StatusActive, d.Status)
	assert.Len(t, d.Participants, 2)

	status, envelope := e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/start", nil)
	require.Equal(t, http.StatusOK, status)

	// Two advances complete the single round and the debate.
	for i := 0; i < 2; i++ {
		status, envelope = e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/advance", nil)
		require.Equal(t, http.StatusOK, status)
		var resp debate.Response
		decodeData(t, envelope, &resp)
		assert.Equal(t, i+1, resp.ResponseOrder)
		assert.Equal(t, "A substantive argument.", resp.Content)
	}

	status, envelope = e.do(t, http.MethodGet, "/api/debates/"+d.ID, nil)
	require.Equal(t, http.StatusOK, status)
	var final debate.Debate
	decodeData(t, envelope, &final)
	assert.Equal(t, debate.StatusCompleted, final.Status)

	// A further advance is rejected.
	status, envelope = e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/advance", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION", envelope.Error.Code)
}

func TestDebateCreate_Invalid(t *testing.T) {
	e := newEnv(t)
	ids := e.seedDebaters(t, 1)

	status, envelope := e.do(t, http.MethodPost, "/api/debates", map[string]any{
		"topic":          "One-sided debate",
		"participantIds": ids,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", envelope.Error.Code)

	// Unknown fields are rejected outright.
	status, envelope = e.do(t, http.MethodPost, "/api/debates", map[string]any{
		"topic":    "Bad payload",
		"speakers": ids,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, envelope.Error.Message, "invalid JSON body")
}

func TestDebateGet_NotFound(t *testing.T) {
	e := newEnv(t)

	status, envelope := e.do(t, http.MethodGet, "/api/debates/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestDebateSkipAndGenerateFor(t *testing.T) {
	e := newEnv(t)
	ids := e.seedDebaters(t, 2)
	d := e.createDebate(t, ids, 1)

	status, _ := e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/skip", nil)
	require.Equal(t, http.StatusOK, status)

	status, envelope := e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/responses",
		map[string]any{"debaterId": ids[1]})
	require.Equal(t, http.StatusOK, status)
	var resp debate.Response
	decodeData(t, envelope, &resp)
	assert.Equal(t, 2, resp.ResponseOrder)

	status, envelope = e.do(t, http.MethodGet, "/api/debates/"+d.ID+"/responses", nil)
	require.Equal(t, http.StatusOK, status)
	var responses []debate.Response
	decodeData(t, envelope, &responses)
	require.Len(t, responses, 2)
	assert.Equal(t, debate.SkipPlaceholder, responses[0].Content)

	// Missing debaterId is a 400.
	status, _ = e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/responses", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDebatePauseResume(t *testing.T) {
	e := newEnv(t)
	ids := e.seedDebaters(t, 2)
	d := e.createDebate(t, ids, 2)

	status, envelope := e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/pause", nil)
	require.Equal(t, http.StatusOK, status)
	var paused debate.Debate
	decodeData(t, envelope, &paused)
	assert.Equal(t, debate.StatusPaused, paused.Status)

	// Advancing a paused debate fails.
	status, _ = e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/advance", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, envelope = e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/resume", nil)
	require.Equal(t, http.StatusOK, status)
	var resumed debate.Debate
	decodeData(t, envelope, &resumed)
	assert.Equal(t, debate.StatusActive, resumed.Status)

	// Resuming an active debate fails.
	status, _ = e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/resume", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDebateModeratorEndpoints(t *testing.T) {
	e := newEnv(t)
	ids := e.seedDebaters(t, 2)
	d := e.createDebate(t, ids, 2)

	for i := 0; i < 2; i++ {
		status, _ := e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/advance", nil)
		require.Equal(t, http.StatusOK, status)
	}

	status, envelope := e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/rounds/1/summary", nil)
	require.Equal(t, http.StatusOK, status)
	var summary struct {
		RoundNumber int    `json:"roundNumber"`
		Summary     string `json:"summary"`
	}
	decodeData(t, envelope, &summary)
	assert.Equal(t, 1, summary.RoundNumber)
	assert.Equal(t, "A substantive argument.", summary.Summary)

	status, _ = e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/rounds/2/guidance", nil)
	assert.Equal(t, http.StatusOK, status)

	// Round numbers must be positive integers.
	status, _ = e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/rounds/zero/summary", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Finish the debate, then ask for the final summary.
	for i := 0; i < 2; i++ {
		status, _ = e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/advance", nil)
		require.Equal(t, http.StatusOK, status)
	}
	status, envelope = e.do(t, http.MethodPost, "/api/debates/"+d.ID+"/summary", nil)
	require.Equal(t, http.StatusOK, status)
	var finalSummary struct {
		Summary string `json:"summary"`
	}
	decodeData(t, envelope, &finalSummary)
	assert.NotEmpty(t, finalSummary.Summary)
}

func TestDebateDelete(t *testing.T) {
	e := newEnv(t)
	ids := e.seedDebaters(t, 2)
	d := e.createDebate(t, ids, 1)

	status, _ := e.do(t, http.MethodDelete, "/api/debates/"+d.ID, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, http.MethodGet, "/api/debates/"+d.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = e.do(t, http.MethodDelete, "/api/debates/"+d.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDebateList(t *testing.T) {
	e := newEnv(t)
	ids := e.seedDebaters(t, 2)
	e.createDebate(t, ids, 1)
	e.createDebate(t, ids, 2)

	status, envelope := e.do(t, http.MethodGet, "/api/debates", nil)
	require.Equal(t, http.StatusOK, status)
	var debates []debate.Debate
	decodeData(t, envelope, &debates)
	assert.Len(t, debates, 2)
}
