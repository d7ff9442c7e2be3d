package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eristic-ai/eristic/settings"
)

func TestSettingsRoundTrip(t *testing.T) {
	e := newEnv(t)

	status, envelope := e.do(t, http.MethodGet, "/api/settings/debate", nil)
	require.Equal(t, http.StatusOK, status)
	var defaults settings.DebateSettings
	decodeData(t, envelope, &defaults)
	assert.Equal(t, 3, defaults.NumRounds)
	assert.Equal(t, settings.TurnOrderFixed, defaults.TurnOrder)

	status, envelope = e.do(t, http.MethodPut, "/api/settings/debate", map[string]any{
		"numRounds": 7,
		"turnOrder": "random",
	})
	require.Equal(t, http.StatusOK, status)
	var saved settings.DebateSettings
	decodeData(t, envelope, &saved)
	assert.Equal(t, 7, saved.NumRounds)
	assert.Equal(t, settings.TurnOrderRandom, saved.TurnOrder)

	status, envelope = e.do(t, http.MethodPost, "/api/settings/debate/reset", nil)
	require.Equal(t, http.StatusOK, status)
	var reset settings.DebateSettings
	decodeData(t, envelope, &reset)
	assert.Equal(t, 3, reset.NumRounds)
}

func TestSettingsSet_Invalid(t *testing.T) {
	e := newEnv(t)

	status, envelope := e.do(t, http.MethodPut, "/api/settings/debate", map[string]any{
		"numRounds": 11,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", envelope.Error.Code)

	status, envelope = e.do(t, http.MethodPut, "/api/settings/debate", map[string]any{
		"turnOrder": "alphabetical",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, envelope.Error.Message, "turn order must be one of")
}
