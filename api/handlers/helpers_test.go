package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eristic-ai/eristic/api"
	"github.com/eristic-ai/eristic/api/handlers"
	"github.com/eristic-ai/eristic/config"
	"github.com/eristic-ai/eristic/debate"
	"github.com/eristic-ai/eristic/debater"
	"github.com/eristic-ai/eristic/internal/database"
	"github.com/eristic-ai/eristic/settings"
	"github.com/eristic-ai/eristic/testutil/mocks"
	"github.com/eristic-ai/eristic/topic"
)

// env is a fully wired API over sqlite and a mock provider.
type env struct {
	server   *httptest.Server
	provider *mocks.MockProvider
	debaters *debater.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	pool, err := database.Open(config.DatabaseConfig{
		Driver:       "sqlite",
		Name:         filepath.Join(t.TempDir(), "api.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	require.NoError(t, debate.Migrate(pool.DB()))
	require.NoError(t, debater.Migrate(pool.DB()))
	require.NoError(t, topic.Migrate(pool.DB()))
	require.NoError(t, settings.Migrate(pool.DB()))

	provider := mocks.NewMockProvider().WithResponse("A substantive argument.")

	defaults := config.DebateConfig{
		NumDebaters:       2,
		NumRounds:         3,
		ResponseTimeout:   5,
		MaxResponseLength: 2000,
	}

	debaterSvc := debater.NewService(debater.NewStore(pool), nil)
	store := debate.NewStore(pool)
	orchestrator := debate.NewOrchestrator(store, debaterSvc, provider, "mock-model", debate.Options{
		Defaults:    defaults,
		Temperature: 0.7,
	})
	moderator := debate.NewModerator(store, debaterSvc, provider, "mock-model", debate.Options{})
	topicSvc := topic.NewService(topic.NewStore(pool), nil, debaterSvc, provider, topic.Options{
		DefaultModel: "mock-model",
	})
	settingsSvc := settings.NewService(pool, defaults, nil)

	health := handlers.NewHealthHandler(nil)
	health.RegisterCheck("database", func(ctx context.Context) error { return pool.Ping(ctx) })

	mux := api.NewRouter(api.Handlers{
		Debates:  handlers.NewDebateHandler(orchestrator, moderator, nil),
		Debaters: handlers.NewDebaterHandler(debaterSvc, nil),
		Topics:   handlers.NewTopicHandler(topicSvc, nil),
		Settings: handlers.NewSettingsHandler(settingsSvc, nil),
		LLM:      handlers.NewLLMHandler(provider, nil),
		Health:   health,
		Version:  health.HandleVersion("test", "", ""),
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &env{server: srv, provider: provider, debaters: debaterSvc}
}

// seedDebaters creates n personas and returns their ids.
func (e *env) seedDebaters(t *testing.T, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		d, err := e.debaters.Create(context.Background(), debater.CreateRequest{
			Name:         fmt.Sprintf("Debater %d", i+1),
			Description:  "A persona used in handler tests.",
			Model:        "mock-model",
			SystemPrompt: fmt.Sprintf("You are debater %d, a skilled debater.", i+1),
			IsActive:     true,
		})
		require.NoError(t, err)
		ids[i] = d.ID
	}
	return ids
}

// do sends a request and decodes the response envelope.
func (e *env) do(t *testing.T, method, path string, body any) (int, handlers.Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope handlers.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

// data re-marshals the envelope data into dst.
func decodeData(t *testing.T, envelope handlers.Response, dst any) {
	t.Helper()
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}

// createDebate creates a debate over the API and returns it.
func (e *env) createDebate(t *testing.T, participantIDs []string, numRounds int) debate.Debate {
	t.Helper()
	status, envelope := e.do(t, http.MethodPost, "/api/debates", map[string]any{
		"topic":          "Should cities ban private cars from their centers?",
		"participantIds": participantIDs,
		"settings": map[string]any{
			"numRounds":         numRounds,
			"responseTimeout":   5,
			"maxResponseLength": 2000,
		},
	})
	require.Equal(t, http.StatusCreated, status)
	var d debate.Debate
	decodeData(t, envelope, &d)
	return d
}
