package debate

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eristic-ai/eristic/config"
	"github.com/eristic-ai/eristic/internal/database"
	"github.com/eristic-ai/eristic/llm"
	"github.com/eristic-ai/eristic/testutil/mocks"
	"github.com/eristic-ai/eristic/types"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	pm, err := database.Open(config.DatabaseConfig{
		Driver:       "sqlite",
		Name:         filepath.Join(t.TempDir(), "debate.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { pm.Close() })

	require.NoError(t, Migrate(pm.DB()))
	return NewStore(pm)
}

// fakePersonas is an in-memory PersonaSource.
type fakePersonas struct {
	personas map[string]*Persona
}

func newFakePersonas(ids ...string) *fakePersonas {
	f := &fakePersonas{personas: make(map[string]*Persona)}
	for _, id := range ids {
		f.personas[id] = &Persona{
			ID:           id,
			Name:         "Persona " + id,
			Model:        "mock-model",
			SystemPrompt: fmt.Sprintf("You are %s, a skilled debater.", id),
		}
	}
	return f
}

func (f *fakePersonas) GetPersona(_ context.Context, id string) (*Persona, error) {
	if p, ok := f.personas[id]; ok {
		return p, nil
	}
	return nil, types.NewNotFoundError("debater")
}

func testOptions() Options {
	return Options{
		Defaults: config.DebateConfig{
			NumDebaters:       2,
			NumRounds:         3,
			ResponseTimeout:   5,
			MaxResponseLength: 2000,
		},
		Temperature: 0.7,
	}
}

func newTestOrchestrator(t *testing.T, provider llm.Provider) (*Orchestrator, Store) {
	t.Helper()

	store := newTestStore(t)
	personas := newFakePersonas("d1", "d2", "d3", "d4", "d5", "mod")
	return NewOrchestrator(store, personas, provider, "mock-model", testOptions()), store
}

func newTestModerator(t *testing.T, store Store, provider llm.Provider) *Moderator {
	t.Helper()

	personas := newFakePersonas("d1", "d2", "d3", "d4", "d5", "mod")
	return NewModerator(store, personas, provider, "mock-model", testOptions())
}

// createTestDebate creates a debate with debaters d1..dN and the
// built-in moderator.
func createTestDebate(t *testing.T, o *Orchestrator, numDebaters, numRounds int) *Debate {
	t.Helper()

	ids := make([]string, numDebaters)
	for i := range ids {
		ids[i] = fmt.Sprintf("d%d", i+1)
	}
	d, err := o.CreateDebate(context.Background(), CreateDebateRequest{
		Topic:          "Should cities ban private cars from their centers?",
		ParticipantIDs: ids,
		ModeratorID:    DefaultModeratorID,
		Settings:       Settings{NumDebaters: numDebaters, NumRounds: numRounds, ResponseTimeout: 5, MaxResponseLength: 2000},
	})
	require.NoError(t, err)
	return d
}

func newSuccessProvider() *mocks.MockProvider {
	return mocks.NewMockProvider().WithResponse("A substantive argument.")
}
