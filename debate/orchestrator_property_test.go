package debate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/eristic-ai/eristic/types"
)

// Any interleaving of advances and skips drives the debate through all
// rounds with contiguous response orders and a single terminal state.
func TestDebateProgression_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		numDebaters := rapid.IntRange(2, 5).Draw(rt, "debaters")
		numRounds := rapid.IntRange(1, 3).Draw(rt, "rounds")

		o, store := newTestOrchestrator(t, newSuccessProvider())
		ctx := context.Background()
		d := createTestDebate(t, o, numDebaters, numRounds)

		totalTurns := numDebaters * numRounds
		for i := 0; i < totalTurns; i++ {
			if rapid.Bool().Draw(rt, "skip") {
				require.NoError(t, o.SkipCurrentParticipant(ctx, d.ID))
			} else {
				resp, err := o.AdvanceTurn(ctx, d.ID)
				require.NoError(t, err)
				require.NotNil(t, resp)
			}
		}

		reloaded, err := store.GetDebateWithDetails(ctx, d.ID)
		require.NoError(t, err)
		require.Equal(t, StatusCompleted, reloaded.Status)
		require.Len(t, reloaded.Rounds, numRounds)

		for i, round := range reloaded.Rounds {
			require.Equal(t, i+1, round.RoundNumber)
			require.Equal(t, RoundCompleted, round.Status)
			require.Len(t, round.Responses, numDebaters)
			for j, resp := range round.Responses {
				require.Equal(t, j+1, resp.ResponseOrder)
			}
		}

		// Completed is terminal for every turn operation.
		_, err = o.AdvanceTurn(ctx, d.ID)
		require.Equal(t, types.ErrValidation, types.GetErrorCode(err))
		_, err = o.GenerateForParticipant(ctx, d.ID, "d1")
		require.Equal(t, types.ErrValidation, types.GetErrorCode(err))
		err = o.SkipCurrentParticipant(ctx, d.ID)
		require.Equal(t, types.ErrValidation, types.GetErrorCode(err))
	})
}
