package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eristic-ai/eristic/config"
	"github.com/eristic-ai/eristic/internal/database"
	"github.com/eristic-ai/eristic/types"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	pool, err := database.Open(config.DatabaseConfig{
		Driver:       "sqlite",
		Name:         filepath.Join(t.TempDir(), "settings.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	require.NoError(t, Migrate(pool.DB()))

	return NewService(pool, config.DebateConfig{
		NumDebaters:       2,
		NumRounds:         3,
		ResponseTimeout:   5,
		MaxResponseLength: 2000,
	}, nil)
}

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func TestGet_Defaults(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, 2, got.NumDebaters)
	assert.Equal(t, 3, got.NumRounds)
	assert.Equal(t, 5, got.ResponseTimeout)
	assert.Equal(t, 2000, got.MaxResponseLength)
	assert.Equal(t, TurnOrderFixed, got.TurnOrder)

	// Empty user id maps to the shared default record.
	got, err = svc.Get(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultUserID, got.UserID)
}

func TestSet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Set(ctx, "alice", Update{
		NumRounds: intp(7),
		TurnOrder: strp(TurnOrderRandom),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, saved.NumRounds)
	assert.Equal(t, TurnOrderRandom, saved.TurnOrder)
	assert.Equal(t, 2, saved.NumDebaters, "untouched fields keep defaults")

	// Persisted, and survives a fresh read.
	got, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 7, got.NumRounds)
	assert.Equal(t, TurnOrderRandom, got.TurnOrder)

	// A second partial update merges onto the stored record.
	saved, err = svc.Set(ctx, "alice", Update{NumDebaters: intp(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, saved.NumDebaters)
	assert.Equal(t, 7, saved.NumRounds)

	// Other users are unaffected.
	got, err = svc.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 3, got.NumRounds)
}

func TestSet_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		upd  Update
	}{
		{"too many debaters", Update{NumDebaters: intp(6)}},
		{"too few debaters", Update{NumDebaters: intp(1)}},
		{"too many rounds", Update{NumRounds: intp(11)}},
		{"zero rounds", Update{NumRounds: intp(0)}},
		{"timeout too long", Update{ResponseTimeout: intp(61)}},
		{"response too short", Update{MaxResponseLength: intp(99)}},
		{"unknown turn order", Update{TurnOrder: strp("alphabetical")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Set(ctx, "alice", tt.upd)
			assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
		})
	}

	// Nothing was persisted by the rejected updates.
	got, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, got.NumRounds)
}

func TestReset(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Set(ctx, "alice", Update{NumRounds: intp(9)})
	require.NoError(t, err)

	got, err := svc.Reset(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, got.NumRounds)

	stored, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.NumRounds)

	// Resetting a user with no saved record is a no-op.
	_, err = svc.Reset(ctx, "bob")
	require.NoError(t, err)
}
