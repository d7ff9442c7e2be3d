package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eristic-ai/eristic/config"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	m, err := New(context.Background(), config.RedisConfig{
		Addr:       mr.Addr(),
		DefaultTTL: time.Minute,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	return m, mr
}

func TestNew_Unreachable(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestManager_GetSet(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	_, err := m.Get(ctx, "missing")
	assert.True(t, IsCacheMiss(err))

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	val, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	// Zero ttl falls back to the default TTL.
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)
	_, err = m.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))
}

func TestManager_JSON(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	type payload struct {
		Topic string `json:"topic"`
		Round int    `json:"round"`
	}

	require.NoError(t, m.SetJSON(ctx, "topic:1", payload{Topic: "AI safety", Round: 2}, time.Hour))

	var got payload
	require.NoError(t, m.GetJSON(ctx, "topic:1", &got))
	assert.Equal(t, payload{Topic: "AI safety", Round: 2}, got)

	assert.True(t, IsCacheMiss(m.GetJSON(ctx, "topic:2", &got)))
}

func TestManager_Delete(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	require.NoError(t, m.Delete(ctx, "k", "never-existed"))

	_, err := m.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))
}
