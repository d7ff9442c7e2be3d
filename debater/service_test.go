package debater

import (
	"context"
	"path/filepath"
	"testing"
	"time"

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
		Name:         filepath.Join(t.TempDir(), "debaters.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	require.NoError(t, Migrate(pool.DB()))
	return NewService(NewStore(pool), nil)
}

func validCreate() CreateRequest {
	return CreateRequest{
		Name:         "Socrates",
		Description:  "A relentless asker of questions.",
		Model:        "llama3",
		SystemPrompt: "You are Socrates. Question every premise before conceding it.",
		IsActive:     true,
	}
}

func TestService_Create(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "Socrates", d.Name)
	assert.True(t, d.IsActive)
	assert.WithinDuration(t, time.Now(), d.CreatedAt, 5*time.Second)

	got, err := svc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
}

func TestService_Create_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*CreateRequest)
		message string
	}{
		{"empty name", func(r *CreateRequest) { r.Name = "" }, "debater name is required"},
		{"short name", func(r *CreateRequest) { r.Name = "x" }, "at least 2 characters"},
		{"empty description", func(r *CreateRequest) { r.Description = "" }, "description is required"},
		{"short description", func(r *CreateRequest) { r.Description = "too short" }, "at least 10 characters"},
		{"empty model", func(r *CreateRequest) { r.Model = " " }, "model is required"},
		{"empty prompt", func(r *CreateRequest) { r.SystemPrompt = "" }, "system prompt is required"},
		{"short prompt", func(r *CreateRequest) { r.SystemPrompt = "be brief" }, "at least 20 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			_, err := svc.Create(ctx, req)
			require.Error(t, err)
			assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestService_Create_DuplicateName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	_, err = svc.Create(ctx, validCreate())
	require.Error(t, err)
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "already exists")
}

func TestService_List(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := validCreate()
	a.Name = "Zeno"
	_, err := svc.Create(ctx, a)
	require.NoError(t, err)

	b := validCreate()
	b.Name = "Aristotle"
	b.IsActive = false
	_, err = svc.Create(ctx, b)
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Aristotle", all[0].Name, "ordered by name")
	assert.Equal(t, "Zeno", all[1].Name)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Zeno", active[0].Name)
}

func TestService_Update(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	name := "Socrates of Athens"
	inactive := false
	updated, err := svc.UpdateDebater(ctx, d.ID, Update{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Socrates of Athens", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, d.Description, updated.Description, "untouched fields survive")

	// Keeping the same name is not a conflict.
	_, err = svc.UpdateDebater(ctx, d.ID, Update{Name: &name})
	require.NoError(t, err)
}

func TestService_Update_Rejections(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	other := validCreate()
	other.Name = "Plato"
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	taken := "Plato"
	_, err = svc.UpdateDebater(ctx, d.ID, Update{Name: &taken})
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))

	short := "x"
	_, err = svc.UpdateDebater(ctx, d.ID, Update{Name: &short})
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))

	_, err = svc.UpdateDebater(ctx, d.ID, Update{})
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))

	fresh := "Diogenes"
	_, err = svc.UpdateDebater(ctx, "missing", Update{Name: &fresh})
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}

func TestService_Delete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, d.ID))
	_, err = svc.Get(ctx, d.ID)
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))

	err = svc.Delete(ctx, "missing")
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))

	err = svc.Delete(ctx, "default")
	assert.Equal(t, types.ErrValidation, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "cannot delete the default debater")
}

func TestService_GetPersona(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	p, err := svc.GetPersona(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, p.ID)
	assert.Equal(t, d.Name, p.Name)
	assert.Equal(t, d.Model, p.Model)
	assert.Equal(t, d.SystemPrompt, p.SystemPrompt)

	_, err = svc.GetPersona(ctx, "missing")
	assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
}
