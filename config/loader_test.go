package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, 2, cfg.Debate.NumDebaters)
	assert.Equal(t, 3, cfg.Debate.NumRounds)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  addr: ":9090"
llm:
  provider: ollama
  model: mistral
  temperature: 0.3
debate:
  num_rounds: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 5, cfg.Debate.NumRounds)
	// Untouched values keep defaults.
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ERISTIC_SERVER_ADDR", ":7070")
	t.Setenv("ERISTIC_LLM_MODEL", "llama3")
	t.Setenv("ERISTIC_DEBATE_NUM_ROUNDS", "4")
	t.Setenv("ERISTIC_REDIS_ENABLED", "true")
	t.Setenv("ERISTIC_LLM_TIMEOUT", "90s")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, 4, cfg.Debate.NumRounds)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "90s", cfg.LLM.Timeout.String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "unsupported database driver",
			mutate:  func(c *Config) { c.Database.Driver = "oracle" },
			wantErr: "unsupported database driver",
		},
		{
			name:    "empty provider",
			mutate:  func(c *Config) { c.LLM.Provider = "" },
			wantErr: "llm provider",
		},
		{
			name:    "rounds out of bounds",
			mutate:  func(c *Config) { c.Debate.NumRounds = 11 },
			wantErr: "num_rounds",
		},
		{
			name:    "debaters out of bounds",
			mutate:  func(c *Config) { c.Debate.NumDebaters = 6 },
			wantErr: "num_debaters",
		},
		{
			name:    "response timeout out of bounds",
			mutate:  func(c *Config) { c.Debate.ResponseTimeout = 61 },
			wantErr: "response_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "eristic", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=eristic sslmode=disable", pg.DSN())

	my := DatabaseConfig{Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", Name: "eristic"}
	assert.Equal(t, "u:p@tcp(db:3306)/eristic?parseTime=true", my.DSN())

	lite := DatabaseConfig{Driver: "sqlite", Name: "data/eristic.db"}
	assert.Equal(t, "data/eristic.db", lite.DSN())

	other := DatabaseConfig{Driver: "oracle"}
	assert.Equal(t, "", other.DSN())
}
