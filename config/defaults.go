package config

import "time"

// DefaultConfig returns the configuration used when no file or environment
// overrides are present. Debate defaults mirror the bounds enforced by the
// orchestrator.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			Name:            "data/eristic.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			DefaultTTL: 24 * time.Hour,
			PoolSize:   10,
		},
		LLM: LLMConfig{
			Provider:    "ollama",
			BaseURL:     "http://localhost:11434",
			Model:       "llama2",
			Temperature: 0.7,
			MaxTokens:   0,
			Timeout:     2 * time.Minute,
			RateLimit:   0,
		},
		Debate: DebateConfig{
			NumDebaters:       2,
			NumRounds:         3,
			ResponseTimeout:   5,
			MaxResponseLength: 2000,
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "json",
			OutputPaths: []string{"stdout"},
		},
	}
}
