// =============================================================================
// Eristic configuration loader
// =============================================================================
// Unified configuration loading: YAML file + environment variable overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("ERISTIC").
//	    Load()
//
// Precedence: defaults → YAML file → environment variables.
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration for the eristic service.
type Config struct {
	// Server holds HTTP server settings.
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Database holds relational storage settings.
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`

	// Redis holds topic-cache settings.
	Redis RedisConfig `yaml:"redis" env:"REDIS"`

	// LLM holds provider settings.
	LLM LLMConfig `yaml:"llm" env:"LLM"`

	// Debate holds default debate settings applied when a request omits them.
	Debate DebateConfig `yaml:"debate" env:"DEBATE"`

	// Log holds logging settings.
	Log LogConfig `yaml:"log" env:"LOG"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Listen address, e.g. ":8080".
	Addr string `yaml:"addr" env:"ADDR"`
	// Read timeout.
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	// Write timeout. Must exceed the longest expected LLM call.
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	// Idle timeout.
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	// Graceful shutdown timeout.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig holds relational storage settings.
type DatabaseConfig struct {
	// Driver: sqlite, postgres, mysql.
	Driver string `yaml:"driver" env:"DRIVER"`
	// Host (postgres/mysql).
	Host string `yaml:"host" env:"HOST"`
	// Port (postgres/mysql).
	Port int `yaml:"port" env:"PORT"`
	// User name.
	User string `yaml:"user" env:"USER"`
	// Password.
	Password string `yaml:"password" env:"PASSWORD"`
	// Database name, or file path for sqlite.
	Name string `yaml:"name" env:"NAME"`
	// SSL mode (postgres).
	SSLMode string `yaml:"ssl_mode" env:"SSL_MODE"`
	// Maximum open connections.
	MaxOpenConns int `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	// Maximum idle connections.
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	// Maximum connection lifetime.
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// RedisConfig holds topic-cache settings.
type RedisConfig struct {
	// Enabled toggles the redis-backed topic cache.
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Address, e.g. "localhost:6379".
	Addr string `yaml:"addr" env:"ADDR"`
	// Password.
	Password string `yaml:"password" env:"PASSWORD"`
	// Database number.
	DB int `yaml:"db" env:"DB"`
	// Default TTL for cached topic content.
	DefaultTTL time.Duration `yaml:"default_ttl" env:"DEFAULT_TTL"`
	// Connection pool size.
	PoolSize int `yaml:"pool_size" env:"POOL_SIZE"`
}

// LLMConfig holds provider settings. Provider selection happens once at
// startup; an unsupported provider name is a fatal configuration error.
type LLMConfig struct {
	// Provider name: ollama.
	Provider string `yaml:"provider" env:"PROVIDER"`
	// Base URL of the model-serving backend.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// Default model used when a persona does not name one.
	Model string `yaml:"model" env:"MODEL"`
	// Sampling temperature.
	Temperature float32 `yaml:"temperature" env:"TEMPERATURE"`
	// Maximum tokens per generation. Zero means provider default.
	MaxTokens int `yaml:"max_tokens" env:"MAX_TOKENS"`
	// Request timeout.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// Requests per second allowed against the backend. Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit" env:"RATE_LIMIT"`
}

// DebateConfig holds default debate settings applied when a create request
// omits them. Bounds match the orchestrator's validation.
type DebateConfig struct {
	// Default number of debaters (2-5).
	NumDebaters int `yaml:"num_debaters" env:"NUM_DEBATERS"`
	// Default number of rounds (1-10).
	NumRounds int `yaml:"num_rounds" env:"NUM_ROUNDS"`
	// Default per-response timeout in minutes (1-60).
	ResponseTimeout int `yaml:"response_timeout" env:"RESPONSE_TIMEOUT"`
	// Default maximum response length in characters (100-5000).
	MaxResponseLength int `yaml:"max_response_length" env:"MAX_RESPONSE_LENGTH"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, console.
	Format string `yaml:"format" env:"FORMAT"`
	// Output paths.
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// Loader loads configuration with builder-style options.
type Loader struct {
	configPath string
	envPrefix  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{envPrefix: "ERISTIC"}
}

// WithConfigPath sets the YAML config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// Load loads configuration with precedence: defaults → file → env.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file. A missing file is not an
// error; defaults remain in effect.
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// setFieldsFromEnv recursively applies ERISTIC_* environment variables to
// fields carrying an `env` tag.
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// Comma-separated string slices only.
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads configuration and panics on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Addr == "" {
		errs = append(errs, "server addr must not be empty")
	}

	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("unsupported database driver: %s", c.Database.Driver))
	}

	if c.LLM.Provider == "" {
		errs = append(errs, "llm provider must not be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, "llm temperature must be between 0 and 2")
	}

	if c.Debate.NumDebaters < 2 || c.Debate.NumDebaters > 5 {
		errs = append(errs, "debate num_debaters must be between 2 and 5")
	}
	if c.Debate.NumRounds < 1 || c.Debate.NumRounds > 10 {
		errs = append(errs, "debate num_rounds must be between 1 and 10")
	}
	if c.Debate.ResponseTimeout < 1 || c.Debate.ResponseTimeout > 60 {
		errs = append(errs, "debate response_timeout must be between 1 and 60 minutes")
	}
	if c.Debate.MaxResponseLength < 100 || c.Debate.MaxResponseLength > 5000 {
		errs = append(errs, "debate max_response_length must be between 100 and 5000 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// DSN returns the database connection string for the configured driver.
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
		)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true",
			d.User, d.Password, d.Host, d.Port, d.Name,
		)
	case "sqlite":
		return d.Name
	default:
		return ""
	}
}
