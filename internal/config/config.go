// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	// Provider selects the oracle backend: "gemini" or "openai".
	Provider string `envconfig:"SIM_PROVIDER" default:"gemini"`

	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	ModelName     string `envconfig:"SIM_MODEL"`

	SeedPath string `envconfig:"SIM_SEED_PATH" default:"resources/world_gen/world_seed.json"`
	SavePath string `envconfig:"SIM_SAVE_PATH" default:"world_state.sav"`

	BatchSize         int  `envconfig:"SIM_BATCH_SIZE" default:"15"`
	MaxWorkers        int  `envconfig:"SIM_MAX_WORKERS" default:"5"`
	TickMinutes       int  `envconfig:"SIM_TICK_MINUTES" default:"5"`
	OracleTimeoutSecs int  `envconfig:"SIM_ORACLE_TIMEOUT" default:"60"`
	Adaptive          bool `envconfig:"SIM_ADAPTIVE" default:"false"`
	NarrationEnabled  bool `envconfig:"SIM_NARRATION" default:"true"`

	LogLevel string `envconfig:"SIM_LOG_LEVEL" default:"info"`
}

// OracleTimeout as a duration.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.OracleTimeoutSecs) * time.Second
}

// LoadConfig reads .env (when present) and the process environment. A
// missing API key for the selected provider is an error: the simulation
// cannot run without its oracle.
func LoadConfig() (*Config, error) {
	// Best effort; the environment may already be populated.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
	default:
		return nil, fmt.Errorf("unknown oracle provider %q (want gemini or openai)", cfg.Provider)
	}

	return &cfg, nil
}
