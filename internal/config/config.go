package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// Config holds runtime configuration for a single pipeline run.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// Completion endpoint
	GitHubToken    string        `env:"GITHUB_TOKEN" validate:"required"`
	Endpoint       string        `env:"ENDPOINT" envDefault:"https://models.github.ai/inference" validate:"required,url"`
	Model          string        `env:"MODEL" envDefault:"openai/gpt-4.1-mini" validate:"required"`
	Temperature    float64       `env:"TEMPERATURE" envDefault:"0.7" validate:"gte=0,lte=2"`
	TopP           float64       `env:"TOP_P" envDefault:"1.0" validate:"gte=0,lte=1"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s" validate:"gt=0"`

	// Files
	MaxPromptChars int      `env:"MAX_PROMPT_CHARS" envDefault:"8000" validate:"gt=0"`
	InputFiles     []string `env:"INPUT_FILES" envDefault:"in.pdf,in.txt" envSeparator:"," validate:"required,min=1,dive,required"`
	OutputFile     string   `env:"OUTPUT_FILE" envDefault:"out.java" validate:"required"`

	// Completion cache
	CacheProvider string        `env:"CACHE_PROVIDER" envDefault:"none" validate:"oneof=none redis"` // "redis" reuses completions for identical prompts
	RedisAddr     string        `env:"REDIS_ADDR" validate:"required_if=CacheProvider redis"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"24h" validate:"gt=0"`

	// Run notifications
	NotifyProvider string `env:"NOTIFY_PROVIDER" envDefault:"none" validate:"oneof=none nats"`
	NATSURL        string `env:"NATS_URL" validate:"required_if=NotifyProvider nats"`
	NotifySubject  string `env:"NOTIFY_SUBJECT" envDefault:"summaries.completed"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from environment variables with defaults and
// validates it. A missing GITHUB_TOKEN is an error: there is no fallback key.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
