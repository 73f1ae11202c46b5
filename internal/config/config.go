package config

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Model       ModelConfig
	Grading     GradingConfig
	RedisConfig RedisConfig
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	CacheEnable bool   `env:"CACHE_ENABLE"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:"redis:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"24h"`
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	Timeout         time.Duration `env:"SERVER_TIMEOUT" envDefault:"2m"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"SERVER_MAX_BODY_BYTES" envDefault:"33554432"`
}

// ModelConfig selects the upstream provider. Only the credential of the
// selected provider has to be set, and a missing one is reported per
// request instead of failing startup.
type ModelConfig struct {
	Provider string        `env:"MODEL_PROVIDER" envDefault:"anthropic"`
	Timeout  time.Duration `env:"MODEL_TIMEOUT" envDefault:"90s"`

	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
}

type AnthropicConfig struct {
	APIKey  string `env:"ANTHROPIC_API_KEY"`
	BaseURL string `env:"ANTHROPIC_BASE_URL"`
	Model   string `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
}

type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model   string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
}

type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-pro"`
}

// GradingConfig picks a scoring policy preset. The pointer fields
// override the preset only when the variable is present.
type GradingConfig struct {
	Preset          string   `env:"GRADING_PRESET" envDefault:"graduated"`
	Temperature     *float64 `env:"GRADING_TEMPERATURE"`
	OmitTemperature bool     `env:"GRADING_OMIT_TEMPERATURE"`
	LabelImages     *bool    `env:"GRADING_LABEL_IMAGES"`
}

func Load() (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
