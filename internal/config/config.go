package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	ErrInvalidInterval = errors.New("MIN_REQUEST_INTERVAL_MS must be positive")
	ErrInvalidTimeout  = errors.New("GEMINI_TIMEOUT_SEC must be positive")
	ErrMissingModel    = errors.New("GEMINI_MODEL must not be empty")
)

type Config struct {
	Gemini    GeminiConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Metrics   MetricsConfig
}

// GeminiConfig - APIKey может быть пустым, это проверяется при отправке, а не при загрузке
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type RateLimitConfig struct {
	MinInterval time.Duration
}

type LogConfig struct {
	Level string
}

type MetricsConfig struct {
	Addr string
}

func Load() (*Config, error) {
	cfg := &Config{
		Gemini: GeminiConfig{
			APIKey:  getEnvOrDefault("GOOGLE_API_KEY", os.Getenv("VITE_GOOGLE_API_KEY")),
			Model:   getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL: getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Timeout: time.Duration(getEnvIntOrDefault("GEMINI_TIMEOUT_SEC", 60)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			MinInterval: time.Duration(getEnvIntOrDefault("MIN_REQUEST_INTERVAL_MS", 4000)) * time.Millisecond,
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Addr: os.Getenv("METRICS_ADDR"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.RateLimit.MinInterval <= 0 {
		return ErrInvalidInterval
	}
	if c.Gemini.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Gemini.Model == "" {
		return ErrMissingModel
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
