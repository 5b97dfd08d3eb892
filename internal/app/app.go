package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kitbuilder587/prompt-relay/internal/config"
	"github.com/kitbuilder587/prompt-relay/internal/llm"
	"github.com/kitbuilder587/prompt-relay/internal/llm/gemini"
	"github.com/kitbuilder587/prompt-relay/internal/metrics"
	"github.com/kitbuilder587/prompt-relay/internal/ratelimit"
	"github.com/kitbuilder587/prompt-relay/internal/service"
)

type App struct {
	Relay    service.RelayService
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
	Config   *config.Config
}

// New wires the relay from cfg. Metrics go to reg; pass nil to use a private registry.
func New(cfg *config.Config, logger *zap.Logger, reg *prometheus.Registry) *App {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := metrics.New(reg)

	client := gemini.New(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
	}, logger.Named("gemini"))

	relay := service.NewRelayService(service.RelayServiceDeps{
		LLM:      client,
		Logger:   logger.Named("relay"),
		Metrics:  m,
		Throttle: ratelimit.New(ratelimit.Config{MinInterval: cfg.RateLimit.MinInterval}),
		Config: service.RelayConfig{
			APIKey:      cfg.Gemini.APIKey,
			Provider:    "gemini",
			MinInterval: cfg.RateLimit.MinInterval,
			Generation:  llm.DefaultGenerationConfig(),
			Safety:      llm.DefaultSafetySettings(),
		},
	})

	logger.Debug("relay configured",
		zap.String("model", cfg.Gemini.Model),
		zap.Duration("min_interval", cfg.RateLimit.MinInterval),
		zap.Bool("api_key_set", cfg.Gemini.APIKey != ""),
	)

	return &App{
		Relay:    relay,
		Metrics:  m,
		Gatherer: reg,
		Logger:   logger,
		Config:   cfg,
	}
}
