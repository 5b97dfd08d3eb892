package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kitbuilder587/prompt-relay/internal/domain"
	"github.com/kitbuilder587/prompt-relay/internal/llm"
	"github.com/kitbuilder587/prompt-relay/internal/metrics"
	"github.com/kitbuilder587/prompt-relay/internal/ratelimit"
)

// RelayService forwards a single prompt to the hosted model and returns its text.
type RelayService interface {
	Send(ctx context.Context, prompt string) (string, error)
}

type RelayConfig struct {
	APIKey      string
	Provider    string
	MinInterval time.Duration
	Generation  llm.GenerationConfig
	Safety      []llm.SafetySetting
}

type RelayServiceDeps struct {
	LLM     llm.Client
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Config  RelayConfig

	// если nil, создаётся из Config.MinInterval
	Throttle *ratelimit.Throttle
}

type relayService struct {
	llm      llm.Client
	throttle *ratelimit.Throttle
	logger   *zap.Logger
	metrics  *metrics.Metrics
	config   RelayConfig
}

func NewRelayService(deps RelayServiceDeps) RelayService {
	if deps.Config.Provider == "" {
		deps.Config.Provider = "gemini"
	}
	if deps.Config.Generation == (llm.GenerationConfig{}) {
		deps.Config.Generation = llm.DefaultGenerationConfig()
	}
	if deps.Config.Safety == nil {
		deps.Config.Safety = llm.DefaultSafetySettings()
	}
	if deps.Throttle == nil {
		deps.Throttle = ratelimit.New(ratelimit.Config{MinInterval: deps.Config.MinInterval})
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &relayService{
		llm:      deps.LLM,
		throttle: deps.Throttle,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		config:   deps.Config,
	}
}

func (s *relayService) Send(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	if s.metrics != nil {
		s.metrics.IncRequestsInFlight()
		defer s.metrics.DecRequestsInFlight()
	}

	if s.config.APIKey == "" {
		s.record("config_error", start)
		return "", domain.NewConfigurationError(domain.ErrMissingAPIKey)
	}

	logger := s.logger.With(zap.String("request_id", uuid.NewString()))

	waited, err := s.throttle.Wait(ctx)
	if err != nil {
		s.record("canceled", start)
		return "", err
	}
	if waited > 0 {
		logger.Info("rate limiting: waiting before next request",
			zap.Duration("wait", waited),
		)
	}
	if s.metrics != nil {
		s.metrics.RecordThrottleWait(waited)
	}

	req := llm.ChatRequest{
		History:    nil,
		Prompt:     prompt,
		Generation: s.config.Generation,
		Safety:     s.config.Safety,
	}

	logger.Info("sending request",
		zap.String("provider", s.config.Provider),
		zap.Int("prompt_len", len(prompt)),
	)

	llmStart := time.Now()
	text, err := s.llm.Chat(ctx, req)
	if err != nil {
		return "", s.translateError(logger, err, llmStart, start)
	}

	if s.metrics != nil {
		s.metrics.RecordLLMRequest(s.config.Provider, "success", time.Since(llmStart))
	}
	s.record("success", start)

	logger.Info("response received",
		zap.Int("response_len", len(text)),
		zap.Duration("duration", time.Since(start)),
	)

	return text, nil
}

// translateError сводит ошибку провайдера к RateLimitError или UpstreamError, без ретраев
func (s *relayService) translateError(logger *zap.Logger, err error, llmStart, start time.Time) error {
	if llm.IsRateLimit(err) {
		if s.metrics != nil {
			s.metrics.RecordLLMRequest(s.config.Provider, "rate_limited", time.Since(llmStart))
			s.metrics.RecordRateLimitHit(s.config.Provider)
		}
		s.record("rate_limited", start)

		logger.Error("rate limit exceeded, wait before making another request", zap.Error(err))
		return domain.NewRateLimitError(err)
	}

	if s.metrics != nil {
		s.metrics.RecordLLMRequest(s.config.Provider, "error", time.Since(llmStart))
	}
	s.record("upstream_error", start)

	logger.Error("relay request failed", zap.Error(err))
	return domain.NewUpstreamError(err)
}

func (s *relayService) record(status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordRequest(status, time.Since(start))
	}
}
