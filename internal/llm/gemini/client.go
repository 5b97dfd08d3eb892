package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/prompt-relay/internal/llm"
)

const (
	DefaultModel   = "gemini-1.5-flash" // у flash выше лимиты бесплатного тарифа
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// finish reasons, при которых ответ считается заблокированным
var blockedFinishReasons = map[string]bool{
	"SAFETY":             true,
	"RECITATION":         true,
	"BLOCKLIST":          true,
	"PROHIBITED_CONTENT": true,
	"SPII":               true,
}

func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	body, err := json.Marshal(newGenerateRequest(req))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/models/" + url.PathEscape(c.model) + ":generateContent"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	c.logger.Debug("gemini request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(req.Prompt)),
	)

	respBody, statusCode, err := llm.DoRequest(c.client, httpReq)
	if err != nil {
		return "", err
	}

	if statusCode != http.StatusOK {
		return "", llm.HandleHTTPError(statusCode, respBody, c.logger, "gemini")
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if genResp.Error != nil {
		return "", fmt.Errorf("%w: %s", llm.ErrRequestFailed, genResp.Error.Message)
	}

	return extractText(&genResp)
}

func newGenerateRequest(req llm.ChatRequest) generateRequest {
	contents := make([]content, 0, len(req.History)+1)
	for _, m := range req.History {
		contents = append(contents, content{Role: m.Role, Parts: []part{{Text: m.Content}}})
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: req.Prompt}}})

	safety := make([]safetySetting, 0, len(req.Safety))
	for _, s := range req.Safety {
		safety = append(safety, safetySetting{Category: string(s.Category), Threshold: string(s.Threshold)})
	}

	return generateRequest{
		Contents: contents,
		GenerationConfig: &generationConfig{
			Temperature:     req.Generation.Temperature,
			TopK:            req.Generation.TopK,
			TopP:            req.Generation.TopP,
			MaxOutputTokens: req.Generation.MaxOutputTokens,
		},
		SafetySettings: safety,
	}
}

// extractText берёт текст первого кандидата, как это делает response.text() в SDK
func extractText(resp *generateResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked: %s", llm.ErrBlocked, resp.PromptFeedback.BlockReason)
		}
		return "", llm.ErrEmptyResponse
	}

	first := resp.Candidates[0]
	if blockedFinishReasons[first.FinishReason] {
		return "", fmt.Errorf("%w: candidate finished with %s", llm.ErrBlocked, first.FinishReason)
	}

	var sb strings.Builder
	for _, p := range first.Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

var _ llm.Client = (*Client)(nil)
