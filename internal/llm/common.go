package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type HarmCategory string

const (
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

type BlockThreshold string

const (
	BlockLowAndAbove    BlockThreshold = "BLOCK_LOW_AND_ABOVE"
	BlockMediumAndAbove BlockThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	BlockOnlyHigh       BlockThreshold = "BLOCK_ONLY_HIGH"
	BlockNone           BlockThreshold = "BLOCK_NONE"
)

// GenerationConfig - параметры сэмплирования, одинаковые для всех запросов
type GenerationConfig struct {
	Temperature     float32
	TopK            int32
	TopP            float32
	MaxOutputTokens int32
}

type SafetySetting struct {
	Category  HarmCategory
	Threshold BlockThreshold
}

type Message struct {
	Role    string
	Content string
}

// ChatRequest is one turn of a chat session: prior history plus the new prompt.
type ChatRequest struct {
	History    []Message
	Prompt     string
	Generation GenerationConfig
	Safety     []SafetySetting
}

func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.9,
		TopK:            1,
		TopP:            1,
		MaxOutputTokens: 2048,
	}
}

func DefaultSafetySettings() []SafetySetting {
	return []SafetySetting{
		{Category: HarmCategoryHarassment, Threshold: BlockLowAndAbove},
		{Category: HarmCategoryHateSpeech, Threshold: BlockMediumAndAbove},
		{Category: HarmCategorySexuallyExplicit, Threshold: BlockMediumAndAbove},
		{Category: HarmCategoryDangerousContent, Threshold: BlockMediumAndAbove},
	}
}

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
	kind       error
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.kind)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

// IsRateLimit сообщает, что провайдер ответил 429
func IsRateLimit(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests
	}
	return errors.Is(err, ErrRateLimit)
}

func HandleHTTPError(statusCode int, body []byte, logger *zap.Logger, provider string) error {
	se := &StatusError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    parseErrorMessage(body),
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		se.kind = ErrAuthFailed
	case http.StatusTooManyRequests:
		se.kind = ErrRateLimit
	default:
		se.kind = ErrRequestFailed
	}

	logger.Error(provider+" request failed",
		zap.Int("status", statusCode),
		zap.String("body", string(body)),
	)
	return se
}

// parseErrorMessage достаёт error.message из тела ответа; google и openai-подобные API отдают одинаковую форму
func parseErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func DoRequest(client *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	return body, resp.StatusCode, nil
}
