package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kitbuilder587/prompt-relay/internal/llm"
)

func textResponse(parts ...string) generateResponse {
	ps := make([]part, 0, len(parts))
	for _, p := range parts {
		ps = append(ps, part{Text: p})
	}
	return generateResponse{
		Candidates: []candidate{
			{Content: content{Role: "model", Parts: ps}, FinishReason: "STOP"},
		},
	}
}

func TestClient_Chat(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		response   interface{}
		statusCode int
		want       string
		wantErr    error
	}{
		{
			name:       "successful completion",
			response:   textResponse("Test response"),
			statusCode: http.StatusOK,
			want:       "Test response",
		},
		{
			name:       "multiple parts are concatenated",
			response:   textResponse("Hello, ", "world"),
			statusCode: http.StatusOK,
			want:       "Hello, world",
		},
		{
			name:       "unauthorized",
			response:   map[string]interface{}{"error": map[string]interface{}{"code": 401, "message": "API key not valid"}},
			statusCode: http.StatusUnauthorized,
			wantErr:    llm.ErrAuthFailed,
		},
		{
			name:       "rate limit",
			response:   map[string]interface{}{"error": map[string]interface{}{"code": 429, "message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}},
			statusCode: http.StatusTooManyRequests,
			wantErr:    llm.ErrRateLimit,
		},
		{
			name:       "server error",
			response:   map[string]interface{}{"error": map[string]interface{}{"code": 500, "message": "internal"}},
			statusCode: http.StatusInternalServerError,
			wantErr:    llm.ErrRequestFailed,
		},
		{
			name:       "error object with 200",
			response:   map[string]interface{}{"error": map[string]interface{}{"code": 400, "message": "bad"}},
			statusCode: http.StatusOK,
			wantErr:    llm.ErrRequestFailed,
		},
		{
			name:       "empty response",
			response:   generateResponse{},
			statusCode: http.StatusOK,
			wantErr:    llm.ErrEmptyResponse,
		},
		{
			name:       "prompt blocked",
			response:   generateResponse{PromptFeedback: &promptFeedback{BlockReason: "SAFETY"}},
			statusCode: http.StatusOK,
			wantErr:    llm.ErrBlocked,
		},
		{
			name: "candidate blocked",
			response: generateResponse{
				Candidates: []candidate{{FinishReason: "SAFETY"}},
			},
			statusCode: http.StatusOK,
			wantErr:    llm.ErrBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("x-goog-api-key") != "test-key" {
					t.Error("missing api key header")
				}
				if r.URL.Path != "/models/gemini-1.5-flash:generateContent" {
					t.Errorf("unexpected path %q", r.URL.Path)
				}

				w.WriteHeader(tt.statusCode)
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			client := New(Config{
				APIKey:  "test-key",
				BaseURL: server.URL,
				Timeout: 5 * time.Second,
			}, logger)

			result, err := client.Chat(context.Background(), llm.ChatRequest{
				Prompt:     "prompt",
				Generation: llm.DefaultGenerationConfig(),
				Safety:     llm.DefaultSafetySettings(),
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Chat() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Chat() unexpected error = %v", err)
				return
			}

			if result != tt.want {
				t.Errorf("Chat() = %q, want %q", result, tt.want)
			}
		})
	}
}

func TestClient_Chat_RequestBody(t *testing.T) {
	var got generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(textResponse("ok"))
	}))
	defer server.Close()

	client := New(Config{APIKey: "k", Model: "gemini-pro", BaseURL: server.URL + "/"}, zap.NewNop())

	_, err := client.Chat(context.Background(), llm.ChatRequest{
		Prompt:     "Why is the sky blue?",
		Generation: llm.DefaultGenerationConfig(),
		Safety:     llm.DefaultSafetySettings(),
	})
	require.NoError(t, err)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, []part{{Text: "Why is the sky blue?"}}, got.Contents[0].Parts)

	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, generationConfig{Temperature: 0.9, TopK: 1, TopP: 1, MaxOutputTokens: 2048}, *got.GenerationConfig)

	assert.Equal(t, []safetySetting{
		{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_LOW_AND_ABOVE"},
		{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
		{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
		{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	}, got.SafetySettings)
}

func TestClient_Chat_History(t *testing.T) {
	req := newGenerateRequest(llm.ChatRequest{
		History: []llm.Message{
			{Role: "user", Content: "hi"},
			{Role: "model", Content: "hello"},
		},
		Prompt: "next",
	})

	require.Len(t, req.Contents, 3)
	assert.Equal(t, "model", req.Contents[1].Role)
	assert.Equal(t, "next", req.Contents[2].Parts[0].Text)
	assert.Empty(t, req.SafetySettings)
}

func TestClient_Chat_StatusErrorCarriesCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded for quota metric","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	client := New(Config{APIKey: "k", BaseURL: server.URL}, zap.NewNop())
	_, err := client.Chat(context.Background(), llm.ChatRequest{Prompt: "p"})

	var se *llm.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, "Quota exceeded for quota metric", se.Message)
	assert.True(t, llm.IsRateLimit(err))
}

func TestClient_Chat_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := New(Config{APIKey: "k", BaseURL: server.URL}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, llm.ChatRequest{Prompt: "p"})
	assert.ErrorIs(t, err, llm.ErrRequestFailed)
}
