package llm

import (
	"context"
	"errors"
)

var (
	ErrAuthFailed    = errors.New("authentication failed")
	ErrRequestFailed = errors.New("request failed")
	ErrEmptyResponse = errors.New("empty response")
	ErrRateLimit     = errors.New("rate limit exceeded")
	ErrBlocked       = errors.New("response blocked")
)

type Client interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}
