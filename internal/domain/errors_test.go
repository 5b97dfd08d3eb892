package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type statusErr struct{ code int }

func (e *statusErr) Error() string { return fmt.Sprintf("status %d: quota exhausted", e.code) }

func TestRelayError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *RelayError
		want string
	}{
		{
			name: "configuration keeps cause",
			err:  NewConfigurationError(ErrMissingAPIKey),
			want: "configuration error: api key not found, set GOOGLE_API_KEY",
		},
		{
			name: "rate limit hides cause",
			err:  NewRateLimitError(&statusErr{code: 429}),
			want: "too many requests, please wait a moment and try again",
		},
		{
			name: "upstream keeps original message",
			err:  NewUpstreamError(errors.New("connection reset by peer")),
			want: "upstream request failed: connection reset by peer",
		},
		{
			name: "nil cause",
			err:  &RelayError{Kind: ErrUpstream},
			want: "upstream request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestRelayError_Is(t *testing.T) {
	cause := &statusErr{code: 429}
	err := fmt.Errorf("send: %w", NewRateLimitError(cause))

	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.False(t, errors.Is(err, ErrUpstream))
	assert.False(t, errors.Is(err, ErrConfiguration))

	var se *statusErr
	if assert.True(t, errors.As(err, &se)) {
		assert.Equal(t, 429, se.code)
	}

	cfgErr := NewConfigurationError(ErrMissingAPIKey)
	assert.True(t, errors.Is(cfgErr, ErrConfiguration))
	assert.True(t, errors.Is(cfgErr, ErrMissingAPIKey))
}
