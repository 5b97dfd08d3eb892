package domain

import "errors"

// Kinds of relay failures. RelayError.Kind is always one of these.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrRateLimited   = errors.New("too many requests, please wait a moment and try again")
	ErrUpstream      = errors.New("upstream request failed")
)

var (
	ErrMissingAPIKey = errors.New("api key not found, set GOOGLE_API_KEY")
)

// RelayError - ошибка Send с видом и исходной причиной
type RelayError struct {
	Kind  error
	Cause error
}

func NewConfigurationError(cause error) *RelayError {
	return &RelayError{Kind: ErrConfiguration, Cause: cause}
}

func NewRateLimitError(cause error) *RelayError {
	return &RelayError{Kind: ErrRateLimited, Cause: cause}
}

func NewUpstreamError(cause error) *RelayError {
	return &RelayError{Kind: ErrUpstream, Cause: cause}
}

func (e *RelayError) Error() string {
	// для rate limit отдаём только совет пользователю, причина доступна через errors.As
	if e.Kind == ErrRateLimited || e.Cause == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Cause.Error()
}

func (e *RelayError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
