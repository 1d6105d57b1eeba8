package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse marks a provider response that carried no choices or
// candidates at all, which is a malformed body rather than an empty answer.
var ErrEmptyResponse = errors.New("no response choices")

// UpstreamError is returned when a model provider call fails.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: upstream error: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(provider string, status int, err error) error {
	return &UpstreamError{Provider: provider, StatusCode: status, Err: err}
}

// IsUpstream reports whether err came from a provider call.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
