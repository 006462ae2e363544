package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] for 401 and 403 responses.
	ErrAuthFailure          = errors.New("auth failure")
	ErrNoResponse           = errors.New("no response")
	ErrInvalidConfig        = errors.New("invalid request configuration")
	ErrDecode               = errors.New("decoding response text")
	ErrInvalidUTF8          = errors.New("response is not valid UTF-8")
	ErrStreamClosed         = errors.New("stream closed before it was read")
)

// Configuration errors reported by [Request.Validate].
var (
	ErrURLRequired     = errors.New("URL must be set")
	ErrVerbRequired    = errors.New("verb must be set")
	ErrUnsupportedVerb = errors.New("unsupported verb")
	ErrSSEAndStreaming = errors.New("cannot be SSE and streaming at the same time")
	ErrDataAndHandler  = errors.New("cannot have data and a data handler at the same time")
)

// UnexpectedStatusError describes a response outside the 2xx range.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

// ConfigError is a single request configuration problem.
type ConfigError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports every ConfigError as an [ErrInvalidConfig].
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// ValidationErrors represents a collection of configuration errors.
type ValidationErrors []*ConfigError

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes each ConfigError to [errors.Is] and [errors.As].
func (ve ValidationErrors) Unwrap() []error {
	errs := make([]error, len(ve))
	for i, e := range ve {
		errs[i] = e
	}
	return errs
}
