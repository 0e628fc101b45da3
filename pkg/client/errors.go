package client

import (
	"errors"
	"fmt"
	"time"
)

// FailureKind classifies enrichment failures. The string values double as
// error codes on per-item failure results.
type FailureKind string

const (
	// FailureRateLimited is an HTTP 429. The only retryable kind.
	FailureRateLimited FailureKind = "rate_limited"

	// FailureAuthentication is an HTTP 401. Fatal: aborts the whole batch.
	FailureAuthentication FailureKind = "authentication_error"

	// FailureInsufficientCredits is an HTTP 402. Fatal: aborts the whole batch.
	FailureInsufficientCredits FailureKind = "insufficient_credits"

	// FailureTimeout is a transport timeout. Terminal for one item only.
	FailureTimeout FailureKind = "timeout"

	// FailureRequestError is any other transport error. Terminal for one item.
	FailureRequestError FailureKind = "request_error"

	// FailureMaxRetries marks an item whose rate-limited attempts were
	// exhausted. Wraps the last underlying error's message.
	FailureMaxRetries FailureKind = "max_retries_exceeded"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrMissingAPIKey is returned by New when no API key is configured.
	ErrMissingAPIKey = errors.New("api key is required")
)

// APIError is a classified failure from the enrichment API or its transport.
type APIError struct {
	Kind       FailureKind
	StatusCode int
	Code       string // error code from the structured error body, if any
	Message    string
	RetryAfter time.Duration // server-requested wait, on 429
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("triqai %s error (status %d): %s: %v",
			e.Kind, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("triqai %s error (status %d): %s",
		e.Kind, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the retry policy may re-attempt after this
// error. Only rate-limited failures are retryable; everything else either
// aborts the batch or collapses into a per-item failure result.
func (e *APIError) Retryable() bool {
	return e.Kind == FailureRateLimited
}

// Fatal reports whether this error must abort the whole batch instead of
// being wrapped into a per-item result.
func (e *APIError) Fatal() bool {
	return e.Kind == FailureAuthentication || e.Kind == FailureInsufficientCredits
}
