package client

import (
	"errors"
	"strings"
	"testing"
)

func TestAPIErrorClassification(t *testing.T) {
	tests := []struct {
		kind      FailureKind
		retryable bool
		fatal     bool
	}{
		{FailureRateLimited, true, false},
		{FailureAuthentication, false, true},
		{FailureInsufficientCredits, false, true},
		{FailureTimeout, false, false},
		{FailureRequestError, false, false},
		{FailureMaxRetries, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := &APIError{Kind: tt.kind}
			if got := err.Retryable(); got != tt.retryable {
				t.Errorf("Retryable() = %v, want %v", got, tt.retryable)
			}
			if got := err.Fatal(); got != tt.fatal {
				t.Errorf("Fatal() = %v, want %v", got, tt.fatal)
			}
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{
		Kind:       FailureAuthentication,
		StatusCode: 401,
		Message:    "invalid or missing API key",
	}
	msg := err.Error()
	if !strings.Contains(msg, "authentication_error") || !strings.Contains(msg, "401") {
		t.Errorf("Error() = %q, want kind and status included", msg)
	}
}

func TestAPIErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &APIError{Kind: FailureRequestError, Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is should reach the wrapped transport error")
	}

	var apiErr *APIError
	if !errors.As(error(err), &apiErr) || apiErr.Kind != FailureRequestError {
		t.Error("errors.As should recover the APIError")
	}
}
