package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrich_retries_total",
		Help: "Total number of retry attempts after rate-limited responses",
	})

	retryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "enrich_retry_backoff_seconds",
		Help:    "Backoff duration before retry attempts",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	})

	retryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrich_retry_exhausted_total",
		Help: "Total number of requests that exhausted their retry attempts",
	})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts (including the first).
	MaxAttempts int

	// BackoffFloor is the minimum wait between attempts.
	BackoffFloor time.Duration

	// BackoffCeiling is the maximum wait between attempts.
	BackoffCeiling time.Duration

	// Multiplier is the exponential backoff factor.
	Multiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		BackoffFloor:   2 * time.Second,
		BackoffCeiling: 60 * time.Second,
		Multiplier:     2.0,
	}
}

// withRetry executes attempt up to cfg.MaxAttempts times, retrying only
// rate-limited failures. Waits grow exponentially from the floor to the
// ceiling and never decrease; a Retry-After hint larger than the computed
// backoff raises both the wait and the base for subsequent waits. Any
// non-retryable error is returned immediately.
func withRetry(ctx context.Context, cfg RetryConfig, logger zerolog.Logger, attempt func() error) error {
	backoff := cfg.BackoffFloor
	var lastErr error

	for n := 1; n <= cfg.MaxAttempts; n++ {
		err := attempt()
		if err == nil {
			if n > 1 {
				logger.Info().Int("attempt", n).Msg("Request succeeded after retry")
			}
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable() {
			return err
		}

		if n >= cfg.MaxAttempts {
			break
		}

		wait := backoff
		if apiErr.RetryAfter > wait {
			wait = apiErr.RetryAfter
			backoff = apiErr.RetryAfter
		}
		if wait > cfg.BackoffCeiling {
			wait = cfg.BackoffCeiling
		}

		retriesTotal.Inc()
		retryBackoffSeconds.Observe(wait.Seconds())
		logger.Warn().
			Int("attempt", n).
			Int("max_attempts", cfg.MaxAttempts).
			Dur("backoff", wait).
			Msg("Rate limited, retrying after backoff")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		backoff = time.Duration(float64(backoff) * cfg.Multiplier)
		if backoff > cfg.BackoffCeiling {
			backoff = cfg.BackoffCeiling
		}
	}

	retryExhaustedTotal.Inc()
	logger.Error().
		Int("max_attempts", cfg.MaxAttempts).
		Msg("Retry attempts exhausted")

	return fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, cfg.MaxAttempts, lastErr)
}
