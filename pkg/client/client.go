// Package client provides the Triqai enrichment API client with request
// pacing, rate limit tracking, bounded-retry, and batch scheduling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/triqai/enrich-go/pkg/cache"
	"github.com/triqai/enrich-go/pkg/models"
	"github.com/triqai/enrich-go/pkg/ratelimit"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrich_requests_total",
		Help: "Total enrichment requests by HTTP status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "enrich_request_duration_seconds",
		Help:    "Enrichment request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrich_failures_total",
		Help: "Total enrichment failures by kind",
	}, []string{"kind"})
)

// API endpoint constants.
const (
	DefaultBaseURL = "https://api.triqai.com"
	EnrichEndpoint = "/v1/transactions/enrich"
)

// Config holds the client configuration.
type Config struct {
	// APIKey authenticates requests via the X-API-Key header. Required.
	APIKey string

	// BaseURL overrides the API base URL (tests, staging).
	BaseURL string

	// MaxConcurrent bounds the number of in-flight batch requests.
	MaxConcurrent int

	// RequestDelay is the minimum spacing between consecutive dispatches.
	RequestDelay time.Duration

	// Timeout applies to each individual request; there is no batch deadline.
	Timeout time.Duration

	// MaxRetries is the attempt budget for rate-limited requests.
	MaxRetries int

	// Cache is an optional enrichment result cache. Nil disables caching.
	Cache *cache.Manager
}

// DefaultConfig returns the default client configuration.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:        apiKey,
		BaseURL:       DefaultBaseURL,
		MaxConcurrent: 5,
		RequestDelay:  100 * time.Millisecond,
		Timeout:       30 * time.Second,
		MaxRetries:    3,
	}
}

// Client is the Triqai enrichment API client. All batch requests share one
// connection-pooled transport; the rate limit tracker and pacing gate are
// the only mutable state shared between in-flight requests.
type Client struct {
	httpClient *http.Client
	config     Config
	retry      RetryConfig
	tracker    *ratelimit.Tracker
	pacer      *ratelimit.Pacer
	cache      *cache.Manager
	logger     zerolog.Logger
}

// New creates a new enrichment client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "triqai-client").Logger()

	tracker := ratelimit.NewTracker(logger)
	retry := DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxConcurrent * 2,
		MaxIdleConnsPerHost: cfg.MaxConcurrent,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		config:  cfg,
		retry:   retry,
		tracker: tracker,
		pacer:   ratelimit.NewPacer(tracker, cfg.RequestDelay, logger),
		cache:   cfg.Cache,
		logger:  logger,
	}, nil
}

// RateLimit returns the most recent server-advertised rate limit state.
// The second return is false before any response has been received.
func (c *Client) RateLimit() (ratelimit.State, bool) {
	return c.tracker.Current()
}

// Enrich enriches a single transaction.
//
// Rate-limited responses are retried per the retry configuration; timeouts,
// transport errors, structured server errors, and exhausted retries come
// back as a failure result, not an error. The returned error is non-nil only
// for fatal conditions (authentication, insufficient credits) and context
// cancellation.
func (c *Client) Enrich(ctx context.Context, txn models.Transaction) (*models.EnrichmentResult, error) {
	start := time.Now()
	defer func() {
		requestDuration.Observe(time.Since(start).Seconds())
	}()

	if c.cache != nil {
		cached, err := c.cache.Get(ctx, txn)
		if err == nil {
			c.logger.Debug().Str("title", txn.Title).Msg("Cache hit, skipping API call")
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Msg("Cache get error")
		}
	}

	var result *models.EnrichmentResult
	err := withRetry(ctx, c.retry, c.logger, func() error {
		r, attemptErr := c.enrichOnce(ctx, txn, start)
		if attemptErr != nil {
			return attemptErr
		}
		result = r
		return nil
	})

	if err != nil {
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.Fatal():
			failuresTotal.WithLabelValues(string(apiErr.Kind)).Inc()
			return nil, err
		case errors.As(err, &apiErr) && (apiErr.Kind == FailureTimeout || apiErr.Kind == FailureRequestError):
			failuresTotal.WithLabelValues(string(apiErr.Kind)).Inc()
			c.logger.Error().Err(err).Str("title", truncate(txn.Title, 50)).Msg("Request failed")
			result = failureResult(txn, string(apiErr.Kind), apiErr.Message, start)
		case errors.Is(err, ErrRetryExhausted):
			failuresTotal.WithLabelValues(string(FailureMaxRetries)).Inc()
			c.logger.Error().Str("title", truncate(txn.Title, 50)).Msg("Max retries exceeded")
			result = failureResult(txn, string(FailureMaxRetries), err.Error(), start)
		default:
			// Context cancellation or another non-classifiable error.
			return nil, err
		}
	}

	if c.cache != nil && result.Success {
		if cacheErr := c.cache.Set(ctx, txn, result); cacheErr != nil {
			c.logger.Warn().Err(cacheErr).Msg("Cache set error")
		}
	}

	return result, nil
}

// enrichOnce performs one enrichment attempt: pacing, transport, rate limit
// bookkeeping, and status classification. 429/401/402 and transport
// problems surface as *APIError; every other status yields a result.
func (c *Client) enrichOnce(ctx context.Context, txn models.Transaction, start time.Time) (*models.EnrichmentResult, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(txn.ToRequest())
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+EnrichEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, c.config.Timeout)
	}
	defer resp.Body.Close()

	// Rate limit headers are recorded on every response, errors included.
	c.tracker.Record(resp.Header)
	requestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	switch resp.StatusCode {
	case http.StatusOK:
		var success models.EnrichResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&success); decodeErr != nil {
			return nil, &APIError{
				Kind:       FailureRequestError,
				StatusCode: resp.StatusCode,
				Message:    "malformed success response",
				Err:        decodeErr,
			}
		}
		return &models.EnrichmentResult{
			Input:            txn,
			Success:          true,
			Partial:          success.Partial,
			Data:             &success.Data,
			RequestID:        success.Meta.RequestID,
			ProcessingTimeMs: msSince(start),
		}, nil

	case http.StatusTooManyRequests:
		apiErr := &APIError{
			Kind:       FailureRateLimited,
			StatusCode: resp.StatusCode,
			Message:    "rate limit exceeded",
		}
		if state, ok := c.tracker.Current(); ok {
			apiErr.RetryAfter = state.RetryAfter
		}
		return nil, apiErr

	case http.StatusUnauthorized:
		return nil, errorFromBody(resp, FailureAuthentication, "invalid or missing API key")

	case http.StatusPaymentRequired:
		return nil, errorFromBody(resp, FailureInsufficientCredits, "insufficient credits")

	default:
		// Structured server error: a failure for this item only.
		detail, requestID := decodeErrorBody(resp)
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("code", detail.Code).
			Str("title", truncate(txn.Title, 50)).
			Msg("Enrichment request error")
		return &models.EnrichmentResult{
			Input:            txn,
			Error:            &detail,
			RequestID:        requestID,
			ProcessingTimeMs: msSince(start),
		}, nil
	}
}

// classifyTransportError maps a transport failure to its failure kind.
// Caller-initiated cancellation passes through untouched so it propagates
// as an error rather than a per-item failure.
func classifyTransportError(err error, timeout time.Duration) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &APIError{
			Kind:    FailureTimeout,
			Message: fmt.Sprintf("request timed out after %s", timeout),
			Err:     err,
		}
	}
	return &APIError{
		Kind:    FailureRequestError,
		Message: err.Error(),
		Err:     err,
	}
}

// errorFromBody builds a fatal APIError, preferring the server's own error
// message when the body decodes.
func errorFromBody(resp *http.Response, kind FailureKind, fallback string) *APIError {
	detail, _ := decodeErrorBody(resp)
	msg := detail.Message
	if msg == "" {
		msg = fallback
	}
	return &APIError{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Code:       detail.Code,
		Message:    msg,
	}
}

// decodeErrorBody parses a structured error response. A body that does not
// decode yields a synthesized detail carrying the HTTP status.
func decodeErrorBody(resp *http.Response) (models.ErrorDetail, string) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil {
		var errResp models.ErrorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error.Code != "" {
			return errResp.Error, errResp.Meta.RequestID
		}
	}
	return models.ErrorDetail{
		Code:    "unexpected_status",
		Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
	}, ""
}

func failureResult(txn models.Transaction, code, message string, start time.Time) *models.EnrichmentResult {
	return &models.EnrichmentResult{
		Input: txn,
		Error: &models.ErrorDetail{
			Code:    code,
			Message: message,
		},
		ProcessingTimeMs: msSince(start),
	}
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
