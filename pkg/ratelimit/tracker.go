package ratelimit

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "enrich_rate_limit_remaining",
		Help: "Requests remaining in the current API rate limit window",
	})

	rateLimitExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrich_rate_limit_exhausted_total",
		Help: "Total number of responses that reported an exhausted rate limit window",
	})
)

// Tracker holds the most recent server-advertised rate limit state.
//
// It is pure state holding plus parsing: no wait or retry logic lives here.
// Safe for concurrent writers and readers; last writer wins, which is
// correct because every write reflects the most recent server truth.
type Tracker struct {
	mu     sync.RWMutex
	state  *State
	logger zerolog.Logger
}

// NewTracker creates a new rate limit tracker.
func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{logger: logger}
}

// Record parses rate limit headers from a response and atomically replaces
// the stored state. Responses without rate limit headers still replace the
// state: the tracker mirrors the latest response, nothing else.
func (t *Tracker) Record(headers http.Header) {
	state := ParseHeaders(headers)

	t.mu.Lock()
	t.state = &state
	t.mu.Unlock()

	if state.Remaining != Unknown {
		rateLimitRemaining.Set(float64(state.Remaining))
	}

	if state.Exhausted() {
		rateLimitExhaustedTotal.Inc()
		t.logger.Warn().
			Int("limit", state.Limit).
			Time("reset_at", state.ResetAt).
			Str("scope", state.Scope).
			Msg("API rate limit window exhausted")
		return
	}

	t.logger.Debug().
		Int("remaining", state.Remaining).
		Int("limit", state.Limit).
		Str("scope", state.Scope).
		Msg("Rate limit state updated")
}

// Current returns the most recent state. The second return is false before
// the first response has been recorded.
func (t *Tracker) Current() (State, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.state == nil {
		return State{}, false
	}
	return *t.state, true
}
