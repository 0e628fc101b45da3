package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for request pacing.
var (
	pacingResetWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrich_pacing_reset_waits_total",
		Help: "Total number of dispatches delayed until the rate limit window reset",
	})

	pacingSpacingWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrich_pacing_spacing_waits_total",
		Help: "Total number of dispatches delayed by the minimum inter-request spacing",
	})
)

// resetBuffer is added on top of the advertised reset time to absorb clock
// skew between client and server.
const resetBuffer = 500 * time.Millisecond

// Pacer is the pacing gate consulted before every dispatch. It suspends the
// caller until the rate limit window has reset (when the tracker reports an
// exhausted window) and enforces a minimum spacing between consecutive
// dispatches.
//
// The whole read-decide-update sequence runs under one mutex so concurrent
// callers cannot let themselves through on stale timing. The last-dispatch
// time advances only when a request is actually about to be sent.
type Pacer struct {
	mu           sync.Mutex
	tracker      *Tracker
	spacing      time.Duration
	lastDispatch time.Time
	logger       zerolog.Logger
}

// NewPacer creates a pacing gate over the given tracker. spacing is the
// minimum delay between consecutive dispatches; zero disables spacing.
func NewPacer(tracker *Tracker, spacing time.Duration, logger zerolog.Logger) *Pacer {
	return &Pacer{
		tracker: tracker,
		spacing: spacing,
		logger:  logger,
	}
}

// Wait blocks until the caller may dispatch a request. Returns early with
// the context error when ctx is cancelled during a wait.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if state, ok := p.tracker.Current(); ok && state.Exhausted() && !state.ResetAt.IsZero() {
		wait := state.TimeUntilReset() + resetBuffer
		pacingResetWaitsTotal.Inc()
		p.logger.Warn().
			Dur("wait", wait).
			Time("reset_at", state.ResetAt).
			Msg("Rate limit reached, waiting for window reset")
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}

	if p.spacing > 0 && !p.lastDispatch.IsZero() {
		if elapsed := time.Since(p.lastDispatch); elapsed < p.spacing {
			pacingSpacingWaitsTotal.Inc()
			if err := sleep(ctx, p.spacing-elapsed); err != nil {
				return err
			}
		}
	}

	p.lastDispatch = time.Now()
	return nil
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
