// Package ratelimit tracks the Triqai API rate limit state and paces
// outbound requests. The API combines a token-bucket RPS limit with a hard
// concurrency cap; either dimension can trigger a 429, indicated by the
// X-RateLimit-Scope header. State is advertised via response headers:
//
//	X-RateLimit-Limit                 request limit for the current window
//	X-RateLimit-Remaining             requests remaining in the window
//	X-RateLimit-Reset                 ISO-8601 timestamp of the window reset
//	X-RateLimit-Scope                 "rps" or "concurrency"
//	X-RateLimit-Concurrency-Limit     maximum parallel requests
//	X-RateLimit-Concurrency-Remaining parallel request slots remaining
//	Retry-After                       seconds to wait (on 429 and 503)
package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

// Scope values advertised by X-RateLimit-Scope.
const (
	ScopeRPS         = "rps"
	ScopeConcurrency = "concurrency"
)

// Unknown marks a numeric field whose header was absent or unparseable.
const Unknown = -1

// State is a snapshot of the server-advertised rate limit, parsed from the
// headers of a single response. It carries no history; the tracker always
// holds the most recent snapshot only.
type State struct {
	// Limit is the request limit for the current window.
	Limit int

	// Remaining is the number of requests left in the window.
	Remaining int

	// ResetAt is when the window resets. Zero when the header was absent.
	ResetAt time.Time

	// Scope names the dimension that produced the limit ("rps" or
	// "concurrency"). Empty when not advertised.
	Scope string

	// ConcurrencyLimit and ConcurrencyRemaining describe the parallel
	// request cap.
	ConcurrencyLimit     int
	ConcurrencyRemaining int

	// RetryAfter is the server-requested wait, from the Retry-After
	// header (seconds). Zero when absent.
	RetryAfter time.Duration
}

// ParseHeaders extracts the rate limit state from response headers.
// Missing or malformed values become Unknown (or zero values for
// non-numeric fields); parsing never fails.
func ParseHeaders(h http.Header) State {
	s := State{
		Limit:                intHeader(h, "X-RateLimit-Limit"),
		Remaining:            intHeader(h, "X-RateLimit-Remaining"),
		Scope:                h.Get("X-RateLimit-Scope"),
		ConcurrencyLimit:     intHeader(h, "X-RateLimit-Concurrency-Limit"),
		ConcurrencyRemaining: intHeader(h, "X-RateLimit-Concurrency-Remaining"),
	}

	if reset := h.Get("X-RateLimit-Reset"); reset != "" {
		if t, err := time.Parse(time.RFC3339, reset); err == nil {
			s.ResetAt = t
		}
	}

	if retryAfter := intHeader(h, "Retry-After"); retryAfter > 0 {
		s.RetryAfter = time.Duration(retryAfter) * time.Second
	}

	return s
}

// Exhausted reports whether the RPS window is used up.
func (s State) Exhausted() bool {
	return s.Remaining == 0
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time is unknown or already passed.
func (s State) TimeUntilReset() time.Duration {
	if s.ResetAt.IsZero() {
		return 0
	}
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

func intHeader(h http.Header, key string) int {
	v := h.Get(key)
	if v == "" {
		return Unknown
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return Unknown
	}
	return n
}
