package ratelimit

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testHeaders(remaining int) http.Header {
	h := http.Header{}
	h.Set("X-RateLimit-Limit", "100")
	h.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
	h.Set("X-RateLimit-Reset", time.Now().Add(time.Minute).UTC().Format(time.RFC3339))
	h.Set("X-RateLimit-Scope", ScopeRPS)
	return h
}

func TestTrackerCurrentBeforeFirstResponse(t *testing.T) {
	tracker := NewTracker(zerolog.Nop())

	if _, ok := tracker.Current(); ok {
		t.Error("Current() reported state before any response was recorded")
	}
}

func TestTrackerRecordReplacesState(t *testing.T) {
	tracker := NewTracker(zerolog.Nop())

	tracker.Record(testHeaders(42))
	state, ok := tracker.Current()
	if !ok {
		t.Fatal("Current() returned no state after Record")
	}
	if state.Remaining != 42 {
		t.Errorf("Remaining = %d, want 42", state.Remaining)
	}

	tracker.Record(testHeaders(41))
	state, _ = tracker.Current()
	if state.Remaining != 41 {
		t.Errorf("Remaining = %d after second record, want 41", state.Remaining)
	}

	// A response without rate limit headers still replaces the state.
	tracker.Record(http.Header{})
	state, _ = tracker.Current()
	if state.Remaining != Unknown {
		t.Errorf("Remaining = %d after headerless response, want Unknown", state.Remaining)
	}
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tracker := NewTracker(zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			tracker.Record(testHeaders(n))
		}(i)
		go func() {
			defer wg.Done()
			tracker.Current()
		}()
	}
	wg.Wait()

	state, ok := tracker.Current()
	if !ok {
		t.Fatal("Current() returned no state after concurrent records")
	}
	if state.Remaining < 0 || state.Remaining > 9 {
		t.Errorf("Remaining = %d, want a recorded value in [0,9]", state.Remaining)
	}
}
