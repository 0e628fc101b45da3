// Package testutil provides testing utilities for the enrichment client.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// EnrichPath is the enrichment endpoint path served by the mock.
const EnrichPath = "/v1/transactions/enrich"

// MockResponse defines the behavior of one mock API response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock Triqai API server for testing. It counts
// requests, tracks the peak number of in-flight requests, and can serve
// either a fixed response or a queued sequence per path.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	queues   map[string][]MockResponse

	requestCount int
	inFlight     int
	maxInFlight  int

	// LastRequestHeader and LastRequestBody capture the most recent request.
	LastRequestHeader http.Header
	LastRequestBody   []byte
}

// NewMockAPI creates a new mock API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]http.HandlerFunc),
		queues:   make(map[string][]MockResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mock.mu.Lock()
		mock.requestCount++
		mock.inFlight++
		if mock.inFlight > mock.maxInFlight {
			mock.maxInFlight = mock.inFlight
		}
		mock.LastRequestHeader = r.Header.Clone()
		mock.LastRequestBody = body

		var queued *MockResponse
		if q := mock.queues[r.URL.Path]; len(q) > 0 {
			resp := q[0]
			if len(q) > 1 {
				mock.queues[r.URL.Path] = q[1:]
			}
			queued = &resp
		}
		handler := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		defer func() {
			mock.mu.Lock()
			mock.inFlight--
			mock.mu.Unlock()
		}()

		switch {
		case queued != nil:
			writeResponse(w, *queued)
		case handler != nil:
			handler(w, r)
		default:
			writeResponse(w, NewSuccessResponse("Coffee Shops", "Starbucks"))
		}
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters and queued responses.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.inFlight = 0
	m.maxInFlight = 0
	m.LastRequestHeader = nil
	m.LastRequestBody = nil
	m.queues = make(map[string][]MockResponse)
	m.handlers = make(map[string]http.HandlerFunc)
}

// SetHandler sets a custom handler for a path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, _ *http.Request) {
		writeResponse(w, resp)
	})
}

// QueueResponses configures a sequence of responses for a path. The last
// response repeats once the queue drains.
func (m *MockAPI) QueueResponses(path string, resps ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[path] = append([]MockResponse(nil), resps...)
}

// RequestCount returns the number of requests served.
func (m *MockAPI) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// MaxInFlight returns the peak number of concurrently served requests.
func (m *MockAPI) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		_, _ = w.Write([]byte(resp.Body))
	}
}

// RateLimitHeaders returns standard healthy rate limit headers with the
// given remaining count.
func RateLimitHeaders(remaining int) map[string]string {
	return map[string]string{
		"X-RateLimit-Limit":     "100",
		"X-RateLimit-Remaining": fmt.Sprintf("%d", remaining),
		"X-RateLimit-Reset":     time.Now().Add(60 * time.Second).UTC().Format(time.RFC3339),
		"X-RateLimit-Scope":     "rps",
	}
}

// NewSuccessResponse creates a standard 200 enrichment response with the
// given category and merchant names.
func NewSuccessResponse(category, merchant string) MockResponse {
	body := fmt.Sprintf(`{
		"success": true,
		"partial": false,
		"data": {
			"transaction": {
				"category": {"primary": {"name": %q, "code": {"mcc": 5814}}, "confidence": 95},
				"channel": "in_store",
				"confidence": {"value": 95, "reasons": ["exact_match"]}
			},
			"entities": [
				{"type": "merchant", "role": "organization",
				 "confidence": {"value": 98, "reasons": []},
				 "data": {"name": %q}}
			]
		},
		"meta": {"requestId": "req-mock-1", "generatedAt": "2024-01-01T00:00:00Z", "version": "1.1.0"}
	}`, category, merchant)
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    RateLimitHeaders(99),
	}
}

// NewPartialResponse creates a 200 response flagged as partial.
func NewPartialResponse(category string) MockResponse {
	body := fmt.Sprintf(`{
		"success": true,
		"partial": true,
		"data": {
			"transaction": {"category": {"name": %q, "mcc": 5999}, "confidence": 40},
			"entities": []
		},
		"meta": {"requestId": "req-mock-2", "generatedAt": "2024-01-01T00:00:00Z", "version": "1.1.0"}
	}`, category)
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    RateLimitHeaders(98),
	}
}

// NewRateLimitResponse creates a 429 response with a Retry-After hint.
func NewRateLimitResponse(retryAfterSeconds int) MockResponse {
	headers := map[string]string{
		"X-RateLimit-Limit":     "100",
		"X-RateLimit-Remaining": "0",
		"X-RateLimit-Reset":     time.Now().Add(time.Duration(retryAfterSeconds) * time.Second).UTC().Format(time.RFC3339),
		"X-RateLimit-Scope":     "rps",
		"Retry-After":           fmt.Sprintf("%d", retryAfterSeconds),
	}
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       errorBody("rate_limited", "Rate limit exceeded"),
		Headers:    headers,
	}
}

// NewAuthErrorResponse creates a 401 response.
func NewAuthErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       errorBody("authentication_error", "Invalid or missing API key"),
		Headers:    RateLimitHeaders(97),
	}
}

// NewInsufficientCreditsResponse creates a 402 response.
func NewInsufficientCreditsResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusPaymentRequired,
		Body:       errorBody("insufficient_credits", "Insufficient credits"),
		Headers:    RateLimitHeaders(96),
	}
}

// NewServerErrorResponse creates a 500 response with a structured body.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       errorBody("internal_error", "Something went wrong"),
		Headers:    RateLimitHeaders(95),
	}
}

func errorBody(code, message string) string {
	return fmt.Sprintf(`{
		"success": false,
		"error": {"code": %q, "message": %q},
		"meta": {"requestId": "req-mock-err", "generatedAt": "2024-01-01T00:00:00Z", "version": "1.1.0"}
	}`, code, message)
}
