package models

// Outcome classifies an enrichment result.
type Outcome string

const (
	// OutcomeSuccess means all enrichment fields were resolved.
	OutcomeSuccess Outcome = "success"

	// OutcomePartial means the server resolved some but not all fields.
	OutcomePartial Outcome = "partial"

	// OutcomeFailure means no enrichment data is available for this item.
	OutcomeFailure Outcome = "failure"
)

// EnrichmentResult pairs an input transaction with its enrichment outcome.
// Exactly one result exists per submitted transaction; it is immutable after
// construction.
type EnrichmentResult struct {
	Input   Transaction     `json:"input"`
	Success bool            `json:"success"`
	Partial bool            `json:"partial,omitempty"`
	Data    *EnrichmentData `json:"data,omitempty"`
	Error   *ErrorDetail    `json:"error,omitempty"`

	RequestID        string  `json:"request_id,omitempty"`
	ProcessingTimeMs float64 `json:"processing_time_ms,omitempty"`
}

// Outcome returns the typed outcome of this result.
func (r EnrichmentResult) Outcome() Outcome {
	switch {
	case !r.Success:
		return OutcomeFailure
	case r.Partial:
		return OutcomePartial
	default:
		return OutcomeSuccess
	}
}
