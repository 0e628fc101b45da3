package cache

import (
	"time"

	"github.com/triqai/enrich-go/pkg/models"
)

// Entry wraps a cached enrichment result with its storage timestamp.
type Entry struct {
	Result   models.EnrichmentResult `json:"result"`
	CachedAt time.Time               `json:"cached_at"`
}

// Age returns how long the entry has been cached.
func (e Entry) Age() time.Duration {
	return time.Since(e.CachedAt)
}
