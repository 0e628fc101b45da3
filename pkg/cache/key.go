// Package cache provides an optional Redis-backed cache of enrichment
// results. Identical transactions (same title, country, and type) resolve
// to the same enrichment, so a hit skips pacing, transport, and retries
// entirely and burns no API credits.
package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/triqai/enrich-go/pkg/models"
)

// Key derives the deterministic Redis key for a transaction.
// Format: triqai:enrich:<COUNTRY>:<type>:<title-digest>
//
// The title is hashed because bank statement titles routinely contain
// separators and arbitrary bytes.
func Key(txn models.Transaction) string {
	digest := sha256.Sum256([]byte(txn.Title))
	return fmt.Sprintf("triqai:enrich:%s:%s:%x",
		strings.ToUpper(txn.Country), txn.Type, digest[:12])
}
